package models

import "time"

// ScoreEvent is broadcast after each image is scored.
type ScoreEvent struct {
	TS         time.Time `json:"ts"`
	Filename   string    `json:"filename"`
	Score      float64   `json:"score"`
	RawScore   float64   `json:"raw_score"`
	Detections int       `json:"detections"`
}

func NewScoreEvent(resp ScoreResponse, ts time.Time) ScoreEvent {
	n := 0
	for _, b := range resp.Metadata.Breakdown {
		n += b.Count
	}
	return ScoreEvent{
		TS:         ts.UTC(),
		Filename:   resp.Filename,
		Score:      resp.Score,
		RawScore:   resp.Metadata.RawScore,
		Detections: n,
	}
}
