package models

import (
	"time"

	"restroom-cleanliness-api/scoring"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type BreakdownEntry struct {
	Class   string  `json:"class"`
	Count   int     `json:"count"`
	AvgConf float64 `json:"avg_conf"`
	Weight  float64 `json:"weight"`
}

type ScoreMetadata struct {
	RawScore  float64          `json:"raw_score"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

// ScoreResponse is the per-image element of the /predict response array.
type ScoreResponse struct {
	Status    string        `json:"status"`
	Score     float64       `json:"score"`
	Metadata  ScoreMetadata `json:"metadata"`
	Timestamp string        `json:"timestamp"`
	Filename  string        `json:"filename"`
}

type ErrorResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

// NewScoreResponse renders result for the wire. The raw score and mean
// confidences are rounded to two decimals.
func NewScoreResponse(filename string, result scoring.Result, ts time.Time) ScoreResponse {
	breakdown := make([]BreakdownEntry, 0, len(result.Breakdown))
	for _, c := range result.Breakdown {
		breakdown = append(breakdown, BreakdownEntry{
			Class:   c.Label,
			Count:   c.Count,
			AvgConf: scoring.Round2(c.AvgConfidence),
			Weight:  c.Weight,
		})
	}
	return ScoreResponse{
		Status: StatusSuccess,
		Score:  result.Score,
		Metadata: ScoreMetadata{
			RawScore:  scoring.Round2(result.RawScore),
			Breakdown: breakdown,
		},
		Timestamp: ts.UTC().Format(time.RFC3339Nano),
		Filename:  filename,
	}
}
