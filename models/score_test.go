package models

import (
	"encoding/json"
	"testing"
	"time"

	"restroom-cleanliness-api/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScoreResponse(t *testing.T) {
	ts := time.Date(2025, 3, 4, 10, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	result := scoring.Score(scoring.DefaultClassTable(), []scoring.Detection{
		{ClassID: 9, Confidence: 0.876},
		{ClassID: 9, Confidence: 0.5},
		{ClassID: 2, Confidence: 0.3},
	})

	resp := NewScoreResponse("stall-3.jpg", result, ts)

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "stall-3.jpg", resp.Filename)
	assert.Equal(t, "2025-03-04T05:00:00Z", resp.Timestamp)
	// 8*0.876 + 8*0.5 - 0.3 = 10.708
	assert.InDelta(t, 10.71, resp.Metadata.RawScore, 1e-9)
	assert.InDelta(t, 0.0, resp.Score, 1e-9)

	require.Len(t, resp.Metadata.Breakdown, 2)
	assert.Equal(t, BreakdownEntry{Class: "garbage", Count: 2, AvgConf: 0.69, Weight: 8.0}, resp.Metadata.Breakdown[0])
	assert.Equal(t, BreakdownEntry{Class: "clean_western", Count: 1, AvgConf: 0.3, Weight: -1.0}, resp.Metadata.Breakdown[1])
}

func TestNewScoreResponseRoundsLikeDecimal(t *testing.T) {
	result := scoring.Score(scoring.DefaultClassTable(), []scoring.Detection{
		{ClassID: 7, Confidence: 0.5},
		{ClassID: 7, Confidence: 0.73},
	})
	resp := NewScoreResponse("basin.jpg", result, time.Unix(0, 0))

	require.Len(t, resp.Metadata.Breakdown, 1)
	assert.Equal(t, 0.61, resp.Metadata.Breakdown[0].AvgConf)
	// 5*0.5 + 5*0.73 = 6.15
	assert.Equal(t, 6.15, resp.Metadata.RawScore)
	assert.Equal(t, 3.85, resp.Score)
}

func TestScoreResponseJSON(t *testing.T) {
	resp := NewScoreResponse("a.jpg", scoring.Score(scoring.DefaultClassTable(), nil), time.Unix(0, 0))

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "success", got["status"])
	assert.Equal(t, 10.0, got["score"])
	assert.Equal(t, "a.jpg", got["filename"])

	meta, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.0, meta["raw_score"])
	assert.Equal(t, []any{}, meta["breakdown"])
}

func TestNewScoreEvent(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := ScoreResponse{
		Score:    7.5,
		Filename: "x.png",
		Metadata: ScoreMetadata{
			RawScore: 2.5,
			Breakdown: []BreakdownEntry{
				{Class: "damage", Count: 2},
				{Class: "garbage", Count: 3},
			},
		},
	}

	ev := NewScoreEvent(resp, ts)
	assert.Equal(t, ScoreEvent{TS: ts, Filename: "x.png", Score: 7.5, RawScore: 2.5, Detections: 5}, ev)
}
