// Package scoring turns object detections into a restroom cleanliness score.
package scoring

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// BaseScore is the score of an image with no detections.
const BaseScore = 10.0

// Detection is a single detected object.
type Detection struct {
	ClassID    int     `json:"class_id"`
	Confidence float64 `json:"confidence"`
}

// ClassSummary aggregates the detections of one class in an image.
type ClassSummary struct {
	ClassID       int
	Label         string
	Count         int
	AvgConfidence float64
	Weight        float64
}

// Result is the score of one image. RawScore is unrounded.
type Result struct {
	RawScore  float64
	Score     float64
	Breakdown []ClassSummary
}

// Score computes the cleanliness score of one image. Breakdown entries are
// ordered by first appearance of their class.
func Score(table *ClassTable, detections []Detection) Result {
	var raw float64
	order := make([]int, 0)
	confs := make(map[int][]float64)

	for _, d := range detections {
		raw += table.Weight(d.ClassID) * d.Confidence
		if _, seen := confs[d.ClassID]; !seen {
			order = append(order, d.ClassID)
		}
		confs[d.ClassID] = append(confs[d.ClassID], d.Confidence)
	}

	breakdown := make([]ClassSummary, 0, len(order))
	for _, id := range order {
		breakdown = append(breakdown, ClassSummary{
			ClassID:       id,
			Label:         table.Label(id),
			Count:         len(confs[id]),
			AvgConfidence: stat.Mean(confs[id], nil),
			Weight:        table.Weight(id),
		})
	}

	return Result{
		RawScore:  raw,
		Score:     math.Max(0, Round2(BaseScore-raw)),
		Breakdown: breakdown,
	}
}

// Round2 rounds the exact binary value of x to two decimal places, so
// 2.675 (stored as 2.67499...) becomes 2.67.
func Round2(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}
