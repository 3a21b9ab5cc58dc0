package services

import (
	"restroom-cleanliness-api/scoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imagesScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanliness_images_scored_total",
		Help: "Total number of images scored.",
	})
	detectionsSeen = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanliness_detections_total",
		Help: "Total number of detections scored, by class label.",
	}, []string{"class"})
	detectorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanliness_detector_failures_total",
		Help: "Total number of failed detector calls.",
	})
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanliness_events_published_total",
		Help: "Total number of score events published, by sink.",
	}, []string{"sink"})
	eventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanliness_events_failed_total",
		Help: "Total number of score events that failed to publish, by sink.",
	}, []string{"sink"})
	scoreHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cleanliness_score",
		Help:    "Distribution of cleanliness scores.",
		Buckets: []float64{0, 2, 4, 6, 8, 10, 12},
	})
	detectorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cleanliness_detector_duration_seconds",
		Help:    "Duration of detector calls.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
)

// unknownClassLabel is the detections_total label shared by every class id
// missing from the table, which keeps the series count bounded.
const unknownClassLabel = "unknown"

// RecordScore updates the scoring metrics for one image.
func RecordScore(table *scoring.ClassTable, result scoring.Result) {
	imagesScored.Inc()
	scoreHistogram.Observe(result.Score)
	for _, c := range result.Breakdown {
		detectionsSeen.WithLabelValues(classMetricLabel(table, c)).Add(float64(c.Count))
	}
}

func classMetricLabel(table *scoring.ClassTable, c scoring.ClassSummary) string {
	if !table.Has(c.ClassID) {
		return unknownClassLabel
	}
	return c.Label
}

// RecordDetectorFailure counts one failed detector call.
func RecordDetectorFailure() {
	detectorFailures.Inc()
}
