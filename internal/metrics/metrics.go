package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Recognitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pricer_recognitions_total",
			Help: "Recognition requests by outcome",
		},
		[]string{"outcome"},
	)

	RecognitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_pricer_recognition_duration_seconds",
			Help:    "Time spent on one recognition request",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pricer_search_queries_total",
			Help: "Search service queries by pass and outcome",
		},
		[]string{"pass", "outcome"},
	)

	AnnotationCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pricer_annotation_cache_total",
			Help: "Annotation cache lookups by result",
		},
		[]string{"result"},
	)

	SearchCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_pricer_search_cache_total",
			Help: "Search response cache lookups by result",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
