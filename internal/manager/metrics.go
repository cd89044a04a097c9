package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "genstudio",
			Subsystem: "manager",
			Name:      "model_loads_total",
			Help:      "Model load attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	modelLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "genstudio",
			Subsystem: "manager",
			Name:      "model_load_duration_seconds",
			Help:      "Duration of successful model loads in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "genstudio",
			Subsystem: "manager",
			Name:      "generations_total",
			Help:      "Generation requests by kind and result",
		},
		[]string{"kind", "result"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "genstudio",
			Subsystem: "manager",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation calls in seconds",
			Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	imagesGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "genstudio",
			Subsystem: "manager",
			Name:      "images_generated_total",
			Help:      "Total images returned to callers",
		},
	)
)

func init() {
	prometheus.MustRegister(modelLoadsTotal, modelLoadDuration, generationsTotal, generationDuration, imagesGeneratedTotal)
}
