package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotalMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diffusiond",
			Subsystem: "manager",
			Name:      "generations_total",
			Help:      "Total generations served, by provenance",
		},
		[]string{"provenance"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "diffusiond",
			Subsystem: "manager",
			Name:      "generation_duration_seconds",
			Help:      "Wall-clock duration of generation requests",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 180, 600},
		},
	)

	switchesTotalMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diffusiond",
			Subsystem: "manager",
			Name:      "model_switches_total",
			Help:      "Total model switch attempts, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(generationsTotalMetric, generationDuration, switchesTotalMetric)
}
