package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsTotal counts recorded burns.
	// Labels:
	//   - outcome: "persisted", "dropped"
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thoughtburn_records_total",
			Help: "Total number of recorded thought burns",
		},
		[]string{"outcome"},
	)

	// StoreErrorsTotal counts failures swallowed by the store.
	// Labels:
	//   - op: store operation
	//   - kind: "read", "malformed", "write"
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thoughtburn_store_errors_total",
			Help: "Total number of analytics store failures degraded to defaults",
		},
		[]string{"op", "kind"},
	)

	// StoreOperationDuration measures store operations including persistence I/O.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thoughtburn_store_operation_duration_seconds",
			Help:    "Duration of analytics store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"op"},
	)
)
