package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK         = "ok"
	ResultError      = "error"
	ResultSuperseded = "superseded"
)

var (
	monthRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybook_month_refresh_total",
		Help: "Month cache refresh batches by result",
	}, []string{"result"})

	monthRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "daybook_month_refresh_duration_seconds",
		Help:    "Month cache refresh batch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	})

	gatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybook_gateway_errors_total",
		Help: "Failed store or calendar calls by operation",
	}, []string{"operation"})

	workoutsFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daybook_workouts_finished_total",
		Help: "Workout sessions written to the store",
	})

	bestEffortFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybook_best_effort_failures_total",
		Help: "Non-critical background writes that failed",
	}, []string{"operation"})
)

func ObserveMonthRefresh(result string, elapsed time.Duration) {
	monthRefreshTotal.WithLabelValues(result).Inc()
	monthRefreshDuration.Observe(elapsed.Seconds())
}

func GatewayError(operation string) {
	gatewayErrorsTotal.WithLabelValues(operation).Inc()
}

func WorkoutFinished() {
	workoutsFinishedTotal.Inc()
}

func BestEffortFailure(operation string) {
	bestEffortFailuresTotal.WithLabelValues(operation).Inc()
}
