package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pumpwatch_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pumpwatch_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pumpwatch_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Monitoring cycle metrics
	CycleClassifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pumpwatch_cycle_classifications_total",
			Help: "Total number of cycle classifications by state",
		},
		[]string{"state"}, // state: idle|alerting|liquidating
	)

	ValuationTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pumpwatch_valuation_total",
			Help: "Last account valuation in the reference currency",
		},
	)

	UnpricedAssets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pumpwatch_unpriced_assets_count",
			Help: "Assets excluded from the last valuation for lack of a price route",
		},
	)

	// Liquidation metrics
	OrdersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pumpwatch_orders_cancelled_total",
			Help: "Open orders cancelled during liquidations",
		},
	)

	AssetsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pumpwatch_assets_sold_total",
			Help: "Assets market-sold during liquidations",
		},
	)

	AssetsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pumpwatch_assets_failed_total",
			Help: "Assets whose liquidation sell failed",
		},
	)

	// Notification metrics
	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pumpwatch_notification_failures_total",
			Help: "Best-effort notifications that failed to deliver",
		},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(CycleClassifications)
	prometheus.MustRegister(ValuationTotal)
	prometheus.MustRegister(UnpricedAssets)

	prometheus.MustRegister(OrdersCancelled)
	prometheus.MustRegister(AssetsSold)
	prometheus.MustRegister(AssetsFailed)

	prometheus.MustRegister(NotificationFailures)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}
