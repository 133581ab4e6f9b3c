package workers

import (
	"context"
	"time"

	"pumpwatch/internal/monitor"
	"pumpwatch/pkg/logger"
)

// MonitorWorker runs the threshold monitor on the poll interval. Each
// iteration is one full cycle with its own deadline; a failed cycle ends
// there and the next one starts fresh after the interval, so the poll
// interval is the de facto backoff.
type MonitorWorker struct {
	monitor      *monitor.Monitor
	interval     time.Duration
	cycleTimeout time.Duration
	log          *logger.Logger
}

// NewMonitorWorker creates the polling worker for one monitored account.
func NewMonitorWorker(m *monitor.Monitor, interval, cycleTimeout time.Duration) *MonitorWorker {
	return &MonitorWorker{
		monitor:      m,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		log:          logger.Get().With("worker", "monitor"),
	}
}

// Name returns the worker name
func (w *MonitorWorker) Name() string {
	return "monitor"
}

// Interval returns the poll interval
func (w *MonitorWorker) Interval() time.Duration {
	return w.interval
}

// Enabled returns whether the worker is active
func (w *MonitorWorker) Enabled() bool {
	return true
}

// Run executes one monitoring cycle under the cycle deadline.
func (w *MonitorWorker) Run(ctx context.Context) error {
	cycleCtx, cancel := context.WithTimeout(ctx, w.cycleTimeout)
	defer cancel()

	return w.monitor.RunCycle(cycleCtx)
}
