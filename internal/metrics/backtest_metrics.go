package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest metrics
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "line_edge",
		Name:      "backtest_duration_seconds",
		Help:      "Wall-clock duration of backtest runs",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	BacktestPickWinRate = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "line_edge",
		Name:      "backtest_win_rate",
		Help:      "Overall win rate observed per backtest run",
		Buckets:   prometheus.LinearBuckets(0.3, 0.05, 9),
	})
)

// RecordBacktestRun records run status, duration and overall win rate.
func RecordBacktestRun(status string, durationSeconds, winRate float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
	if winRate > 0 {
		BacktestPickWinRate.Observe(winRate)
	}
}
