// Package metrics provides the centralized Prometheus metrics registry for
// the edge engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EdgesComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "edges_computed_total",
		Help:      "Total number of edges computed by market",
	}, []string{"market"})
	QualificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "qualifications_total",
		Help:      "Total qualification verdicts by result",
	}, []string{"verdict"})
	BetsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "bets_created_total",
		Help:      "Total number of bet records created from qualifying edges",
	})
	BetsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "bets_graded_total",
		Help:      "Total number of bets graded by outcome",
	}, []string{"outcome"})
	GradingSkipsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "grading_skips_total",
		Help:      "Grading passes skipped by reason (not_final, already_graded)",
	}, []string{"reason"})
	SnapshotsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "snapshots_ingested_total",
		Help:      "Total number of line snapshots ingested",
	})
)

// Gauge metrics
var (
	PendingBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "line_edge",
		Name:      "pending_bets",
		Help:      "Number of bet records awaiting grading",
	})
)

// Histogram metrics
var (
	EdgePointsObserved = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "line_edge",
		Name:      "edge_points",
		Help:      "Distribution of capped edge magnitudes by market",
		Buckets:   []float64{0.5, 1, 1.5, 2, 3, 4, 5, 7},
	}, []string{"market"})
	CLVPointsObserved = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "line_edge",
		Name:      "clv_points",
		Help:      "Distribution of side-normalized closing-line value",
		Buckets:   []float64{-4, -2, -1, -0.5, 0, 0.5, 1, 2, 4},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EdgesComputedTotal)
		registry.MustRegister(QualificationsTotal)
		registry.MustRegister(BetsCreatedTotal)
		registry.MustRegister(BetsGradedTotal)
		registry.MustRegister(GradingSkipsTotal)
		registry.MustRegister(SnapshotsIngestedTotal)

		registry.MustRegister(PendingBets)

		registry.MustRegister(EdgePointsObserved)
		registry.MustRegister(CLVPointsObserved)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestPickWinRate)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEdgeComputed records one edge computation.
func RecordEdgeComputed(market string, edgeMagnitude float64) {
	EdgesComputedTotal.WithLabelValues(market).Inc()
	EdgePointsObserved.WithLabelValues(market).Observe(edgeMagnitude)
}

// RecordQualification records a qualification verdict.
func RecordQualification(qualifies bool) {
	verdict := "rejected"
	if qualifies {
		verdict = "accepted"
	}
	QualificationsTotal.WithLabelValues(verdict).Inc()
}

// RecordBetGraded records a graded outcome.
func RecordBetGraded(outcome string) {
	BetsGradedTotal.WithLabelValues(outcome).Inc()
}

// RecordCLV records a computed closing-line value.
func RecordCLV(points float64) {
	CLVPointsObserved.Observe(points)
}
