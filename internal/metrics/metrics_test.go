package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIsIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
}

func TestRecordEdgeComputed(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordEdgeComputed("spread", 2.5)
		RecordEdgeComputed("total", 0.0)
	})
}

func TestRecordQualification(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordQualification(true)
		RecordQualification(false)
	})
}

func TestRecordBetGraded(t *testing.T) {
	InitRegistry()

	for _, outcome := range []string{"win", "loss", "push"} {
		assert.NotPanics(t, func() {
			RecordBetGraded(outcome)
		})
	}
}

func TestRecordCLV(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		points float64
	}{
		{"positive clv", 1.5},
		{"zero clv", 0},
		{"negative clv", -2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordCLV(tt.points)
			})
		})
	}
}

func TestRecordBacktestRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestRun("ok", 1.25, 0.55)
		RecordBacktestRun("error", 0.1, 0)
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	assert.NotNil(t, Handler())
}
