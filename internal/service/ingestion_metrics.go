package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one ingestion sweep
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalGames       int
	SuccessfulGames  int
	Snapshots        int
	Ratings          int
	Duplicates       int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalGames = 0
	m.SuccessfulGames = 0
	m.Snapshots = 0
	m.Ratings = 0
	m.Duplicates = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordGame increments the successful game count
func (m *IngestionMetrics) RecordGame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulGames++
}

// RecordSnapshot increments the snapshot count
func (m *IngestionMetrics) RecordSnapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots++
}

// RecordRating increments the rating count
func (m *IngestionMetrics) RecordRating() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ratings++
}

// RecordDuplicate increments the duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordValidationError increments the validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// RecordError increments the error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String returns a formatted representation of the metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalGames > 0 {
		successRate = float64(m.SuccessfulGames) / float64(m.TotalGames) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Games=%d, Successful=%d (%.1f%%), Snapshots=%d, Ratings=%d, Duplicates=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalGames,
		m.SuccessfulGames,
		successRate,
		m.Snapshots,
		m.Ratings,
		m.Duplicates,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
