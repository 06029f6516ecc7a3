package models

import (
	"time"

	"github.com/google/uuid"
)

// Market represents the market a line is quoted for
type Market string

const (
	MarketSpread Market = "spread"
	MarketTotal  Market = "total"
)

// SnapshotLabel identifies when a line snapshot was captured relative to kickoff
type SnapshotLabel string

const (
	LabelOpen  SnapshotLabel = "open"
	LabelT60   SnapshotLabel = "t-60"
	LabelT30   SnapshotLabel = "t-30"
	LabelClose SnapshotLabel = "close"
)

// SnapshotLabels lists capture labels in chronological order
var SnapshotLabels = []SnapshotLabel{LabelOpen, LabelT60, LabelT30, LabelClose}

// LineSnapshot represents a point-in-time market line for one game
//
// Spread lines are quoted from the home team's perspective: negative means
// the home team is favored. At most one snapshot exists per
// (game, provider, market, label).
type LineSnapshot struct {
	GameID     uuid.UUID     `db:"game_id" json:"game_id" validate:"required,uuid"`
	Provider   string        `db:"provider" json:"provider" validate:"required"`
	Market     Market        `db:"market" json:"market" validate:"required,oneof=spread total"`
	Label      SnapshotLabel `db:"label" json:"label" validate:"required,oneof=open t-60 t-30 close"`
	Line       float64       `db:"line" json:"line"`
	CapturedAt time.Time     `db:"captured_at" json:"captured_at" validate:"required"`
}

// SpreadSize returns the absolute market line, used as a reliability proxy
func (s *LineSnapshot) SpreadSize() float64 {
	if s.Line < 0 {
		return -s.Line
	}
	return s.Line
}
