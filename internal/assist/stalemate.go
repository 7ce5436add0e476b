// FILE: internal/assist/stalemate.go
package assist

import (
	"meridian/internal/board"
	"meridian/internal/engine"
)

// Tier is an advisory signal; it never blocks play
type Tier int

const (
	TierNone Tier = iota
	TierConcern
	TierStuck
)

func (t Tier) String() string {
	switch t {
	case TierConcern:
		return "concern"
	case TierStuck:
		return "stuck"
	default:
		return "none"
	}
}

// Thresholds trigger tiers. A zero value disables that measure.
type Thresholds struct {
	ConcernCycles int `yaml:"concern_cycles"`
	StuckCycles   int `yaml:"stuck_cycles"`
	ConcernMoves  int `yaml:"concern_moves"`
	StuckMoves    int `yaml:"stuck_moves"`
}

var DefaultThresholds = Thresholds{
	ConcernCycles: 2,
	StuckCycles:   3,
	ConcernMoves:  40,
	StuckMoves:    80,
}

// Tracker counts actions since the last foundation placement. It is a plain
// value so games can snapshot it alongside the board.
type Tracker struct {
	Moves               int `json:"moves"`
	Placements          int `json:"placements"`
	MovesSinceProgress  int `json:"movesSinceProgress"`
	CyclesSinceProgress int `json:"cyclesSinceProgress"`
}

// Observe records one applied move or draw through the events it produced
func (t *Tracker) Observe(events []engine.Event) {
	t.Moves++
	t.MovesSinceProgress++
	for _, e := range events {
		switch e.Kind {
		case engine.EventFoundationPlaced:
			t.Placements++
			t.MovesSinceProgress = 0
			t.CyclesSinceProgress = 0
		case engine.EventStockRecycled:
			t.CyclesSinceProgress++
		}
	}
}

func (t Tracker) Tier(th Thresholds) Tier {
	if reached(t.CyclesSinceProgress, th.StuckCycles) || reached(t.MovesSinceProgress, th.StuckMoves) {
		return TierStuck
	}
	if reached(t.CyclesSinceProgress, th.ConcernCycles) || reached(t.MovesSinceProgress, th.ConcernMoves) {
		return TierConcern
	}
	return TierNone
}

func reached(n, limit int) bool {
	return limit > 0 && n >= limit
}

// IsStalemate reports a true dead end: no legal move anywhere and nothing
// to draw. A won board is not stalemated.
func IsStalemate(b *board.Board) bool {
	return !b.IsWon() && !engine.HasLegalAction(b)
}
