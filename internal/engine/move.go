// FILE: internal/engine/move.go
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"meridian/internal/board"
	"meridian/internal/card"
)

// Move transfers the top Count cards of From onto To. Count above one is
// only meaningful between tableau columns; zero means one.
type Move struct {
	From  board.Location `json:"from"`
	To    board.Location `json:"to"`
	Count int            `json:"count,omitempty"`
}

func (m Move) count() int {
	if m.Count == 0 {
		return 1
	}
	return m.Count
}

// String renders "t3>up:h", or "t3*2>t5" for runs
func (m Move) String() string {
	if m.count() > 1 {
		return fmt.Sprintf("%s*%d>%s", m.From, m.count(), m.To)
	}
	return fmt.Sprintf("%s>%s", m.From, m.To)
}

// ParseMove reads the notation produced by String. Whitespace may replace
// the ">" separator.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	var parts []string
	if strings.Contains(s, ">") {
		parts = strings.SplitN(s, ">", 2)
	} else {
		parts = strings.Fields(s)
	}
	if len(parts) != 2 {
		return Move{}, fmt.Errorf("invalid move %q: expected <from>><to>", s)
	}

	fromStr := strings.TrimSpace(parts[0])
	count := 1
	if idx := strings.Index(fromStr, "*"); idx != -1 {
		n, err := strconv.Atoi(fromStr[idx+1:])
		if err != nil || n < 1 {
			return Move{}, fmt.Errorf("invalid run length in %q", s)
		}
		count = n
		fromStr = fromStr[:idx]
	}

	from, err := board.ParseLocation(fromStr)
	if err != nil {
		return Move{}, fmt.Errorf("invalid move source: %w", err)
	}
	to, err := board.ParseLocation(parts[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move destination: %w", err)
	}
	return Move{From: from, To: to, Count: count}, nil
}

type EventKind int

const (
	EventFoundationPlaced EventKind = iota + 1
	EventColumnEmptied
	EventStockRecycled
	EventCardRevealed
	EventColumnTyped
	EventCardDrawn
)

func (k EventKind) String() string {
	switch k {
	case EventFoundationPlaced:
		return "FoundationPlaced"
	case EventColumnEmptied:
		return "ColumnEmptied"
	case EventStockRecycled:
		return "StockRecycled"
	case EventCardRevealed:
		return "CardRevealed"
	case EventColumnTyped:
		return "ColumnTyped"
	case EventCardDrawn:
		return "CardDrawn"
	default:
		return "Unknown"
	}
}

// Event is a domain fact produced by an applied action. Collaborators
// (logging, persistence, stats) consume events instead of being called by
// the engine.
type Event struct {
	Kind       EventKind
	Card       card.Card
	Location   board.Location
	ColumnType board.ColumnType
	Cycle      int
}

func (e Event) String() string {
	switch e.Kind {
	case EventStockRecycled:
		return fmt.Sprintf("%s cycle=%d", e.Kind, e.Cycle)
	case EventColumnTyped:
		return fmt.Sprintf("%s %s %s", e.Kind, e.Location, e.ColumnType)
	case EventColumnEmptied:
		return fmt.Sprintf("%s %s", e.Kind, e.Location)
	default:
		return fmt.Sprintf("%s %s %s", e.Kind, e.Card, e.Location)
	}
}

// Effects summarizes what a move did beyond relocating its cards. Stock
// recycling is a draw outcome and is reported by DrawResult.Recycled.
type Effects struct {
	Revealed      card.Card
	ColumnTyped   bool
	NewType       board.ColumnType
	ColumnEmptied bool
}

// Record is the immutable history entry for an applied move
type Record struct {
	Move    Move
	Cards   []card.Card
	Effects Effects
}
