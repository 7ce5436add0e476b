// FILE: internal/assist/hint.go
package assist

import (
	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/engine"
)

// Hint suggests the first move in priority order: a foundation placement,
// then a column-to-column move that reveals a face-down card, then one that
// empties a column
func Hint(b *board.Board) (engine.Move, bool) {
	moves := engine.LegalMoves(b)

	for _, m := range moves {
		if m.To.Zone == board.ZoneFoundation && m.From.Zone != board.ZoneFoundation {
			return m, true
		}
	}

	var emptying []engine.Move
	for _, m := range moves {
		if m.From.Zone != board.ZoneTableau || m.To.Zone != board.ZoneTableau {
			continue
		}
		src := b.Tableau[m.From.Index]
		if m.Count != src.FaceUpCount() {
			continue
		}
		if src.FaceDown > 0 {
			return m, true
		}
		// relocating a whole column into another empty column gains nothing
		if b.Tableau[m.To.Index].Len() > 0 {
			emptying = append(emptying, m)
		}
	}
	if len(emptying) > 0 {
		return emptying[0], true
	}
	return engine.Move{}, false
}

// BestDestination chooses where a card should go when the player taps it
// without dragging: foundation first, then building on a column, then an
// empty column, then a pocket
func BestDestination(b *board.Board, from board.Location, count int) (board.Location, bool) {
	if count < 1 {
		count = 1
	}

	candidates := make([]board.Location, 0, 1+2*board.Columns+board.MaxPockets)
	if count == 1 {
		if c, ok := cardAt(b, from); ok {
			candidates = append(candidates, foundationFor(c))
		}
	}
	for i := 0; i < board.Columns; i++ {
		if b.Tableau[i].Len() > 0 {
			candidates = append(candidates, board.Tableau(i))
		}
	}
	for i := 0; i < board.Columns; i++ {
		if b.Tableau[i].Len() == 0 {
			candidates = append(candidates, board.Tableau(i))
		}
	}
	for j := 0; j < b.PocketCount && j < board.MaxPockets; j++ {
		candidates = append(candidates, board.Pocket(j))
	}

	for _, to := range candidates {
		if engine.IsValidTarget(b, from, count, to) {
			return to, true
		}
	}
	return board.Location{}, false
}

// foundationFor is the only pile a card can ever be played to
func foundationFor(c card.Card) board.Location {
	return board.Foundation(board.GroupFor(c.Rank), c.Suit)
}

// cardAt returns the single card a move from loc would lift
func cardAt(b *board.Board, loc board.Location) (card.Card, bool) {
	switch loc.Zone {
	case board.ZoneTableau:
		if loc.Index < 0 || loc.Index >= board.Columns {
			return card.Card{}, false
		}
		return b.Tableau[loc.Index].Top()
	case board.ZoneWaste:
		return b.WasteTop()
	case board.ZonePocket:
		return b.Pocket(loc.Index)
	case board.ZoneFoundation:
		return b.Foundations.Top(loc.Group, loc.Suit)
	}
	return card.Card{}, false
}
