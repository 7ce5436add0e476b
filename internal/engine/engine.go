// FILE: internal/engine/engine.go
// Package engine decides move legality and produces the next board.
//
// The engine never mutates the board it is given: a legal move is applied to
// a clone, and the clone is returned together with the history record and
// the domain events the move produced.
package engine

import (
	"meridian/internal/board"
	"meridian/internal/card"
)

// Result is the outcome of evaluating a move
type Result struct {
	Legal  bool
	Reason Reason
	Board  *board.Board
	Record Record
	Events []Event
}

// Err returns the rejection reason as an error, or nil for legal moves
func (r Result) Err() error {
	if r.Legal {
		return nil
	}
	return r.Reason
}

// Evaluate checks m against b and, when legal, applies it to a copy of b
func Evaluate(b *board.Board, m Move) Result {
	cards, reason := check(b, m)
	if reason != ReasonNone {
		return Result{Reason: reason}
	}

	nb := b.Clone()
	rec, events := apply(nb, m, cards)
	return Result{Legal: true, Board: nb, Record: rec, Events: events}
}

// Check reports why m is illegal on b, or ReasonNone. It does not build the
// resulting board.
func Check(b *board.Board, m Move) Reason {
	_, reason := check(b, m)
	return reason
}

// IsValidTarget answers drop-zone highlighting queries during a drag
func IsValidTarget(b *board.Board, from board.Location, count int, to board.Location) bool {
	return Check(b, Move{From: from, To: to, Count: count}) == ReasonNone
}

func check(b *board.Board, m Move) ([]card.Card, Reason) {
	if m.From == m.To {
		return nil, IllegalLocation
	}
	cards, reason := pick(b, m.From, m.count())
	if reason != ReasonNone {
		return nil, reason
	}
	if reason := accepts(b, m.To, cards); reason != ReasonNone {
		return nil, reason
	}
	return cards, ReasonNone
}

// pick returns the cards a move would lift from the source
func pick(b *board.Board, from board.Location, count int) ([]card.Card, Reason) {
	if count < 1 {
		return nil, InvalidRun
	}

	switch from.Zone {
	case board.ZoneTableau:
		if from.Index < 0 || from.Index >= board.Columns {
			return nil, IllegalLocation
		}
		col := b.Tableau[from.Index]
		if col.Len() == 0 {
			return nil, SourceEmpty
		}
		if count > col.Len() {
			return nil, InvalidRun
		}
		if count > col.FaceUpCount() {
			return nil, SourceCardFaceDown
		}
		run := col.Cards[col.Len()-count:]
		if !ValidRun(run) {
			return nil, InvalidRun
		}
		return run, ReasonNone

	case board.ZoneWaste:
		top, ok := b.WasteTop()
		if !ok {
			return nil, SourceEmpty
		}
		if count != 1 {
			return nil, InvalidRun
		}
		return []card.Card{top}, ReasonNone

	case board.ZonePocket:
		if from.Index < 0 || from.Index >= b.PocketCount || from.Index >= board.MaxPockets {
			return nil, IllegalLocation
		}
		c, ok := b.Pocket(from.Index)
		if !ok {
			return nil, SourceEmpty
		}
		if count != 1 {
			return nil, InvalidRun
		}
		return []card.Card{c}, ReasonNone

	case board.ZoneFoundation:
		if !from.Suit.Valid() {
			return nil, IllegalLocation
		}
		top, ok := b.Foundations.Top(from.Group, from.Suit)
		if !ok {
			return nil, SourceEmpty
		}
		if count != 1 {
			return nil, InvalidRun
		}
		return []card.Card{top}, ReasonNone
	}

	// Stock must be drawn to waste first
	return nil, IllegalLocation
}

// accepts checks whether the destination takes the lifted cards
func accepts(b *board.Board, to board.Location, cards []card.Card) Reason {
	switch to.Zone {
	case board.ZoneTableau:
		if to.Index < 0 || to.Index >= board.Columns {
			return IllegalLocation
		}
		return acceptsTableau(b.Tableau[to.Index], cards)

	case board.ZoneFoundation:
		if len(cards) != 1 {
			return InvalidRun
		}
		if !to.Suit.Valid() {
			return IllegalLocation
		}
		return acceptsFoundation(&b.Foundations, to.Group, to.Suit, cards[0])

	case board.ZonePocket:
		if len(cards) != 1 {
			return InvalidRun
		}
		if to.Index < 0 || to.Index >= b.PocketCount || to.Index >= board.MaxPockets {
			return IllegalLocation
		}
		if _, occupied := b.Pocket(to.Index); occupied {
			return PocketOccupied
		}
		return ReasonNone
	}

	return IllegalLocation
}

func acceptsTableau(col board.Column, run []card.Card) Reason {
	bottom := run[0]
	dir := runDirection(run)

	if col.Len() == 0 {
		switch bottom.Rank {
		case card.Ace:
			return withinColumnRange(board.ColumnAce, run)
		case card.King:
			return withinColumnRange(board.ColumnKing, run)
		}
		return ColumnMustStartAceOrKing
	}

	if col.FaceUpCount() == 0 {
		return TargetFaceDown
	}
	top, _ := col.Top()

	var want card.Rank
	switch col.Type() {
	case board.ColumnAce:
		if dir < 0 {
			return NonConsecutiveRank
		}
		want = top.Rank + 1
	case board.ColumnKing:
		if dir > 0 {
			return NonConsecutiveRank
		}
		want = top.Rank - 1
	default:
		return ColumnClosed
	}

	if bottom.Rank != want {
		return NonConsecutiveRank
	}
	if !card.IsAlternateColor(bottom, top) {
		return WrongColor
	}
	return withinColumnRange(col.Type(), run)
}

// withinColumnRange keeps ace columns at A..6 and king columns at K..7
func withinColumnRange(t board.ColumnType, run []card.Card) Reason {
	for _, c := range run {
		switch t {
		case board.ColumnAce:
			if c.Rank > 6 {
				return NonConsecutiveRank
			}
		case board.ColumnKing:
			if c.Rank < 7 {
				return NonConsecutiveRank
			}
		}
	}
	return ReasonNone
}

func acceptsFoundation(f *board.Foundations, g board.Group, s card.Suit, c card.Card) Reason {
	if c.Suit != s {
		return WrongFoundationSuit
	}
	want := g.Anchor()
	if top, ok := f.Top(g, s); ok {
		if top.Rank == g.Last() {
			return FoundationRankMismatch
		}
		want = top.Rank + g.Step()
	}
	if c.Rank != want {
		return FoundationRankMismatch
	}
	return ReasonNone
}

// ValidRun reports whether cards, bottom first, alternate colors and step
// by one rank in a single direction
func ValidRun(cards []card.Card) bool {
	if len(cards) < 2 {
		return len(cards) == 1
	}
	dir := cards[1].Rank - cards[0].Rank
	if dir != 1 && dir != -1 {
		return false
	}
	for i := 1; i < len(cards); i++ {
		if cards[i].Rank-cards[i-1].Rank != dir {
			return false
		}
		if !card.IsAlternateColor(cards[i], cards[i-1]) {
			return false
		}
	}
	return true
}

// runDirection is +1 for ascending runs, -1 for descending, 0 for one card
func runDirection(cards []card.Card) int {
	if len(cards) < 2 {
		return 0
	}
	if cards[1].Rank > cards[0].Rank {
		return 1
	}
	return -1
}

// apply performs a checked move on nb in place
func apply(nb *board.Board, m Move, cards []card.Card) (Record, []Event) {
	moved := append([]card.Card(nil), cards...)
	rec := Record{Move: m, Cards: moved}
	var events []Event

	switch m.From.Zone {
	case board.ZoneTableau:
		col := &nb.Tableau[m.From.Index]
		col.Cards = col.Cards[:col.Len()-len(moved)]
		switch {
		case col.Len() == 0:
			col.Cards = nil
			col.FaceDown = 0
			rec.Effects.ColumnEmptied = true
			events = append(events, Event{Kind: EventColumnEmptied, Location: m.From})
		case col.FaceDown >= col.Len():
			col.FaceDown = col.Len() - 1
			top, _ := col.Top()
			rec.Effects.Revealed = top
			events = append(events, Event{Kind: EventCardRevealed, Card: top, Location: m.From})
		}
	case board.ZoneWaste:
		nb.Waste = nb.Waste[:len(nb.Waste)-1]
	case board.ZonePocket:
		nb.Pockets[m.From.Index] = card.Card{}
	case board.ZoneFoundation:
		i := m.From.Suit.Index()
		pile := nb.Foundations[m.From.Group][i]
		nb.Foundations[m.From.Group][i] = pile[:len(pile)-1]
	}

	switch m.To.Zone {
	case board.ZoneTableau:
		col := &nb.Tableau[m.To.Index]
		wasEmpty := col.Len() == 0
		col.Cards = append(col.Cards, moved...)
		if wasEmpty {
			rec.Effects.ColumnTyped = true
			rec.Effects.NewType = col.Type()
			events = append(events, Event{Kind: EventColumnTyped, Location: m.To, ColumnType: col.Type()})
		}
	case board.ZoneFoundation:
		i := m.To.Suit.Index()
		nb.Foundations[m.To.Group][i] = append(nb.Foundations[m.To.Group][i], moved[0])
		events = append(events, Event{Kind: EventFoundationPlaced, Card: moved[0], Location: m.To})
	case board.ZonePocket:
		nb.Pockets[m.To.Index] = moved[0]
	}

	return rec, events
}
