// FILE: internal/engine/enumerate.go
package engine

import (
	"meridian/internal/board"
	"meridian/internal/card"
)

// Sources lists every location a move can start from on b, in scan order:
// columns left to right, waste, pockets, then foundations
func Sources(b *board.Board) []board.Location {
	locs := make([]board.Location, 0, board.Columns+1+board.MaxPockets+8)
	for i := 0; i < board.Columns; i++ {
		locs = append(locs, board.Tableau(i))
	}
	locs = append(locs, board.Waste())
	for j := 0; j < b.PocketCount && j < board.MaxPockets; j++ {
		locs = append(locs, board.Pocket(j))
	}
	for _, g := range board.Groups {
		for _, s := range card.Suits {
			locs = append(locs, board.Foundation(g, s))
		}
	}
	return locs
}

// Destinations lists every location a move can end at, foundations first
func Destinations(b *board.Board) []board.Location {
	locs := make([]board.Location, 0, 8+board.Columns+board.MaxPockets)
	for _, g := range board.Groups {
		for _, s := range card.Suits {
			locs = append(locs, board.Foundation(g, s))
		}
	}
	for i := 0; i < board.Columns; i++ {
		locs = append(locs, board.Tableau(i))
	}
	for j := 0; j < b.PocketCount && j < board.MaxPockets; j++ {
		locs = append(locs, board.Pocket(j))
	}
	return locs
}

// runLengths returns the lengths worth trying from a source
func runLengths(b *board.Board, from board.Location) []int {
	if from.Zone != board.ZoneTableau {
		return []int{1}
	}
	col := b.Tableau[from.Index]
	up := col.FaceUpCount()
	var counts []int
	for n := 1; n <= up; n++ {
		if !ValidRun(col.Cards[col.Len()-n:]) {
			break
		}
		counts = append(counts, n)
	}
	return counts
}

// LegalMoves enumerates every legal move on b. Draw is not a move; use
// CanDraw alongside it.
func LegalMoves(b *board.Board) []Move {
	var moves []Move
	dests := Destinations(b)
	for _, from := range Sources(b) {
		for _, n := range runLengths(b, from) {
			cards, reason := pick(b, from, n)
			if reason != ReasonNone {
				continue
			}
			for _, to := range dests {
				if to == from {
					continue
				}
				if accepts(b, to, cards) == ReasonNone {
					moves = append(moves, Move{From: from, To: to, Count: n})
				}
			}
		}
	}
	return moves
}

// HasLegalAction reports whether any move or draw is possible
func HasLegalAction(b *board.Board) bool {
	return CanDraw(b) || len(LegalMoves(b)) > 0
}
