// FILE: internal/engine/draw.go
package engine

import (
	"errors"
	"slices"

	"meridian/internal/board"
	"meridian/internal/card"
)

// ErrNothingToDraw signals that stock and waste are both empty. It is a
// no-op outcome, not a failure.
var ErrNothingToDraw = errors.New("nothing to draw")

// DrawResult is the outcome of a successful draw or recycle
type DrawResult struct {
	Board    *board.Board
	Card     card.Card
	Recycled bool
	Events   []Event
}

// Draw turns the top stock card onto the waste. With an empty stock it
// recycles the waste back into the stock, reversed, as one stock cycle.
func Draw(b *board.Board) (DrawResult, error) {
	if !CanDraw(b) {
		return DrawResult{}, ErrNothingToDraw
	}

	nb := b.Clone()
	if len(nb.Stock) > 0 {
		top := nb.Stock[0]
		nb.Stock = nb.Stock[1:]
		nb.Waste = append(nb.Waste, top)
		return DrawResult{
			Board:  nb,
			Card:   top,
			Events: []Event{{Kind: EventCardDrawn, Card: top, Location: board.Waste()}},
		}, nil
	}

	nb.Stock = slices.Clone(nb.Waste)
	slices.Reverse(nb.Stock)
	nb.Waste = nil
	nb.StockCycles++
	return DrawResult{
		Board:    nb,
		Recycled: true,
		Events:   []Event{{Kind: EventStockRecycled, Location: board.Stock(), Cycle: nb.StockCycles}},
	}, nil
}

// CanDraw reports whether Draw would change the board
func CanDraw(b *board.Board) bool {
	return len(b.Stock) > 0 || len(b.Waste) > 0
}
