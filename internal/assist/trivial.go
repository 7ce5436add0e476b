// FILE: internal/assist/trivial.go
// Package assist holds read-only helpers layered on the engine: trivial-win
// detection and auto-complete, hints, and stalemate tracking.
package assist

import (
	"context"
	"errors"

	"meridian/internal/board"
	"meridian/internal/engine"
)

var ErrNotTriviallyWinnable = errors.New("board is not trivially winnable")

// IsTriviallyWinnable reports whether only foundation moves remain. Stock,
// waste and pockets must be empty with nothing face-down, and repeatedly
// playing column tops to the foundations must clear the tableau. Every card
// has exactly one foundation pile, so the greedy playout is exhaustive.
func IsTriviallyWinnable(b *board.Board) bool {
	if len(b.Stock) > 0 || len(b.Waste) > 0 || !b.PocketsEmpty() || b.FaceDownTotal() > 0 {
		return false
	}

	cur := b
	for cur.TableauCount() > 0 {
		m, ok := NextAutoMove(cur)
		if !ok {
			return false
		}
		res := engine.Evaluate(cur, m)
		if !res.Legal {
			return false
		}
		cur = res.Board
	}
	return true
}

// NextAutoMove picks the next foundation move, scanning column tops left to
// right and then pockets
func NextAutoMove(b *board.Board) (engine.Move, bool) {
	for i := 0; i < board.Columns; i++ {
		top, ok := b.Tableau[i].Top()
		if !ok {
			continue
		}
		m := engine.Move{From: board.Tableau(i), To: foundationFor(top), Count: 1}
		if engine.Check(b, m) == engine.ReasonNone {
			return m, true
		}
	}
	for j := 0; j < b.PocketCount && j < board.MaxPockets; j++ {
		c, ok := b.Pocket(j)
		if !ok {
			continue
		}
		m := engine.Move{From: board.Pocket(j), To: foundationFor(c), Count: 1}
		if engine.Check(b, m) == engine.ReasonNone {
			return m, true
		}
	}
	return engine.Move{}, false
}

// Plan is the sequence auto-complete applied and the board it reached
type Plan struct {
	Moves []engine.Move
	Board *board.Board
}

// AutoComplete plays a trivially winnable board out to the end. The context
// is checked between moves; on cancellation the partial plan is returned
// with the context error and every applied step is whole.
func AutoComplete(ctx context.Context, b *board.Board) (Plan, error) {
	if !IsTriviallyWinnable(b) {
		return Plan{Board: b}, ErrNotTriviallyWinnable
	}

	plan := Plan{Board: b}
	for !plan.Board.IsWon() {
		if err := ctx.Err(); err != nil {
			return plan, err
		}
		m, ok := NextAutoMove(plan.Board)
		if !ok {
			break
		}
		res := engine.Evaluate(plan.Board, m)
		plan.Moves = append(plan.Moves, m)
		plan.Board = res.Board
	}
	return plan, nil
}
