// FILE: internal/engine/engine_test.go
package engine

import (
	"errors"
	"testing"

	"meridian/internal/board"
	"meridian/internal/card"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(tokens ...string) []card.Card {
	return card.MustParseAll(tokens...)
}

func mv(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	require.NoError(t, err)
	return m
}

func TestEvaluate_FoundationNeedsNextRank(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Foundations[board.Up][card.Hearts.Index()] = cards("7h", "8h")
	b.Waste = cards("10h")

	res := Evaluate(b, mv(t, "waste>up:h"))
	assert.False(t, res.Legal)
	assert.Equal(t, FoundationRankMismatch, res.Reason)
	assert.Nil(t, res.Board)

	b.Waste = cards("9h")
	res = Evaluate(b, mv(t, "waste>up:h"))
	require.True(t, res.Legal)
	assert.Equal(t, cards("7h", "8h", "9h"), res.Board.Foundations.Pile(board.Up, card.Hearts))
	require.Len(t, res.Events, 1)
	assert.Equal(t, EventFoundationPlaced, res.Events[0].Kind)

	// input board is untouched
	assert.Len(t, b.Foundations.Pile(board.Up, card.Hearts), 2)
	assert.Len(t, b.Waste, 1)
}

func TestEvaluate_FoundationAnchors(t *testing.T) {
	b := board.New(board.ModeClassic)

	b.Waste = cards("6h")
	assert.Equal(t, ReasonNone, Check(b, mv(t, "waste>down:h")))
	assert.Equal(t, FoundationRankMismatch, Check(b, mv(t, "waste>up:h")))
	assert.Equal(t, WrongFoundationSuit, Check(b, mv(t, "waste>down:s")))

	b.Waste = cards("7c")
	assert.Equal(t, ReasonNone, Check(b, mv(t, "waste>up:c")))
	assert.Equal(t, FoundationRankMismatch, Check(b, mv(t, "waste>down:c")))

	b.Foundations[board.Up][card.Clubs.Index()] = cards("7c", "8c", "9c", "10c", "Jc", "Qc", "Kc")
	b.Waste = cards("Ac")
	assert.Equal(t, FoundationRankMismatch, Check(b, mv(t, "waste>up:c")))
}

func TestEvaluate_EmptyColumnNeedsAceOrKing(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Waste = cards("Ah", "5d")

	res := Evaluate(b, mv(t, "waste>t0"))
	assert.Equal(t, ColumnMustStartAceOrKing, res.Reason)

	b.Waste = cards("5d", "Ah")
	res = Evaluate(b, mv(t, "waste>t0"))
	require.True(t, res.Legal)
	assert.Equal(t, board.ColumnAce, res.Board.Tableau[0].Type())
	assert.True(t, res.Record.Effects.ColumnTyped)
	assert.Equal(t, board.ColumnAce, res.Record.Effects.NewType)
	require.Len(t, res.Events, 1)
	assert.Equal(t, EventColumnTyped, res.Events[0].Kind)
	assert.Equal(t, board.ColumnEmpty, b.Tableau[0].Type())
}

func TestEvaluate_ColumnDisciplines(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Tableau[0] = board.Column{Cards: cards("Ah", "2s")}
	b.Tableau[1] = board.Column{Cards: cards("Ks", "Qh")}
	b.Tableau[2] = board.Column{Cards: cards("9c", "8h")}
	b.Tableau[3] = board.Column{Cards: cards("Ac", "2h", "3s", "4d", "5c", "6h")}

	tests := []struct {
		name  string
		waste string
		to    string
		want  Reason
	}{
		{"ace column ascends", "3h", "t0", ReasonNone},
		{"ace column same color", "3s", "t0", WrongColor},
		{"ace column skips rank", "4d", "t0", NonConsecutiveRank},
		{"ace column never descends", "As", "t0", NonConsecutiveRank},
		{"ace column caps at six", "7s", "t3", NonConsecutiveRank},
		{"king column descends", "Jc", "t1", ReasonNone},
		{"king column same color", "Jd", "t1", WrongColor},
		{"king column never ascends", "Ks", "t1", NonConsecutiveRank},
		{"traditional column is closed", "7s", "t2", ColumnClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := b.Clone()
			nb.Waste = cards(tt.waste)
			assert.Equal(t, tt.want, Check(nb, mv(t, "waste>"+tt.to)))
		})
	}
}

func TestEvaluate_RevealsFaceDownCard(t *testing.T) {
	b := board.New(board.ModeHidden)
	b.Tableau[0] = board.Column{Cards: cards("Ks", "Qh", "Jc", "10h", "9c")}
	b.Tableau[1] = board.Column{Cards: cards("Kc", "4h", "8d"), FaceDown: 2}

	res := Evaluate(b, mv(t, "t1>t0"))
	require.True(t, res.Legal, res.Reason.Error())

	col := res.Board.Tableau[1]
	assert.Equal(t, cards("Kc", "4h"), col.Cards)
	assert.Equal(t, 1, col.FaceDown)
	assert.Equal(t, card.MustParse("4h"), res.Record.Effects.Revealed)
	require.Len(t, res.Events, 1)
	assert.Equal(t, EventCardRevealed, res.Events[0].Kind)
	assert.Equal(t, board.Tableau(1), res.Events[0].Location)

	// source column keeps its hidden cards in the original
	assert.Equal(t, 2, b.Tableau[1].FaceDown)
}

func TestEvaluate_RunMove(t *testing.T) {
	b := board.New(board.ModeHidden)
	b.Tableau[0] = board.Column{Cards: cards("Ks", "Qh")}
	b.Tableau[2] = board.Column{Cards: cards("2s", "Jc", "10d"), FaceDown: 1}

	res := Evaluate(b, mv(t, "t2*2>t0"))
	require.True(t, res.Legal, res.Reason.Error())
	assert.Equal(t, cards("Ks", "Qh", "Jc", "10d"), res.Board.Tableau[0].Cards)
	assert.Equal(t, cards("2s"), res.Board.Tableau[2].Cards)
	assert.Equal(t, 0, res.Board.Tableau[2].FaceDown)
	assert.Equal(t, cards("Jc", "10d"), res.Record.Cards)

	assert.Equal(t, SourceCardFaceDown, Check(b, mv(t, "t2*3>t0")))
	assert.Equal(t, InvalidRun, Check(b, mv(t, "t2*4>t0")))
}

func TestEvaluate_EmptyingColumn(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Tableau[0] = board.Column{Cards: cards("Ks", "Qh")}
	b.Tableau[4] = board.Column{Cards: cards("Jc")}

	res := Evaluate(b, mv(t, "t4>t0"))
	require.True(t, res.Legal)
	assert.Equal(t, board.ColumnEmpty, res.Board.Tableau[4].Type())
	assert.True(t, res.Record.Effects.ColumnEmptied)
	require.Len(t, res.Events, 1)
	assert.Equal(t, EventColumnEmptied, res.Events[0].Kind)
}

func TestEvaluate_InvalidRun(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Tableau[0] = board.Column{Cards: cards("Ks", "Qh", "5c")}
	assert.Equal(t, InvalidRun, Check(b, mv(t, "t0*2>t1")))
}

func TestEvaluate_Pockets(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Waste = cards("9c")

	res := Evaluate(b, mv(t, "waste>p1"))
	require.True(t, res.Legal)
	p, ok := res.Board.Pocket(0)
	require.True(t, ok)
	assert.Equal(t, card.MustParse("9c"), p)
	assert.Empty(t, res.Board.Waste)

	nb := res.Board.Clone()
	nb.Waste = cards("2d")
	assert.Equal(t, PocketOccupied, Check(nb, mv(t, "waste>p1")))
	assert.Equal(t, IllegalLocation, Check(nb, mv(t, "waste>p2")))

	double := board.New(board.ModeClassicDouble)
	double.Waste = cards("2d")
	assert.Equal(t, ReasonNone, Check(double, mv(t, "waste>p2")))
}

func TestEvaluate_Sources(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Stock = cards("Ah")
	b.Tableau[1] = board.Column{Cards: cards("Kc"), FaceDown: 1}
	b.Tableau[2] = board.Column{Cards: cards("Ah")}

	assert.Equal(t, IllegalLocation, Check(b, mv(t, "stock>t0")))
	assert.Equal(t, SourceEmpty, Check(b, mv(t, "waste>t0")))
	assert.Equal(t, SourceEmpty, Check(b, mv(t, "p1>t0")))
	assert.Equal(t, SourceEmpty, Check(b, mv(t, "t3>t0")))
	assert.Equal(t, SourceCardFaceDown, Check(b, mv(t, "t1>t0")))
	assert.Equal(t, IllegalLocation, Check(b, mv(t, "t0>t0")))
	assert.Equal(t, IllegalLocation, Check(b, Move{From: board.Tableau(2), To: board.Waste()}))

	b.Waste = cards("Qh")
	assert.Equal(t, TargetFaceDown, Check(b, mv(t, "waste>t1")))
}

func TestEvaluate_FoundationAsSource(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Foundations[board.Up][card.Spades.Index()] = cards("7s", "8s")
	b.Tableau[0] = board.Column{Cards: cards("Kh", "Qc", "Jh", "10c", "9d")}

	res := Evaluate(b, mv(t, "up:s>t0"))
	require.True(t, res.Legal)
	assert.Equal(t, cards("7s"), res.Board.Foundations.Pile(board.Up, card.Spades))
}

func TestResult_Err(t *testing.T) {
	b := board.New(board.ModeClassic)
	res := Evaluate(b, mv(t, "waste>t0"))
	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, SourceEmpty))

	var reason Reason
	require.True(t, errors.As(err, &reason))
	assert.Equal(t, "SourceEmpty", reason.String())
}

func TestDraw_RecyclesReversedWaste(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Stock = cards("Ks", "Qh")

	r1, err := Draw(b)
	require.NoError(t, err)
	assert.Equal(t, card.MustParse("Ks"), r1.Card)

	r2, err := Draw(r1.Board)
	require.NoError(t, err)
	assert.Equal(t, cards("Ks", "Qh"), r2.Board.Waste)
	assert.Empty(t, r2.Board.Stock)
	assert.False(t, r1.Recycled)
	assert.False(t, r2.Recycled)

	r3, err := Draw(r2.Board)
	require.NoError(t, err)
	assert.True(t, r3.Recycled)
	assert.Equal(t, cards("Qh", "Ks"), r3.Board.Stock)
	assert.Empty(t, r3.Board.Waste)
	assert.Equal(t, 1, r3.Board.StockCycles)
	require.Len(t, r3.Events, 1)
	assert.Equal(t, EventStockRecycled, r3.Events[0].Kind)
	assert.Equal(t, 1, r3.Events[0].Cycle)

	// earlier boards unchanged
	assert.Equal(t, cards("Ks", "Qh"), b.Stock)
	assert.Equal(t, 0, r2.Board.StockCycles)
}

func TestDraw_NothingToDraw(t *testing.T) {
	b := board.New(board.ModeClassic)
	_, err := Draw(b)
	assert.ErrorIs(t, err, ErrNothingToDraw)
	assert.False(t, CanDraw(b))
}

func TestLegalMoves(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Tableau[0] = board.Column{Cards: cards("Ks", "Qh")}
	b.Waste = cards("7d")

	moves := LegalMoves(b)
	assert.Contains(t, moves, Move{From: board.Waste(), To: board.Foundation(board.Up, card.Diamonds), Count: 1})
	assert.Contains(t, moves, Move{From: board.Waste(), To: board.Pocket(0), Count: 1})
	assert.Contains(t, moves, Move{From: board.Tableau(0), To: board.Tableau(1), Count: 2})
	assert.NotContains(t, moves, Move{From: board.Waste(), To: board.Tableau(0), Count: 1})

	for _, m := range moves {
		assert.True(t, Evaluate(b, m).Legal, m.String())
	}
	assert.True(t, HasLegalAction(b))

	assert.True(t, IsValidTarget(b, board.Waste(), 1, board.Foundation(board.Up, card.Diamonds)))
	assert.False(t, IsValidTarget(b, board.Waste(), 1, board.Foundation(board.Down, card.Diamonds)))
}

func TestHasLegalAction_DeadBoard(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Tableau[0] = board.Column{Cards: cards("9c", "8h")}
	b.Tableau[1] = board.Column{Cards: cards("5s", "4d")}
	b.Pockets[0] = card.MustParse("Js")

	assert.Empty(t, LegalMoves(b))
	assert.False(t, HasLegalAction(b))
}

func TestParseMove(t *testing.T) {
	for _, s := range []string{"t3>up:h", "t3*2>t5", "waste>p1", "p2>down:s"} {
		m, err := ParseMove(s)
		require.NoError(t, err)
		assert.Equal(t, s, m.String())
	}

	m, err := ParseMove("w t0")
	require.NoError(t, err)
	assert.Equal(t, Move{From: board.Waste(), To: board.Tableau(0), Count: 1}, m)

	for _, bad := range []string{"", "t0", "t0*x>t1", "t0*0>t1", "t9>t1", "t0>up:z"} {
		_, err := ParseMove(bad)
		assert.Error(t, err, bad)
	}
}
