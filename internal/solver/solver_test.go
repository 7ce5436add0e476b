// FILE: internal/solver/solver_test.go
package solver

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/deal"
	"meridian/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// homeExcept builds a board with every card on its foundation except the
// given ones, which are left off the board for the caller to place. A pile
// stops at its first skipped card, so name every card above it too.
func homeExcept(tokens ...string) *board.Board {
	skip := make(map[card.Card]bool, len(tokens))
	for _, c := range card.MustParseAll(tokens...) {
		skip[c] = true
	}
	b := board.New(board.ModeClassic)
	for _, s := range card.Suits {
		for r := card.Rank(7); r <= card.King; r++ {
			c := card.Card{Rank: r, Suit: s}
			if skip[c] {
				break
			}
			b.Foundations[board.Up][s.Index()] = append(b.Foundations[board.Up][s.Index()], c)
		}
		for r := card.Rank(6); r >= card.Ace; r-- {
			c := card.Card{Rank: r, Suit: s}
			if skip[c] {
				break
			}
			b.Foundations[board.Down][s.Index()] = append(b.Foundations[board.Down][s.Index()], c)
		}
	}
	return b
}

func TestSolve_AlreadyWon(t *testing.T) {
	res, err := Solve(context.Background(), homeExcept(), Options{})
	require.NoError(t, err)
	assert.True(t, res.Winnable)
	assert.Empty(t, res.Solution)
	assert.Equal(t, 1, res.Nodes)
}

func TestSolve_FindsShortestLine(t *testing.T) {
	b := homeExcept("Kd", "Qc", "Kc")
	b.Stock = card.MustParseAll("Kd")
	b.Tableau[0] = board.Column{Cards: card.MustParseAll("Qc")}
	b.Tableau[1] = board.Column{Cards: card.MustParseAll("Kc")}
	require.Len(t, b.Cards(), 52)

	res, err := Solve(context.Background(), b, Options{})
	require.NoError(t, err)
	require.True(t, res.Winnable)
	require.Len(t, res.Solution, 4)
	assert.False(t, res.Exhausted)

	steps := make([]string, len(res.Solution))
	for i, s := range res.Solution {
		steps[i] = s.String()
	}
	assert.Contains(t, steps, "draw")
	assert.Contains(t, steps, "t0>up:c")
	assert.Contains(t, steps, "t1>up:c")
	assert.Contains(t, steps, "waste>up:d")
	assert.Less(t, slices.Index(steps, "t0>up:c"), slices.Index(steps, "t1>up:c"))
	assert.Equal(t, 4, res.MaxDepth)

	final, err := Replay(b, res.Solution)
	require.NoError(t, err)
	assert.True(t, final.IsWon())
}

func TestSuccessors_SkipsUselessMoves(t *testing.T) {
	b := board.New(board.ModeClassicDouble)
	b.Tableau[0] = board.Column{Cards: card.MustParseAll("Ks")}
	b.Foundations[board.Up][card.Hearts.Index()] = card.MustParseAll("7h")
	b.Waste = card.MustParseAll("2c")

	// legal but pointless: Ks into an empty column or a pocket, 7h off its
	// pile, and a single-card recycle
	require.NotEmpty(t, engine.LegalMoves(b))

	var steps []string
	for _, n := range successors(&node{board: b}) {
		steps = append(steps, n.step.String())
	}
	assert.ElementsMatch(t, []string{"waste>p1", "waste>p2"}, steps)

	assert.True(t, useful(b, mustMove(t, "t0>up:s")))
	assert.False(t, useful(b, mustMove(t, "t0>t1")))
	assert.False(t, useful(b, mustMove(t, "t0>p1")))
	assert.False(t, useful(b, mustMove(t, "up:h>p1")))
}

func TestSolve_DeadEnd(t *testing.T) {
	b := board.New(board.ModeClassic)
	b.Tableau[0] = board.Column{Cards: card.MustParseAll("9c", "8h")}
	b.Pockets[0] = card.MustParse("Js")

	res, err := Solve(context.Background(), b, Options{})
	require.NoError(t, err)
	assert.False(t, res.Winnable)
	assert.False(t, res.Exhausted)
	assert.Equal(t, 1, res.DeadEnds)
}

func TestSolve_NodeLimit(t *testing.T) {
	d, err := deal.Generate(deal.GenerateOptions{Mode: board.ModeHidden, Seed: 3})
	require.NoError(t, err)
	b, err := d.ToBoard()
	require.NoError(t, err)

	res, err := Solve(context.Background(), b, Options{MaxNodes: 5, MaxTime: time.Minute})
	require.NoError(t, err)
	if !res.Winnable {
		assert.True(t, res.Exhausted)
	}
	assert.LessOrEqual(t, res.Nodes, 5+len(b.Stock)+64)
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := homeExcept("Kd")
	b.Stock = card.MustParseAll("Kd")
	_, err := Solve(ctx, b, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplay_ReportsFailingStep(t *testing.T) {
	b := homeExcept("Kd")
	b.Waste = card.MustParseAll("Kd")

	_, err := Replay(b, []Step{{Draw: true}, {Draw: true}})
	require.NoError(t, err)

	var se *StepError
	_, err = Replay(b, []Step{{Move: mustMove(t, "waste>up:h")}})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
}

func mustMove(t *testing.T, s string) engine.Move {
	t.Helper()
	m, err := engine.ParseMove(s)
	require.NoError(t, err)
	return m
}

func TestScoreAndTier(t *testing.T) {
	tests := []struct {
		name      string
		moves     int
		deadEnds  int
		branching float64
		starters  int
		score     float64
		tier      string
	}{
		{"wide open", 10, 0, 5, 0, 3, deal.DifficultyEasy},
		{"boundary easy", 0, 0, 3, 8, 40, deal.DifficultyEasy},
		{"narrow", 20, 5, 1, 2, 66, deal.DifficultyModerate},
		{"buried", 50, 10, 0, 4, 115, deal.DifficultyHard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.moves, tt.deadEnds, tt.branching, tt.starters)
			assert.InDelta(t, tt.score, got, 1e-9)
			assert.Equal(t, tt.tier, Tier(got))
		})
	}
	assert.Equal(t, deal.DifficultyModerate, Tier(80))
	assert.Equal(t, deal.DifficultyHard, Tier(80.1))
}

func TestStarterAccessibility(t *testing.T) {
	b := board.New(board.ModeHidden)
	b.Tableau[0] = board.Column{Cards: card.MustParseAll("7h", "Qc", "4d", "Jh"), FaceDown: 3}
	b.Tableau[1] = board.Column{Cards: card.MustParseAll("Ks", "6d", "2c"), FaceDown: 1}

	assert.Equal(t, 3, StarterAccessibility(b, false))
	assert.Equal(t, 1, StarterAccessibility(b, true))
}

func TestAnalyzeAndReport(t *testing.T) {
	b := homeExcept("Kd")
	b.Stock = card.MustParseAll("Kd")
	res, err := Solve(context.Background(), b, Options{})
	require.NoError(t, err)

	m := Analyze(b, res)
	assert.Equal(t, 2, m.SolutionMoves)
	assert.Equal(t, Tier(m.Score), m.Tier)

	dist := Distribution([]Metrics{m, {Tier: deal.DifficultyHard}})
	assert.Equal(t, 1, dist[deal.DifficultyHard])
	assert.Contains(t, dist, deal.DifficultyModerate)

	report := Report(m)
	assert.True(t, strings.HasPrefix(report, "## Difficulty Analysis"))
	assert.Contains(t, report, "- Solution Moves: 2")
}
