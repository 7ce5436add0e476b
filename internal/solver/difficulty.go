// FILE: internal/solver/difficulty.go
package solver

import (
	"fmt"
	"strings"
	"time"

	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/deal"
)

// Score thresholds; anything above ModerateMax is hard
const (
	EasyMax     = 40.0
	ModerateMax = 80.0
)

type Metrics struct {
	SolutionMoves        int
	Nodes                int
	DeadEnds             int
	Elapsed              time.Duration
	BranchingFactor      float64
	StarterAccessibility int
	Score                float64
	Tier                 string
}

// Score weighs solution length, dead ends, how few choices each position
// offered, and how deeply the sevens and sixes are buried
func Score(moves, deadEnds int, branching float64, starters int) float64 {
	return float64(moves)*0.3 +
		float64(deadEnds)*2.0 +
		(3.0-min(branching, 3.0))*20 +
		float64(starters)*5
}

func Tier(score float64) string {
	switch {
	case score <= EasyMax:
		return deal.DifficultyEasy
	case score <= ModerateMax:
		return deal.DifficultyModerate
	default:
		return deal.DifficultyHard
	}
}

// Branching approximates the average number of choices per position as
// positions explored over solution length
func Branching(nodes, moves int) float64 {
	if moves == 0 {
		return 0
	}
	return float64(nodes) / float64(moves)
}

// StarterAccessibility is the largest number of cards stacked above any
// seven or six in the tableau. With faceUpOnly set, buried face-down
// starters are not counted.
func StarterAccessibility(b *board.Board, faceUpOnly bool) int {
	deepest := 0
	for _, col := range b.Tableau {
		from := 0
		if faceUpOnly {
			from = col.FaceDown
		}
		for i := from; i < col.Len(); i++ {
			if r := col.Cards[i].Rank; r == card.Rank(6) || r == card.Rank(7) {
				deepest = max(deepest, col.Len()-i-1)
			}
		}
	}
	return deepest
}

// Analyze grades a solved deal. Without a solution only visible starters
// are considered.
func Analyze(b *board.Board, res Result) Metrics {
	m := Metrics{
		SolutionMoves: len(res.Solution),
		Nodes:         res.Nodes,
		DeadEnds:      res.DeadEnds,
		Elapsed:       res.Elapsed,
	}
	m.StarterAccessibility = StarterAccessibility(b, len(res.Solution) == 0)
	m.BranchingFactor = Branching(res.Nodes, m.SolutionMoves)
	m.Score = Score(m.SolutionMoves, m.DeadEnds, m.BranchingFactor, m.StarterAccessibility)
	m.Tier = Tier(m.Score)
	return m
}

// Distribution counts metrics per tier
func Distribution(all []Metrics) map[string]int {
	dist := make(map[string]int, len(deal.Difficulties))
	for _, d := range deal.Difficulties {
		dist[d] = 0
	}
	for _, m := range all {
		dist[m.Tier]++
	}
	return dist
}

// Report renders m as a markdown section
func Report(m Metrics) string {
	var sb strings.Builder
	sb.WriteString("## Difficulty Analysis\n\n")
	fmt.Fprintf(&sb, "**Difficulty Score:** %.1f\n", m.Score)
	fmt.Fprintf(&sb, "**Recommended Tier:** %s\n\n", strings.ToUpper(m.Tier))
	sb.WriteString("### Solver Metrics\n")
	fmt.Fprintf(&sb, "- Solution Moves: %d\n", m.SolutionMoves)
	fmt.Fprintf(&sb, "- Nodes Explored: %d\n", m.Nodes)
	fmt.Fprintf(&sb, "- Dead Ends: %d\n", m.DeadEnds)
	fmt.Fprintf(&sb, "- Solve Time: %dms\n", m.Elapsed.Milliseconds())
	fmt.Fprintf(&sb, "- Branching Factor: %.2f\n\n", m.BranchingFactor)
	sb.WriteString("### Card Analysis\n")
	fmt.Fprintf(&sb, "- Starter Accessibility: %d moves\n\n", m.StarterAccessibility)
	sb.WriteString("### Classification\n")
	switch m.Tier {
	case deal.DifficultyEasy:
		sb.WriteString("Suitable for the bronze tier (levels 1-10).\n")
	case deal.DifficultyModerate:
		sb.WriteString("Suitable for the silver tier (levels 11-20).\n")
	default:
		sb.WriteString("Suitable for the gold tier (levels 21-30).\n")
	}
	return sb.String()
}
