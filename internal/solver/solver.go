// FILE: internal/solver/solver.go
// Package solver searches deals for a winning line and grades how hard
// that line was to find.
package solver

import (
	"context"
	"fmt"
	"time"

	"meridian/internal/board"
	"meridian/internal/engine"
)

const (
	DefaultMaxNodes = 10000
	DefaultMaxTime  = 5 * time.Second
)

type Options struct {
	MaxNodes int
	MaxTime  time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.MaxTime <= 0 {
		o.MaxTime = DefaultMaxTime
	}
	return o
}

// Step is one action on a solution line: a move, or a draw when Draw is set
type Step struct {
	Draw bool
	Move engine.Move
}

func (s Step) String() string {
	if s.Draw {
		return "draw"
	}
	return s.Move.String()
}

type Result struct {
	Winnable bool
	Solution []Step
	Nodes    int
	DeadEnds int
	MaxDepth int
	Elapsed  time.Duration
	// Exhausted is set when a node or time limit stopped the search, so an
	// unwinnable verdict is only a lower bound
	Exhausted bool
}

func (r Result) String() string {
	status := "not winnable"
	if r.Winnable {
		status = "winnable"
	}
	if r.Exhausted {
		status += " (limit reached)"
	}
	return status
}

type node struct {
	board  *board.Board
	parent *node
	step   Step
	depth  int
}

func (n *node) path() []Step {
	steps := make([]Step, n.depth)
	for cur := n; cur.parent != nil; cur = cur.parent {
		steps[cur.depth-1] = cur.step
	}
	return steps
}

// Solve runs a breadth-first search from b over the useful moves and
// draws, so the first win found is a shortest one. Positions are deduplicated by
// fingerprint. The search gives up after MaxNodes positions or MaxTime.
func Solve(ctx context.Context, b *board.Board, opts Options) (Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	res := Result{Nodes: 1}
	if b.IsWon() {
		res.Winnable = true
		return res, nil
	}

	visited := map[string]struct{}{b.Fingerprint(): {}}
	queue := []*node{{board: b}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			res.Elapsed = time.Since(start)
			return res, err
		}
		if res.Nodes >= opts.MaxNodes || time.Since(start) > opts.MaxTime {
			res.Exhausted = true
			break
		}

		cur := queue[0]
		queue[0] = nil
		queue = queue[1:]
		res.MaxDepth = max(res.MaxDepth, cur.depth)

		next := successors(cur)
		if len(next) == 0 {
			res.DeadEnds++
			continue
		}
		for _, n := range next {
			if n.board.IsWon() {
				res.Winnable = true
				res.Solution = n.path()
				res.MaxDepth = max(res.MaxDepth, n.depth)
				res.Elapsed = time.Since(start)
				return res, nil
			}
			fp := n.board.Fingerprint()
			if _, seen := visited[fp]; seen {
				continue
			}
			visited[fp] = struct{}{}
			res.Nodes++
			queue = append(queue, n)
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func successors(cur *node) []*node {
	var out []*node
	for _, m := range engine.LegalMoves(cur.board) {
		if !useful(cur.board, m) {
			continue
		}
		r := engine.Evaluate(cur.board, m)
		if !r.Legal {
			continue
		}
		out = append(out, &node{board: r.Board, parent: cur, step: Step{Move: m}, depth: cur.depth + 1})
	}
	if canCycle(cur.board) {
		if d, err := engine.Draw(cur.board); err == nil {
			out = append(out, &node{board: d.Board, parent: cur, step: Step{Draw: true}, depth: cur.depth + 1})
		}
	}
	return out
}

// useful prunes legal moves that never bring a win closer: cards leaving a
// foundation, pocket loads from anywhere but the waste, and a whole column
// shuffled into an empty one
func useful(b *board.Board, m engine.Move) bool {
	switch {
	case m.From.Zone == board.ZoneFoundation:
		return false
	case m.To.Zone == board.ZonePocket:
		return m.From.Zone == board.ZoneWaste
	case m.From.Zone == board.ZoneTableau && m.To.Zone == board.ZoneTableau:
		return m.Count < b.Tableau[m.From.Index].Len() || b.Tableau[m.To.Index].Len() > 0
	}
	return true
}

// canCycle allows a draw, or a recycle of more than one waste card
func canCycle(b *board.Board) bool {
	return len(b.Stock) > 0 || len(b.Waste) > 1
}

// Replay applies steps to b in order and returns the final board
func Replay(b *board.Board, steps []Step) (*board.Board, error) {
	cur := b
	for i, s := range steps {
		if s.Draw {
			d, err := engine.Draw(cur)
			if err != nil {
				return cur, &StepError{Index: i, Step: s, Err: err}
			}
			cur = d.Board
			continue
		}
		r := engine.Evaluate(cur, s.Move)
		if !r.Legal {
			return cur, &StepError{Index: i, Step: s, Err: r.Err()}
		}
		cur = r.Board
	}
	return cur, nil
}

type StepError struct {
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
