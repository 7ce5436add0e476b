// FILE: internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"

	"meridian/internal/assist"
	"meridian/internal/board"
	"meridian/internal/core"
	"meridian/internal/engine"
	"meridian/internal/validation"
)

const (
	DefaultHistoryLimit = 100
	DefaultHints        = 3
)

var (
	ErrNoUndo    = errors.New("nothing to undo")
	ErrNoRedo    = errors.New("nothing to redo")
	ErrNoHints   = errors.New("no hints remaining")
	ErrNoHint    = errors.New("no helpful move found")
	ErrGameOver  = errors.New("game is over")
	ErrInvariant = errors.New("board invariant violated")
)

type Action int

const (
	ActionMove Action = iota + 1
	ActionDraw
)

func (a Action) String() string {
	if a == ActionDraw {
		return "draw"
	}
	return "move"
}

// Entry is one history step. Before and After are retained snapshots, so
// undo and redo restore boards instead of inverting moves.
type Entry struct {
	Action        Action
	Move          engine.Move
	Record        engine.Record
	Drawn         string
	Recycled      bool
	Events        []engine.Event
	Before        *board.Board
	After         *board.Board
	TrackerBefore assist.Tracker
	TrackerAfter  assist.Tracker
}

func (e Entry) String() string {
	switch {
	case e.Action == ActionMove:
		return e.Move.String()
	case e.Recycled:
		return "recycle"
	default:
		return "draw " + e.Drawn
	}
}

type Options struct {
	HistoryLimit int
	Hints        int
	Thresholds   assist.Thresholds
	// ValidateOnApply runs the invariant validator after every action and
	// rejects any action that would break it
	ValidateOnApply bool
}

func (o Options) withDefaults() Options {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	if o.Hints < 0 {
		o.Hints = 0
	}
	return o
}

// DefaultOptions mirrors the shipped game rules
func DefaultOptions() Options {
	return Options{
		HistoryLimit: DefaultHistoryLimit,
		Hints:        DefaultHints,
		Thresholds:   assist.DefaultThresholds,
	}
}

// Game is one play session over a board. It is not safe for concurrent
// use; the service serializes access per game.
type Game struct {
	dealID  string
	initial *board.Board
	current *board.Board
	history []Entry
	redo    []Entry
	tracker assist.Tracker
	hints   int
	state   core.State
	opts    Options
	player  *core.Player
}

// New starts a game from b. b is cloned so the caller's board is never
// touched.
func New(b *board.Board, dealID string, player *core.Player, opts Options) *Game {
	opts = opts.withDefaults()
	g := &Game{
		dealID:  dealID,
		initial: b.Clone(),
		current: b.Clone(),
		hints:   opts.Hints,
		opts:    opts,
		player:  player,
	}
	g.updateState()
	return g
}

func (g *Game) DealID() string {
	return g.dealID
}

func (g *Game) Player() *core.Player {
	return g.player
}

// Board returns the current position. Boards are never mutated once
// published, so the caller may keep it.
func (g *Game) Board() *board.Board {
	return g.current
}

func (g *Game) InitialBoard() *board.Board {
	return g.initial
}

func (g *Game) State() core.State {
	return g.state
}

// Abandon ends the game without a result
func (g *Game) Abandon() {
	g.state = core.StateAbandoned
}

func (g *Game) HistoryLen() int {
	return len(g.history)
}

func (g *Game) RedoLen() int {
	return len(g.redo)
}

func (g *Game) CanUndo() bool {
	return len(g.history) > 0
}

func (g *Game) CanRedo() bool {
	return len(g.redo) > 0
}

// History returns the retained entries, oldest first
func (g *Game) History() []Entry {
	return append([]Entry(nil), g.history...)
}

func (g *Game) LastEntry() (Entry, bool) {
	if len(g.history) == 0 {
		return Entry{}, false
	}
	return g.history[len(g.history)-1], true
}

func (g *Game) HintsRemaining() int {
	return g.hints
}

func (g *Game) Tracker() assist.Tracker {
	return g.tracker
}

func (g *Game) StalemateTier() assist.Tier {
	return g.tracker.Tier(g.opts.Thresholds)
}

// Apply plays m. Illegal moves return the engine result with its reason as
// the error and leave the game unchanged.
func (g *Game) Apply(m engine.Move) (engine.Result, error) {
	if g.state.IsOver() {
		return engine.Result{}, ErrGameOver
	}

	res := engine.Evaluate(g.current, m)
	if !res.Legal {
		return res, res.Err()
	}
	if err := g.check(res.Board); err != nil {
		return res, err
	}

	g.push(Entry{
		Action: ActionMove,
		Move:   m,
		Record: res.Record,
		Events: res.Events,
		Before: g.current,
		After:  res.Board,
	})
	return res, nil
}

// Draw turns a stock card or recycles the waste
func (g *Game) Draw() (engine.DrawResult, error) {
	if g.state.IsOver() {
		return engine.DrawResult{}, ErrGameOver
	}

	res, err := engine.Draw(g.current)
	if err != nil {
		return res, err
	}
	if err := g.check(res.Board); err != nil {
		return res, err
	}

	e := Entry{
		Action:   ActionDraw,
		Recycled: res.Recycled,
		Events:   res.Events,
		Before:   g.current,
		After:    res.Board,
	}
	if !res.Card.IsZero() {
		e.Drawn = res.Card.String()
	}
	g.push(e)
	return res, nil
}

func (g *Game) check(b *board.Board) error {
	if !g.opts.ValidateOnApply {
		return nil
	}
	report := validation.ValidateBoard(b)
	if report.IsValid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvariant, report.Errors[0])
}

func (g *Game) push(e Entry) {
	e.TrackerBefore = g.tracker
	g.tracker.Observe(e.Events)
	e.TrackerAfter = g.tracker

	if len(g.history) >= g.opts.HistoryLimit {
		// sliding window: the oldest step can no longer be undone
		g.history = append(g.history[:0], g.history[1:]...)
	}
	g.history = append(g.history, e)
	g.redo = g.redo[:0]
	g.current = e.After
	g.updateState()
}

// Undo steps back one action
func (g *Game) Undo() (Entry, error) {
	if len(g.history) == 0 {
		return Entry{}, ErrNoUndo
	}
	e := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.redo = append(g.redo, e)
	g.current = e.Before
	g.tracker = e.TrackerBefore
	g.updateState()
	return e, nil
}

// Redo replays the most recently undone action
func (g *Game) Redo() (Entry, error) {
	if len(g.redo) == 0 {
		return Entry{}, ErrNoRedo
	}
	e := g.redo[len(g.redo)-1]
	g.redo = g.redo[:len(g.redo)-1]
	g.history = append(g.history, e)
	g.current = e.After
	g.tracker = e.TrackerAfter
	g.updateState()
	return e, nil
}

// UndoMoves undoes up to count actions and reports how many were undone
func (g *Game) UndoMoves(count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("invalid undo count: %d", count)
	}
	n := 0
	for ; n < count; n++ {
		if _, err := g.Undo(); err != nil {
			if n == 0 {
				return 0, err
			}
			break
		}
	}
	return n, nil
}

// RedoMoves redoes up to count actions and reports how many were redone
func (g *Game) RedoMoves(count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("invalid redo count: %d", count)
	}
	n := 0
	for ; n < count; n++ {
		if _, err := g.Redo(); err != nil {
			if n == 0 {
				return 0, err
			}
			break
		}
	}
	return n, nil
}

// Hint spends one of the game's hints. A search that finds nothing does
// not consume a hint.
func (g *Game) Hint() (engine.Move, error) {
	if g.hints <= 0 {
		return engine.Move{}, ErrNoHints
	}
	m, ok := assist.Hint(g.current)
	if !ok {
		return engine.Move{}, ErrNoHint
	}
	g.hints--
	return m, nil
}

// Tap moves the card or run at from to its best destination
func (g *Game) Tap(from board.Location, count int) (engine.Result, error) {
	to, ok := assist.BestDestination(g.current, from, count)
	if !ok {
		return engine.Result{Reason: engine.IllegalLocation}, fmt.Errorf("no destination for %s: %w", from, engine.IllegalLocation)
	}
	return g.Apply(engine.Move{From: from, To: to, Count: count})
}

// AutoComplete plays a trivially winnable game to the end, one recorded
// move at a time. step, when set, sees each applied move; returning an
// error from it stops the sequence.
func (g *Game) AutoComplete(ctx context.Context, step func(engine.Result) error) ([]engine.Move, error) {
	if !assist.IsTriviallyWinnable(g.current) {
		return nil, assist.ErrNotTriviallyWinnable
	}

	var moves []engine.Move
	for !g.current.IsWon() {
		if err := ctx.Err(); err != nil {
			return moves, err
		}
		m, ok := assist.NextAutoMove(g.current)
		if !ok {
			break
		}
		res, err := g.Apply(m)
		if err != nil {
			return moves, err
		}
		moves = append(moves, m)
		if step != nil {
			if err := step(res); err != nil {
				return moves, err
			}
		}
	}
	return moves, nil
}

func (g *Game) TriviallyWinnable() bool {
	return assist.IsTriviallyWinnable(g.current)
}

func (g *Game) updateState() {
	if g.state == core.StateAbandoned {
		return
	}
	switch {
	case g.current.IsWon():
		g.state = core.StateWon
	case assist.IsStalemate(g.current):
		g.state = core.StateStalemate
	default:
		g.state = core.StateOngoing
	}
}
