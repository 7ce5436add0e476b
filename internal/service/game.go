// FILE: internal/service/game.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"meridian/internal/assist"
	"meridian/internal/board"
	"meridian/internal/core"
	"meridian/internal/deal"
	"meridian/internal/engine"
	"meridian/internal/game"
	"meridian/internal/storage"
	"meridian/internal/validation"
)

// Action describes the most recent change to a game
type Action struct {
	Kind     string // one of the storage action types
	Notation string
	Events   []engine.Event
}

// View is a consistent snapshot of one game, taken under its lock
type View struct {
	ID                string
	DealID            string
	Mode              board.Mode
	State             core.State
	Board             *board.Board
	HistoryLen        int
	RedoLen           int
	HintsRemaining    int
	Moves             int
	Tier              assist.Tier
	TriviallyWinnable bool
	Player            *core.Player
	Version           int
	Last              *Action
}

func (sess *session) view() View {
	g := sess.game
	b := g.Board()
	return View{
		ID:                sess.id,
		DealID:            g.DealID(),
		Mode:              b.Mode,
		State:             g.State(),
		Board:             b,
		HistoryLen:        g.HistoryLen(),
		RedoLen:           g.RedoLen(),
		HintsRemaining:    g.HintsRemaining(),
		Moves:             g.Tracker().Moves,
		Tier:              g.StalemateTier(),
		TriviallyWinnable: g.TriviallyWinnable(),
		Player:            g.Player(),
		Version:           sess.version,
		Last:              sess.last,
	}
}

// CreateParams picks the starting position of a new game: an inline deal,
// a pooled deal by id, or a freshly generated deal for the mode
type CreateParams struct {
	Mode       string
	DealID     string
	Deal       *deal.Deal
	Seed       *int64
	Difficulty string
	Player     core.PlayerConfig
}

// CreateGame starts a game and returns its first snapshot
func (s *Service) CreateGame(p CreateParams) (View, error) {
	d, err := s.resolveDeal(p)
	if err != nil {
		return View{}, err
	}

	report := validation.ValidateDeal(d)
	if !report.IsValid {
		return View{}, fmt.Errorf("%w: %s", ErrInvalidDeal, report.Errors[0])
	}
	b, err := d.ToBoard()
	if err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidDeal, err)
	}

	g := game.New(b, d.Metadata.ID, core.NewPlayer(p.Player), s.opts.Game)
	return s.register(g)
}

func (s *Service) resolveDeal(p CreateParams) (*deal.Deal, error) {
	switch {
	case p.Deal != nil:
		return p.Deal, nil
	case p.DealID != "":
		d, ok := s.deals.Get(p.DealID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDealNotFound, p.DealID)
		}
		return d, nil
	}

	mode := board.Mode(p.Mode)
	if mode == "" {
		mode = board.ModeClassic
	}
	seed := rand.Int64()
	if p.Seed != nil {
		seed = *p.Seed
	}
	return deal.Generate(deal.GenerateOptions{Mode: mode, Difficulty: p.Difficulty, Seed: seed})
}

// Move applies m. An illegal move comes back as the engine result with
// its reason wrapped in the error.
func (s *Service) Move(gameID string, m engine.Move) (View, engine.Result, error) {
	var v View
	var res engine.Result
	err := s.with(gameID, func(sess *session) error {
		prev := sess.game.State()
		var err error
		res, err = sess.game.Apply(m)
		if err != nil {
			return err
		}
		s.afterAction(sess, prev, storage.ActionMove, m.String(), res.Events)
		v = sess.view()
		return nil
	})
	return v, res, err
}

// Tap moves the card or run at from to its best destination
func (s *Service) Tap(gameID string, from board.Location, count int) (View, engine.Result, error) {
	var v View
	var res engine.Result
	err := s.with(gameID, func(sess *session) error {
		prev := sess.game.State()
		var err error
		res, err = sess.game.Tap(from, count)
		if err != nil {
			return err
		}
		s.afterAction(sess, prev, storage.ActionMove, res.Record.Move.String(), res.Events)
		v = sess.view()
		return nil
	})
	return v, res, err
}

// Draw turns a stock card or recycles the waste
func (s *Service) Draw(gameID string) (View, engine.DrawResult, error) {
	var v View
	var res engine.DrawResult
	err := s.with(gameID, func(sess *session) error {
		prev := sess.game.State()
		var err error
		res, err = sess.game.Draw()
		if err != nil {
			return err
		}
		kind, notation := storage.ActionDraw, res.Card.String()
		if res.Recycled {
			kind, notation = storage.ActionRecycle, ""
		}
		s.afterAction(sess, prev, kind, notation, res.Events)
		v = sess.view()
		return nil
	})
	return v, res, err
}

// Undo steps back up to count actions and reports how many it undid
func (s *Service) Undo(gameID string, count int) (View, int, error) {
	return s.step(gameID, count, storage.ActionUndo, (*game.Game).UndoMoves)
}

// Redo replays up to count undone actions
func (s *Service) Redo(gameID string, count int) (View, int, error) {
	return s.step(gameID, count, storage.ActionRedo, (*game.Game).RedoMoves)
}

func (s *Service) step(gameID string, count int, kind string, fn func(*game.Game, int) (int, error)) (View, int, error) {
	var v View
	var n int
	err := s.with(gameID, func(sess *session) error {
		prev := sess.game.State()
		var err error
		n, err = fn(sess.game, count)
		if err != nil {
			return err
		}
		s.afterAction(sess, prev, kind, fmt.Sprintf("%d", n), nil)
		v = sess.view()
		return nil
	})
	return v, n, err
}

// Hint spends one of the game's hints
func (s *Service) Hint(gameID string) (engine.Move, View, error) {
	var m engine.Move
	var v View
	err := s.with(gameID, func(sess *session) error {
		var err error
		m, err = sess.game.Hint()
		v = sess.view()
		return err
	})
	return m, v, err
}

// History returns the game's undoable entries, oldest first
func (s *Service) History(gameID string) ([]game.Entry, error) {
	var out []game.Entry
	err := s.with(gameID, func(sess *session) error {
		out = sess.game.History()
		return nil
	})
	return out, err
}

// Targets lists every location the card or run at from may move to
func (s *Service) Targets(gameID string, from board.Location, count int) ([]board.Location, error) {
	var out []board.Location
	err := s.with(gameID, func(sess *session) error {
		b := sess.game.Board()
		for _, to := range engine.Destinations(b) {
			if to != from && engine.IsValidTarget(b, from, count, to) {
				out = append(out, to)
			}
		}
		return nil
	})
	return out, err
}

// AutoComplete plays a trivially winnable game out. Each move is recorded
// and published as its own version so watchers can follow along.
func (s *Service) AutoComplete(ctx context.Context, gameID string) ([]engine.Move, View, error) {
	var moves []engine.Move
	var v View
	err := s.with(gameID, func(sess *session) error {
		prev := sess.game.State()
		var err error
		moves, err = sess.game.AutoComplete(ctx, func(res engine.Result) error {
			s.afterAction(sess, prev, storage.ActionAuto, res.Record.Move.String(), res.Events)
			prev = sess.game.State()
			return nil
		})
		v = sess.view()
		return err
	})
	return moves, v, err
}

// Wait returns a channel closed once the game passes version
func (s *Service) Wait(ctx context.Context, gameID string, version int) (<-chan struct{}, error) {
	var ch <-chan struct{}
	err := s.with(gameID, func(sess *session) error {
		if sess.version > version {
			done := make(chan struct{})
			close(done)
			ch = done
			return nil
		}
		ch = s.waiter.Register(ctx, gameID, version)
		return nil
	})
	return ch, err
}

// afterAction publishes a change: bump the version, log its events,
// persist it and wake watchers. Called with the session locked.
func (s *Service) afterAction(sess *session, prev core.State, kind, notation string, events []engine.Event) {
	sess.version++
	sess.last = &Action{Kind: kind, Notation: notation, Events: events}
	g := sess.game

	for _, e := range events {
		level := slog.LevelInfo
		if e.Kind == engine.EventCardDrawn {
			level = slog.LevelDebug
		}
		s.log.Log(context.Background(), level, "domain event",
			"game", sess.id, "event", e.Kind.String(), "detail", e.String())
	}

	if s.store != nil {
		b := g.Board()
		err := s.store.RecordAction(storage.ActionRecord{
			GameID:        sess.id,
			Seq:           sess.version,
			ActionType:    kind,
			Notation:      notation,
			Fingerprint:   b.Fingerprint(),
			StockCycles:   b.StockCycles,
			StalemateTier: g.StalemateTier().String(),
			ActionTimeUTC: time.Now().UTC(),
		})
		if err != nil {
			s.log.Warn("action not recorded", "game", sess.id, "err", err)
		}
	}

	if state := g.State(); state != prev {
		s.log.Info("game state changed", "game", sess.id, "from", prev.String(), "to", state.String())
		s.recordOutcome(sess)
	}
	if tier := g.StalemateTier(); tier != assist.TierNone {
		s.log.Debug("stalemate tier", "game", sess.id, "tier", tier.String())
	}

	s.waiter.Notify(sess.id, sess.version)
}

func (s *Service) recordOutcome(sess *session) {
	if s.store == nil {
		return
	}
	g := sess.game
	if err := s.store.RecordOutcome(sess.id, g.State().String(), g.Tracker().Moves, g.Board().StockCycles, g.State().IsOver()); err != nil {
		s.log.Warn("outcome not recorded", "game", sess.id, "err", err)
	}
}

// ValidateDeal runs the invariant validator over an uploaded deal
func (s *Service) ValidateDeal(d *deal.Deal) validation.Report {
	return validation.ValidateDeal(d)
}
