// FILE: internal/service/service.go
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"meridian/internal/game"
	"meridian/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrDealNotFound  = errors.New("deal not found")
	ErrInvalidDeal   = errors.New("deal failed validation")
	ErrResourceLimit = errors.New("too many active games")
)

type Options struct {
	Game     game.Options
	MaxGames int
}

// session serializes actions on one game; the service map lock is only
// held to find it
type session struct {
	mu      sync.Mutex
	id      string
	game    *game.Game
	version int
	last    *Action
}

// Service is the multi-game state manager with optional persistence
type Service struct {
	games  map[string]*session
	mu     sync.RWMutex
	store  *storage.Store // nil if persistence disabled
	deals  *DealPool
	waiter *WaitRegistry
	opts   Options
	log    *slog.Logger
}

// New creates a service. store may be nil; logger defaults to slog's.
func New(store *storage.Store, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		games:  make(map[string]*session),
		store:  store,
		deals:  NewDealPool(),
		waiter: NewWaitRegistry(),
		opts:   opts,
		log:    logger,
	}
}

// Deals exposes the deal pool games can be started from
func (s *Service) Deals() *DealPool {
	return s.deals
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

func (s *Service) add(sess *session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[sess.id]; exists {
		return fmt.Errorf("game %s already exists", sess.id)
	}
	if s.opts.MaxGames > 0 && len(s.games) >= s.opts.MaxGames {
		return ErrResourceLimit
	}
	s.games[sess.id] = sess
	return nil
}

func (s *Service) lookup(gameID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// with runs fn holding the game's lock
func (s *Service) with(gameID string, fn func(*session) error) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// GetGame returns a snapshot of the game
func (s *Service) GetGame(gameID string) (View, error) {
	var v View
	err := s.with(gameID, func(sess *session) error {
		v = sess.view()
		return nil
	})
	return v, err
}

// GameCount reports the number of live games
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// DeleteGame abandons a game and removes it from memory
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	sess, ok := s.games[gameID]
	if ok {
		delete(s.games, gameID)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.game.State().IsOver() {
		sess.game.Abandon()
		s.recordOutcome(sess)
	}
	s.waiter.RemoveGame(gameID)
	s.log.Info("game removed", "game", gameID, "state", sess.game.State().String())
	return nil
}

// StorageHealth returns the storage component status
func (s *Service) StorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Close releases waiters and storage
func (s *Service) Close() error {
	s.mu.Lock()
	s.games = make(map[string]*session)
	s.mu.Unlock()

	if err := s.waiter.Shutdown(2 * time.Second); err != nil {
		s.log.Warn("wait registry shutdown", "err", err)
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// register wraps a new game in a session, stores it and records it
func (s *Service) register(g *game.Game) (View, error) {
	sess := &session{id: s.GenerateGameID(), game: g}
	// held until the game row is queued so no action can be recorded first
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.add(sess); err != nil {
		return View{}, err
	}

	b := g.Board()
	s.log.Info("game created", "game", sess.id, "deal", g.DealID(), "mode", string(b.Mode))
	if s.store != nil {
		rec := storage.GameRecord{
			GameID:             sess.id,
			DealID:             g.DealID(),
			Mode:               string(b.Mode),
			InitialFingerprint: b.Fingerprint(),
			StartTimeUTC:       time.Now().UTC(),
		}
		if p := g.Player(); p != nil {
			rec.PlayerID = p.ID
			rec.PlayerName = p.Name
		}
		if err := s.store.RecordNewGame(rec); err != nil {
			s.log.Warn("game not recorded", "game", sess.id, "err", err)
		}
	}
	return sess.view(), nil
}
