// FILE: internal/storage/storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrDegraded is returned by Sync once a write has failed; later writes
// are dropped
var ErrDegraded = errors.New("storage degraded")

var (
	ErrClosed    = errors.New("storage closed")
	ErrQueueFull = errors.New("storage write queue full")
)

const (
	writeQueueSize  = 1000
	shutdownTimeout = 2 * time.Second
)

// writeOp is a queued write, or a barrier when done is set
type writeOp struct {
	fn   func(*sql.Tx) error
	done chan struct{}
}

// Store handles SQLite database operations with async writes
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan writeOp
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	log          *slog.Logger
}

// NewStore opens the database and starts the async writer
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// a single connection keeps in-memory databases shared and serializes
	// sqlite writers
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan writeOp, writeQueueSize),
		ctx:       ctx,
		cancel:    cancel,
		log:       slog.Default().With("component", "storage"),
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// drain what is already queued
			deadline := time.After(shutdownTimeout)
			for {
				select {
				case op := <-s.writeChan:
					s.run(op)
				case <-deadline:
					return
				default:
					return
				}
			}

		case op := <-s.writeChan:
			s.run(op)
		}
	}
}

func (s *Store) run(op writeOp) {
	if op.done != nil {
		close(op.done)
		return
	}
	if s.healthStatus.Load() {
		s.executeWrite(op.fn)
	}
}

func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error("storage degraded: failed to begin transaction", "err", err)
		s.healthStatus.Store(false)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		s.log.Error("storage degraded: write failed", "err", err)
		s.healthStatus.Store(false)
		return
	}

	if err := tx.Commit(); err != nil {
		s.log.Error("storage degraded: failed to commit", "err", err)
		s.healthStatus.Store(false)
	}
}

// enqueue hands fn to the writer. Writes are dropped silently while
// degraded; a closed store or a full queue rejects them.
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("%w: %s not recorded", ErrClosed, what)
	}
	if !s.healthStatus.Load() {
		return nil
	}
	select {
	case s.writeChan <- writeOp{fn: fn}:
		return nil
	default:
		return fmt.Errorf("%w: %s dropped", ErrQueueFull, what)
	}
}

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("game", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO games (
			game_id, deal_id, mode, player_id, player_name,
			initial_fingerprint, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.DealID, record.Mode, record.PlayerID, record.PlayerName,
			record.InitialFingerprint, record.StartTimeUTC,
		)
		return err
	})
}

// RecordAction asynchronously appends one action to a game's log
func (s *Store) RecordAction(record ActionRecord) error {
	return s.enqueue("action", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO actions (
			game_id, seq, action_type, notation, fingerprint,
			stock_cycles, stalemate_tier, action_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.Seq, record.ActionType, record.Notation, record.Fingerprint,
			record.StockCycles, record.StalemateTier, record.ActionTimeUTC,
		)
		return err
	})
}

// RecordOutcome asynchronously updates a game's running totals. A
// finished outcome also stamps the end time.
func (s *Store) RecordOutcome(gameID, outcome string, moves, stockCycles int, finished bool) error {
	return s.enqueue("outcome", func(tx *sql.Tx) error {
		var end any
		if finished {
			end = time.Now().UTC()
		}
		_, err := tx.Exec(`UPDATE games
			SET outcome = ?, moves = ?, stock_cycles = ?, end_time_utc = COALESCE(?, end_time_utc)
			WHERE game_id = ?`,
			outcome, moves, stockCycles, end, gameID,
		)
		return err
	})
}

// NewRunID returns an identifier grouping the certifications of one
// validation run
func NewRunID() string {
	return uuid.New().String()
}

// RecordCertification asynchronously stores one deal's validation result
func (s *Store) RecordCertification(record CertificationRecord) error {
	return s.enqueue("certification", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT OR REPLACE INTO certifications (
			run_id, deal_id, source, mode, valid, errors, warnings,
			winnable, solution_moves, score, tier, checked_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.RunID, record.DealID, record.Source, record.Mode, record.Valid,
			record.Errors, record.Warnings, record.Winnable, record.SolutionMoves,
			record.Score, record.Tier, record.CheckedUTC,
		)
		return err
	})
}

// Sync blocks until every write queued before it has been committed
func (s *Store) Sync(ctx context.Context) error {
	if !s.healthStatus.Load() {
		return ErrDegraded
	}
	done := make(chan struct{})
	select {
	case s.writeChan <- writeOp{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if !s.healthStatus.Load() {
		return ErrDegraded
	}
	return nil
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close stops the writer, draining queued writes, and closes the database
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		s.log.Warn("storage writer shutdown timeout, some writes may be lost")
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}
	return nil
}

// QueryGames retrieves games, optionally filtered by game or player. An
// empty or "*" filter matches everything.
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT
		game_id, deal_id, mode, player_id, player_name, initial_fingerprint,
		outcome, moves, stock_cycles, start_time_utc, end_time_utc
	FROM games WHERE 1=1`

	var args []any
	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}
	if playerID != "" && playerID != "*" {
		query += " AND player_id = ?"
		args = append(args, playerID)
	}
	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.DealID, &g.Mode, &g.PlayerID, &g.PlayerName, &g.InitialFingerprint,
			&g.Outcome, &g.Moves, &g.StockCycles, &g.StartTimeUTC, &g.EndTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// QueryActions returns a game's action log in order
func (s *Store) QueryActions(gameID string) ([]ActionRecord, error) {
	rows, err := s.db.Query(`SELECT
		action_id, game_id, seq, action_type, notation, fingerprint,
		stock_cycles, stalemate_tier, action_time_utc
	FROM actions WHERE game_id = ? ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var actions []ActionRecord
	for rows.Next() {
		var a ActionRecord
		err := rows.Scan(
			&a.ActionID, &a.GameID, &a.Seq, &a.ActionType, &a.Notation, &a.Fingerprint,
			&a.StockCycles, &a.StalemateTier, &a.ActionTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return actions, nil
}

// QueryCertifications retrieves certifications filtered by run and deal;
// empty or "*" filters match everything
func (s *Store) QueryCertifications(runID, dealID string) ([]CertificationRecord, error) {
	query := `SELECT
		run_id, deal_id, source, mode, valid, errors, warnings,
		winnable, solution_moves, score, tier, checked_utc
	FROM certifications WHERE 1=1`

	var args []any
	if runID != "" && runID != "*" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}
	if dealID != "" && dealID != "*" {
		query += " AND deal_id = ?"
		args = append(args, dealID)
	}
	query += " ORDER BY checked_utc DESC, deal_id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var certs []CertificationRecord
	for rows.Next() {
		var c CertificationRecord
		err := rows.Scan(
			&c.RunID, &c.DealID, &c.Source, &c.Mode, &c.Valid, &c.Errors, &c.Warnings,
			&c.Winnable, &c.SolutionMoves, &c.Score, &c.Tier, &c.CheckedUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return certs, nil
}
