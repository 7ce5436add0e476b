// FILE: internal/storage/schema.go
package storage

import (
	"database/sql"
	"time"
)

// Action types stored in the actions table
const (
	ActionMove    = "move"
	ActionDraw    = "draw"
	ActionRecycle = "recycle"
	ActionUndo    = "undo"
	ActionRedo    = "redo"
	ActionAuto    = "auto"
)

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID             string       `db:"game_id"`
	DealID             string       `db:"deal_id"`
	Mode               string       `db:"mode"`
	PlayerID           string       `db:"player_id"`
	PlayerName         string       `db:"player_name"`
	InitialFingerprint string       `db:"initial_fingerprint"`
	Outcome            string       `db:"outcome"`
	Moves              int          `db:"moves"`
	StockCycles        int          `db:"stock_cycles"`
	StartTimeUTC       time.Time    `db:"start_time_utc"`
	EndTimeUTC         sql.NullTime `db:"end_time_utc"`
}

// ActionRecord represents a row in the actions table, one per applied,
// undone or redone action
type ActionRecord struct {
	ActionID      int64     `db:"action_id"`
	GameID        string    `db:"game_id"`
	Seq           int       `db:"seq"`
	ActionType    string    `db:"action_type"`
	Notation      string    `db:"notation"`
	Fingerprint   string    `db:"fingerprint"`
	StockCycles   int       `db:"stock_cycles"`
	StalemateTier string    `db:"stalemate_tier"`
	ActionTimeUTC time.Time `db:"action_time_utc"`
}

// CertificationRecord is one deal checked by a validation run
type CertificationRecord struct {
	RunID         string          `db:"run_id"`
	DealID        string          `db:"deal_id"`
	Source        string          `db:"source"`
	Mode          string          `db:"mode"`
	Valid         bool            `db:"valid"`
	Errors        int             `db:"errors"`
	Warnings      int             `db:"warnings"`
	Winnable      sql.NullBool    `db:"winnable"`
	SolutionMoves sql.NullInt64   `db:"solution_moves"`
	Score         sql.NullFloat64 `db:"score"`
	Tier          string          `db:"tier"`
	CheckedUTC    time.Time       `db:"checked_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL,
	player_id TEXT NOT NULL DEFAULT '',
	player_name TEXT NOT NULL DEFAULT '',
	initial_fingerprint TEXT NOT NULL,
	outcome TEXT NOT NULL DEFAULT 'ongoing',
	moves INTEGER NOT NULL DEFAULT 0,
	stock_cycles INTEGER NOT NULL DEFAULT 0,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	end_time_utc DATETIME
);

CREATE TABLE IF NOT EXISTS actions (
	action_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	action_type TEXT NOT NULL CHECK(action_type IN ('move', 'draw', 'recycle', 'undo', 'redo', 'auto')),
	notation TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL,
	stock_cycles INTEGER NOT NULL DEFAULT 0,
	stalemate_tier TEXT NOT NULL DEFAULT 'none',
	action_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, seq)
);

CREATE TABLE IF NOT EXISTS certifications (
	run_id TEXT NOT NULL,
	deal_id TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL DEFAULT '',
	valid INTEGER NOT NULL,
	errors INTEGER NOT NULL DEFAULT 0,
	warnings INTEGER NOT NULL DEFAULT 0,
	winnable INTEGER,
	solution_moves INTEGER,
	score REAL,
	tier TEXT NOT NULL DEFAULT '',
	checked_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (run_id, deal_id, source)
);

CREATE INDEX IF NOT EXISTS idx_actions_game_id ON actions(game_id);
CREATE INDEX IF NOT EXISTS idx_games_player ON games(player_id);
CREATE INDEX IF NOT EXISTS idx_games_deal ON games(deal_id);
CREATE INDEX IF NOT EXISTS idx_certifications_deal ON certifications(deal_id);
`
