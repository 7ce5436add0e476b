// FILE: internal/storage/storage_test.go
package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meridian.db")
	s, err := NewStore(path, true)
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	return s, path
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Sync(ctx))
}

func TestStore_GameAndActions(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordNewGame(GameRecord{
		GameID:             "g1",
		DealID:             "hidden_normal_easy_generated",
		Mode:               "hidden",
		PlayerID:           "p1",
		PlayerName:         "ana",
		InitialFingerprint: "fp0",
		StartTimeUTC:       start,
	}))
	for i, typ := range []string{ActionDraw, ActionMove, ActionUndo} {
		require.NoError(t, s.RecordAction(ActionRecord{
			GameID:        "g1",
			Seq:           i + 1,
			ActionType:    typ,
			Notation:      "t0>t1",
			Fingerprint:   "fp",
			StalemateTier: "none",
			ActionTimeUTC: start.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.RecordOutcome("g1", "won", 2, 1, true))
	flush(t, s)

	games, err := s.QueryGames("g1", "")
	require.NoError(t, err)
	require.Len(t, games, 1)
	g := games[0]
	assert.Equal(t, "hidden", g.Mode)
	assert.Equal(t, "won", g.Outcome)
	assert.Equal(t, 2, g.Moves)
	assert.Equal(t, 1, g.StockCycles)
	assert.True(t, g.EndTimeUTC.Valid)
	assert.True(t, start.Equal(g.StartTimeUTC))

	byPlayer, err := s.QueryGames("*", "p2")
	require.NoError(t, err)
	assert.Empty(t, byPlayer)

	actions, err := s.QueryActions("g1")
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, ActionDraw, actions[0].ActionType)
	assert.Equal(t, ActionUndo, actions[2].ActionType)
	assert.True(t, s.IsHealthy())
}

func TestStore_Certifications(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	run := NewRunID()
	require.NoError(t, s.RecordCertification(CertificationRecord{
		RunID: run, DealID: "a", Source: "deals/a.json", Mode: "classic", Valid: true,
		Winnable: sql.NullBool{Bool: true, Valid: true}, SolutionMoves: sql.NullInt64{Int64: 42, Valid: true},
		Score: sql.NullFloat64{Float64: 31.5, Valid: true}, Tier: "easy", CheckedUTC: time.Now().UTC(),
	}))
	require.NoError(t, s.RecordCertification(CertificationRecord{
		RunID: run, DealID: "b", Source: "deals/b.json", Mode: "hidden", Errors: 2, CheckedUTC: time.Now().UTC(),
	}))
	flush(t, s)

	all, err := s.QueryCertifications(run, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	b, err := s.QueryCertifications("*", "b")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.False(t, b[0].Valid)
	assert.Equal(t, 2, b[0].Errors)
	assert.False(t, b[0].Winnable.Valid)

	a, err := s.QueryCertifications(run, "a")
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.True(t, a[0].Valid)
	assert.EqualValues(t, 42, a[0].SolutionMoves.Int64)
}

func TestStore_DegradesOnFailedWrite(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	// the action references a game that does not exist
	require.NoError(t, s.RecordAction(ActionRecord{GameID: "ghost", Seq: 1, ActionType: ActionDraw, Fingerprint: "x"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.ErrorIs(t, s.Sync(ctx), ErrDegraded)
	assert.False(t, s.IsHealthy())

	// dropped, not failed
	assert.NoError(t, s.RecordNewGame(GameRecord{GameID: "g2", Mode: "classic", InitialFingerprint: "x"}))
}

func TestStore_RejectsWritesAfterClose(t *testing.T) {
	s, _ := openStore(t)
	require.NoError(t, s.Close())

	err := s.RecordCertification(CertificationRecord{RunID: NewRunID(), DealID: "late", CheckedUTC: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.RecordAction(ActionRecord{GameID: "g1", Seq: 1}), ErrClosed)
}

func TestStore_CloseDrainsQueue(t *testing.T) {
	s, path := openStore(t)
	require.NoError(t, s.RecordNewGame(GameRecord{GameID: "g1", Mode: "classic", InitialFingerprint: "x", StartTimeUTC: time.Now().UTC()}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(path, false)
	require.NoError(t, err)
	defer reopened.Close()
	games, err := reopened.QueryGames("", "")
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestStore_DeleteDB(t *testing.T) {
	s, path := openStore(t)
	require.NoError(t, s.DeleteDB())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
