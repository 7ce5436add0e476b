// FILE: cmd/meridian/cli/cli_test.go
package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"meridian/internal/deal"
	"meridian/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(args, &out)
	return out.String(), err
}

func TestRun_UnknownCommand(t *testing.T) {
	_, err := run(t)
	assert.Error(t, err)

	_, err = run(t, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	out, err := run(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "validate")
}

func TestGenerate_Stdout(t *testing.T) {
	out, err := run(t, "generate", "-mode", "hidden", "-seed", "11")
	require.NoError(t, err)

	d, err := deal.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "hidden", d.Metadata.Mode)

	again, err := run(t, "generate", "-mode", "hidden", "-seed", "11")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerate_Batch(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-mode", "classic", "-count", "3", "-out", dir)
	require.NoError(t, err)

	files, err := deal.Files(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "classic_normal_easy_0")
	}

	_, err = run(t, "generate", "-count", "2")
	assert.Error(t, err)

	_, err = run(t, "generate", "-mode", "spider")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-mode", "classic", "-count", "2", "-out", dir)
	require.NoError(t, err)

	out, err := run(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Valid:   2")
	assert.Contains(t, out, "Success rate: 100.0%")

	// duplicate a stock card in a third deal
	d, err := deal.Generate(deal.GenerateOptions{Mode: "classic", Seed: 99})
	require.NoError(t, err)
	d.Stock[0] = d.Stock[1]
	data, err := json.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zz_broken.json"), data, 0644))

	out, err = run(t, "validate", "-quiet", dir)
	assert.ErrorIs(t, err, ErrInvalidDeals)
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "zz_broken.json")
	assert.Contains(t, out, "Invalid: 1")
	assert.NotContains(t, out, "VALID   ")
}

func TestValidate_RecordsCertifications(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-mode", "classic", "-out", dir)
	require.NoError(t, err)
	db := filepath.Join(t.TempDir(), "certs.db")

	out, err := run(t, "validate", "-db", db, "-solve", "-max-nodes", "200", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Run ID:")

	store, err := storage.NewStore(db, false)
	require.NoError(t, err)
	defer store.Close()
	certs, err := store.QueryCertifications("*", "")
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.True(t, certs[0].Valid)
	assert.Equal(t, "classic", certs[0].Mode)

	out, err = run(t, "db", "certs", "-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 certification(s)")
}

func TestRecord_LogsFailedWrite(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "certs.db"), false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	require.NoError(t, store.Close())

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	record(log, store, storage.CertificationRecord{RunID: storage.NewRunID(), DealID: "late"})

	assert.Contains(t, logs.String(), "failed to record certification")
	assert.Contains(t, logs.String(), "deal=late")

	logs.Reset()
	record(log, nil, storage.CertificationRecord{DealID: "none"})
	assert.Empty(t, logs.String())
}

func TestSolve(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "-mode", "classic", "-out", dir)
	require.NoError(t, err)

	out, err := run(t, "solve", "-max-nodes", "100", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nodes")

	_, err = run(t, "solve")
	assert.Error(t, err)
}

func TestDB_Lifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "games.db")

	out, err := run(t, "db", "init", "-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Database initialized")

	out, err = run(t, "db", "query", "-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No games found")

	_, err = run(t, "db", "actions", "-path", db)
	assert.Error(t, err)

	out, err = run(t, "db", "delete", "-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Database deleted")
	assert.NoFileExists(t, db)

	_, err = run(t, "db", "init")
	assert.Error(t, err)
	_, err = run(t, "db", "vacuum")
	assert.Error(t, err)
}
