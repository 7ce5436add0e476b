// FILE: internal/deal/deal_test.go
package deal

import (
	"os"
	"path/filepath"
	"testing"

	"meridian/internal/board"
	"meridian/internal/card"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDeal = `{
  "metadata": {"mode": "hidden_double", "variant": "normal"},
  "tableau": {"0": ["Ks"], "1": ["3h", "Qs"], "2": [], "3": [], "4": [], "5": [], "6": []},
  "stock": ["2c", "9d"],
  "pocket1": "Ah",
  "foundations": {"up": {"h": ["7h"]}, "down": {}}
}`

func TestParse_ToleratesMissingOptionalFields(t *testing.T) {
	d, err := Parse([]byte(minimalDeal))
	require.NoError(t, err)

	assert.Equal(t, board.ModeHiddenDouble, d.Mode())
	assert.Equal(t, 2, d.PocketCount())
	assert.False(t, d.AllUp())
	assert.Nil(t, d.DeclaredTypes())

	b, err := d.ToBoard()
	require.NoError(t, err)
	assert.Empty(t, b.Waste)
	assert.Equal(t, card.MustParseAll("2c", "9d"), b.Stock)
	assert.Equal(t, 1, b.Tableau[1].FaceDown)
	assert.Equal(t, 0, b.Tableau[0].FaceDown)
	p, ok := b.Pocket(0)
	require.True(t, ok)
	assert.Equal(t, card.MustParse("Ah"), p)
	_, ok = b.Pocket(1)
	assert.False(t, ok)
	assert.Equal(t, card.MustParseAll("7h"), b.Foundations.Pile(board.Up, card.Hearts))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "  "},
		{"not json", "{"},
		{"missing mode", `{"metadata": {}}`},
		{"bad difficulty", `{"metadata": {"mode": "classic", "difficulty": "brutal"}}`},
		{"too many pockets", `{"metadata": {"mode": "classic", "pockets": 3}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestToBoard_MalformedToken(t *testing.T) {
	d, err := Parse([]byte(`{"metadata": {"mode": "classic"}, "tableau": {"0": ["1x"]}}`))
	require.NoError(t, err)
	_, err = d.ToBoard()
	assert.ErrorIs(t, err, card.ErrInvalidSuit)
}

func TestToBoard_HonorsColumnStateFaceDown(t *testing.T) {
	d, err := Parse([]byte(`{
		"metadata": {"mode": "hidden"},
		"tableau": {"3": ["2h", "5c", "9d", "Jh"]},
		"columnState": {"faceDownCounts": [0, 0, 0, 1]}
	}`))
	require.NoError(t, err)
	b, err := d.ToBoard()
	require.NoError(t, err)
	assert.Equal(t, 1, b.Tableau[3].FaceDown)
}

func TestFromBoard_RoundTrip(t *testing.T) {
	d, err := Generate(GenerateOptions{Mode: board.ModeHidden, Seed: 7})
	require.NoError(t, err)

	b, err := d.ToBoard()
	require.NoError(t, err)
	again := FromBoard(b, d.Metadata)

	b2, err := again.ToBoard()
	require.NoError(t, err)
	assert.Equal(t, b.Fingerprint(), b2.Fingerprint())
}

func TestGenerate_Layout(t *testing.T) {
	for _, mode := range board.Modes {
		t.Run(string(mode), func(t *testing.T) {
			d, err := Generate(GenerateOptions{Mode: mode, Difficulty: DifficultyModerate, Seed: 42})
			require.NoError(t, err)

			assert.Equal(t, string(mode)+"_normal_moderate_generated", d.Metadata.ID)
			b, err := d.ToBoard()
			require.NoError(t, err)

			for i := 0; i < board.Columns; i++ {
				assert.Equal(t, i+1, b.Tableau[i].Len())
				if mode.AllUp() {
					assert.Zero(t, b.Tableau[i].FaceDown)
				} else {
					assert.Equal(t, i, b.Tableau[i].FaceDown)
				}
			}
			assert.Len(t, b.Stock, 23)
			assert.Len(t, b.Waste, 1)
			assert.Len(t, b.Cards(), board.DeckSize)

			if mode.IsDouble() {
				assert.Nil(t, d.Pocket2)
			} else {
				require.NotNil(t, d.Pocket2)
				assert.Equal(t, Unavailable, *d.Pocket2)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(GenerateOptions{Mode: board.ModeClassic, Seed: 99})
	require.NoError(t, err)
	b, err := Generate(GenerateOptions{Mode: board.ModeClassic, Seed: 99})
	require.NoError(t, err)
	c, err := Generate(GenerateOptions{Mode: board.ModeClassic, Seed: 100})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Stock, c.Stock)

	_, err = Generate(GenerateOptions{Mode: "solo"})
	assert.Error(t, err)
	_, err = Generate(GenerateOptions{Mode: board.ModeClassic, Difficulty: "brutal"})
	assert.Error(t, err)
}

func TestSaveLoadAndFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := Generate(GenerateOptions{Mode: board.ModeClassicDouble, Seed: 3, Index: 2})
	require.NoError(t, err)

	path := filepath.Join(dir, FileName(d))
	require.NoError(t, Save(path, d))
	assert.Equal(t, "classic_double_normal_easy_02_generated.json", filepath.Base(path))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d, loaded)

	_, err = Files(t.TempDir())
	assert.ErrorIs(t, err, ErrNoDeals)
}
