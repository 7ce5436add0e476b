// FILE: internal/board/board_test.go
package board

import (
	"testing"

	"meridian/internal/card"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	assert.Equal(t, 1, ModeClassic.Pockets())
	assert.Equal(t, 2, ModeClassicDouble.Pockets())
	assert.Equal(t, 2, ModeHiddenDouble.Pockets())
	assert.True(t, ModeClassic.AllUp())
	assert.False(t, ModeHidden.AllUp())
}

func TestColumnType_DerivedFromBottomCard(t *testing.T) {
	assert.Equal(t, ColumnEmpty, Column{}.Type())
	assert.Equal(t, ColumnAce, Column{Cards: card.MustParseAll("Ah", "2s")}.Type())
	assert.Equal(t, ColumnKing, Column{Cards: card.MustParseAll("Kd")}.Type())
	assert.Equal(t, ColumnTraditional, Column{Cards: card.MustParseAll("9c", "8h")}.Type())
}

func TestColumn_FaceUp(t *testing.T) {
	col := Column{Cards: card.MustParseAll("3h", "Qs", "9d"), FaceDown: 2}
	assert.Equal(t, card.MustParseAll("9d"), col.FaceUp())
	assert.Equal(t, 1, col.FaceUpCount())

	top, ok := col.Top()
	require.True(t, ok)
	assert.Equal(t, card.MustParse("9d"), top)
}

func TestGroup(t *testing.T) {
	assert.Equal(t, card.Rank(7), Up.Anchor())
	assert.Equal(t, card.Rank(6), Down.Anchor())
	assert.Equal(t, card.King, Up.Last())
	assert.Equal(t, card.Ace, Down.Last())
	assert.Equal(t, Up, GroupFor(7))
	assert.Equal(t, Down, GroupFor(6))
	assert.Equal(t, 13, Up.Size()+Down.Size())
}

func TestClone_IsDeep(t *testing.T) {
	b := New(ModeClassic)
	b.Tableau[0].Cards = card.MustParseAll("Ks", "Qh")
	b.Foundations[Up][0] = card.MustParseAll("7h")
	b.Stock = card.MustParseAll("2c")

	c := b.Clone()
	c.Tableau[0].Cards[1] = card.MustParse("Qd")
	c.Foundations[Up][0] = append(c.Foundations[Up][0], card.MustParse("8h"))
	c.Stock[0] = card.MustParse("3c")

	assert.Equal(t, card.MustParse("Qh"), b.Tableau[0].Cards[1])
	assert.Len(t, b.Foundations[Up][0], 1)
	assert.Equal(t, card.MustParse("2c"), b.Stock[0])
}

func TestLocation_ParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"t0", Tableau(0)},
		{"t6", Tableau(6)},
		{"up:h", Foundation(Up, card.Hearts)},
		{"down:s", Foundation(Down, card.Spades)},
		{"p1", Pocket(0)},
		{"p2", Pocket(1)},
		{"waste", Waste()},
		{"stock", Stock()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	for _, bad := range []string{"t7", "p0", "p3", "up:x", "side:h", "q"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestFingerprint_DistinguishesFaceDown(t *testing.T) {
	a := New(ModeHidden)
	a.Tableau[1] = Column{Cards: card.MustParseAll("3h", "Qs"), FaceDown: 1}
	b := a.Clone()
	b.Tableau[1].FaceDown = 0

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), a.Clone().Fingerprint())
}

func TestToASCII_HidesFaceDownCards(t *testing.T) {
	b := New(ModeHidden)
	b.Tableau[1] = Column{Cards: card.MustParseAll("3h", "Qs"), FaceDown: 1}
	b.Waste = card.MustParseAll("5d")

	out := b.ToASCII()
	assert.Contains(t, out, "##")
	assert.Contains(t, out, "Qs")
	assert.NotContains(t, out, "3h")
	assert.Contains(t, out, "Waste: 5d")
}
