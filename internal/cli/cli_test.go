// FILE: internal/cli/cli_test.go
package cli

import (
	"bytes"
	"testing"

	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  CommandType
		args  []string
	}{
		{"", CmdNone, nil},
		{"  new hidden 42 ", CmdNew, []string{"hidden", "42"}},
		{"load deals/a.json", CmdLoad, []string{"deals/a.json"}},
		{"D", CmdDraw, nil},
		{"undo 3", CmdUndo, []string{"3"}},
		{"r", CmdRedo, []string{}},
		{"hint", CmdHint, nil},
		{"targets t3 2", CmdTargets, []string{"t3", "2"}},
		{"auto", CmdAuto, nil},
		{"?", CmdHelp, nil},
		{"exit", CmdQuit, nil},
		{"t2*3>t5", CmdMove, []string{"t2*3>t5"}},
		{"t4 2", CmdMove, []string{"t4", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.want, cmd.Type)
			if tt.args != nil {
				assert.Equal(t, tt.args, cmd.Args)
			}
		})
	}
}

func TestDisplayBoard_Plain(t *testing.T) {
	out := &bytes.Buffer{}
	c := New(out)

	b := board.New(board.ModeHiddenDouble)
	b.Tableau[0] = board.Column{Cards: card.MustParseAll("Kd")}
	b.Tableau[1] = board.Column{Cards: card.MustParseAll("3c", "9h"), FaceDown: 1}
	b.Waste = card.MustParseAll("5s")
	b.Foundations[board.Up][card.Suits[0].Index()] = card.MustParseAll("7h", "8h")

	c.DisplayBoard(b)
	text := out.String()
	assert.Contains(t, text, "Waste: 5s")
	assert.Contains(t, text, "p1[--")
	assert.Contains(t, text, "p2[--")
	assert.Contains(t, text, "h:8h")
	assert.Contains(t, text, "t0 K")
	assert.Contains(t, text, "##")
	assert.Contains(t, text, "9h")
	assert.NotContains(t, text, "3c")
	assert.NotContains(t, text, "\033[")
}

func TestSetTheme(t *testing.T) {
	out := &bytes.Buffer{}
	c := New(out)
	require.NoError(t, c.SetTheme("on"))

	b := board.New(board.ModeClassic)
	b.Waste = card.MustParseAll("Qh")
	c.DisplayBoard(b)
	assert.Contains(t, out.String(), "\033[91mQh")

	assert.Error(t, c.SetTheme("sepia"))
}

func TestShowGameOver(t *testing.T) {
	out := &bytes.Buffer{}
	c := New(out)
	c.ShowGameOver(core.StateWon)
	c.ShowGameOver(core.StateStalemate)
	assert.Contains(t, out.String(), "You won")
	assert.Contains(t, out.String(), "No legal action remains")
}
