// FILE: internal/transport/cli/handler_test.go
package cli

import (
	"bytes"
	"io"
	"testing"

	"meridian/internal/cli"
	"meridian/internal/core"
	"meridian/internal/game"
	"meridian/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptReader struct {
	lines   []string
	prompts []string
}

func (r *scriptReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) SetPrompt(prompt string) {
	r.prompts = append(r.prompts, prompt)
}

func newHandler(t *testing.T) (*CLIHandler, *service.Service, *bytes.Buffer) {
	t.Helper()
	svc := service.New(nil, service.Options{Game: game.DefaultOptions()}, nil)
	t.Cleanup(func() { svc.Close() })
	out := &bytes.Buffer{}
	return New(svc, cli.New(out), core.PlayerConfig{Name: "tester"}), svc, out
}

func TestRun_Session(t *testing.T) {
	h, svc, out := newHandler(t)
	in := &scriptReader{lines: []string{
		"draw",
		"new hidden 7",
		"d",
		"u",
		"r 1",
		"history",
		"targets waste",
		"nonsense",
		"verbose",
		"color off",
		"quit",
		"d",
	}}

	h.Run(in)

	text := out.String()
	assert.Contains(t, text, "No active game")
	assert.Contains(t, text, "Dealt hidden_normal_easy_generated (hidden).")
	assert.Contains(t, text, "1 action(s) undone")
	assert.Contains(t, text, "1 action(s) redone")
	assert.Contains(t, text, "  1. draw")
	assert.Contains(t, text, `unknown command or move "nonsense"`)
	assert.Contains(t, text, "Verbose mode: true")
	assert.Contains(t, text, "Color: off")

	// quit stops reading and abandons the game
	assert.Equal(t, []string{"d"}, in.lines)
	assert.Equal(t, 0, svc.GameCount())
	assert.Equal(t, "> ", in.prompts[0])
	assert.Contains(t, in.prompts[2], "[hidden")
}

func TestProcessCommand_Errors(t *testing.T) {
	h, _, out := newHandler(t)

	assert.True(t, h.ProcessCommand(cli.ParseCommand("new spider")))
	assert.Contains(t, out.String(), "could not start the game")
	assert.Empty(t, h.GameID())

	assert.True(t, h.ProcessCommand(cli.ParseCommand("load missing-deal")))
	assert.Contains(t, out.String(), "deal not found")

	require.True(t, h.ProcessCommand(cli.ParseCommand("new classic 3")))
	require.NotEmpty(t, h.GameID())

	out.Reset()
	h.ProcessCommand(cli.ParseCommand("waste>stock"))
	assert.Contains(t, out.String(), "Error:")

	out.Reset()
	h.ProcessCommand(cli.ParseCommand("undo 0"))
	assert.Contains(t, out.String(), "Usage: undo|redo [count]")

	out.Reset()
	h.ProcessCommand(cli.ParseCommand("redo"))
	assert.Contains(t, out.String(), game.ErrNoRedo.Error())

	out.Reset()
	h.ProcessCommand(cli.ParseCommand("auto"))
	assert.Contains(t, out.String(), "Error:")

	assert.False(t, h.ProcessCommand(cli.ParseCommand("exit")))
}
