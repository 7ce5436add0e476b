// FILE: internal/transport/transport.go
package transport

import (
	"meridian/internal/assist"
	"meridian/internal/board"
	"meridian/internal/core"
	"meridian/internal/engine"
	"meridian/internal/game"
)

// View abstracts display/output operations
type View interface {
	DisplayBoard(b *board.Board)
	ShowMessage(msg string)
	ShowError(err error)
	ShowEvents(events []engine.Event)
	ShowStatus(tier assist.Tier, triviallyWinnable bool)
	ShowHistory(entries []game.Entry)
	ShowGameOver(state core.State)
	ShowHelp()
	SetTheme(name string) error
	ToggleVerbose() bool
}

// LineReader supplies input lines; io.EOF ends the session
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}
