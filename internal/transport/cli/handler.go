// FILE: internal/transport/cli/handler.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"meridian/internal/board"
	"meridian/internal/cli"
	"meridian/internal/core"
	"meridian/internal/deal"
	"meridian/internal/engine"
	"meridian/internal/service"
	"meridian/internal/transport"
)

type CLIHandler struct {
	svc    *service.Service
	view   transport.View
	player core.PlayerConfig
	gameID string
}

func New(svc *service.Service, view transport.View, player core.PlayerConfig) *CLIHandler {
	return &CLIHandler{
		svc:    svc,
		view:   view,
		player: player,
	}
}

// GameID is the active game, empty when none
func (h *CLIHandler) GameID() string {
	return h.gameID
}

// Run reads commands until quit or end of input
func (h *CLIHandler) Run(in transport.LineReader) {
	for {
		in.SetPrompt(h.prompt())

		line, err := in.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		if !h.ProcessCommand(cli.ParseCommand(line)) {
			break
		}
	}
	h.endGame()
}

func (h *CLIHandler) prompt() string {
	if h.gameID == "" {
		return "> "
	}
	v, err := h.svc.GetGame(h.gameID)
	if err != nil {
		return "> "
	}
	return fmt.Sprintf("[%s %d moves]> ", v.Mode, v.Moves)
}

// ProcessCommand handles one command and returns false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:

	case cli.CmdHelp:
		h.view.ShowHelp()

	case cli.CmdNew:
		p := service.CreateParams{Player: h.player}
		if len(cmd.Args) > 0 {
			p.Mode = cmd.Args[0]
		}
		if len(cmd.Args) > 1 {
			seed, err := strconv.ParseInt(cmd.Args[1], 10, 64)
			if err != nil {
				h.view.ShowMessage("Usage: new [mode] [seed]")
				return true
			}
			p.Seed = &seed
		}
		h.start(p)

	case cli.CmdLoad:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: load <file|dealId>")
			return true
		}
		p := service.CreateParams{Player: h.player}
		if _, err := os.Stat(cmd.Args[0]); err == nil {
			d, err := deal.Load(cmd.Args[0])
			if err != nil {
				h.view.ShowError(err)
				return true
			}
			p.Deal = d
		} else {
			p.DealID = cmd.Args[0]
		}
		h.start(p)

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <on|off>")
			return true
		}
		if err := h.view.SetTheme(cmd.Args[0]); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color: %s", cmd.Args[0]))
		h.redraw()

	case cli.CmdVerbose:
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", h.view.ToggleVerbose()))

	default:
		if h.gameID == "" {
			h.view.ShowMessage("No active game. Use 'new' or 'load <file>'.")
			return true
		}
		h.gameCommand(cmd)
	}
	return true
}

func (h *CLIHandler) gameCommand(cmd *cli.Command) {
	switch cmd.Type {
	case cli.CmdMove:
		h.move(cmd.Args)

	case cli.CmdDraw:
		v, res, err := h.svc.Draw(h.gameID)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.show(v, res.Events)

	case cli.CmdUndo, cli.CmdRedo:
		count, ok := countArg(cmd.Args, 0)
		if !ok {
			h.view.ShowMessage("Usage: undo|redo [count]")
			return
		}
		step, verb := h.svc.Undo, "undone"
		if cmd.Type == cli.CmdRedo {
			step, verb = h.svc.Redo, "redone"
		}
		v, n, err := step(h.gameID, count)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.view.ShowMessage(fmt.Sprintf("%d action(s) %s", n, verb))
		h.show(v, nil)

	case cli.CmdHint:
		m, v, err := h.svc.Hint(h.gameID)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.view.ShowMessage(fmt.Sprintf("Hint: %s (%d left)", m, v.HintsRemaining))

	case cli.CmdTargets:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: targets <location> [count]")
			return
		}
		from, err := board.ParseLocation(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return
		}
		count, ok := countArg(cmd.Args, 1)
		if !ok {
			h.view.ShowMessage("Usage: targets <location> [count]")
			return
		}
		targets, err := h.svc.Targets(h.gameID, from, count)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		if len(targets) == 0 {
			h.view.ShowMessage("Nowhere to go.")
			return
		}
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.String()
		}
		h.view.ShowMessage("Targets: " + strings.Join(names, " "))

	case cli.CmdAuto:
		moves, v, err := h.svc.AutoComplete(context.Background(), h.gameID)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.view.ShowMessage(fmt.Sprintf("Played %d move(s)", len(moves)))
		h.show(v, nil)

	case cli.CmdHistory:
		entries, err := h.svc.History(h.gameID)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		h.view.ShowHistory(entries)
	}
}

// move plays notation like "t3>up:h", or taps a bare location
func (h *CLIHandler) move(args []string) {
	m, moveErr := engine.ParseMove(args[0])
	if moveErr == nil {
		v, res, err := h.svc.Move(h.gameID, m)
		if err != nil {
			h.view.ShowError(describe(err))
			return
		}
		h.show(v, res.Events)
		return
	}

	from, err := board.ParseLocation(args[0])
	if err != nil {
		h.view.ShowError(fmt.Errorf("unknown command or move %q", args[0]))
		return
	}
	count, ok := countArg(args, 1)
	if !ok {
		h.view.ShowMessage("Usage: <location> [count]")
		return
	}
	v, res, err := h.svc.Tap(h.gameID, from, count)
	if err != nil {
		h.view.ShowError(describe(err))
		return
	}
	h.show(v, res.Events)
}

func describe(err error) error {
	var reason engine.Reason
	if errors.As(err, &reason) {
		return fmt.Errorf("illegal move: %s", reason)
	}
	return err
}

func (h *CLIHandler) start(p service.CreateParams) {
	h.endGame()
	v, err := h.svc.CreateGame(p)
	if err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %w", err))
		return
	}
	h.gameID = v.ID
	h.view.ShowMessage(fmt.Sprintf("Dealt %s (%s).", v.DealID, v.Mode))
	h.show(v, nil)
}

// endGame abandons the active game, if any
func (h *CLIHandler) endGame() {
	if h.gameID == "" {
		return
	}
	if err := h.svc.DeleteGame(h.gameID); err != nil && !errors.Is(err, service.ErrGameNotFound) {
		h.view.ShowError(err)
	}
	h.gameID = ""
}

func (h *CLIHandler) redraw() {
	if h.gameID == "" {
		return
	}
	if v, err := h.svc.GetGame(h.gameID); err == nil {
		h.view.DisplayBoard(v.Board)
	}
}

func (h *CLIHandler) show(v service.View, events []engine.Event) {
	h.view.ShowEvents(events)
	h.view.DisplayBoard(v.Board)
	switch v.State {
	case core.StateWon, core.StateStalemate:
		h.view.ShowGameOver(v.State)
	default:
		h.view.ShowStatus(v.Tier, v.TriviallyWinnable)
	}
}

// countArg reads an optional positive count at args[i], defaulting to 1
func countArg(args []string, i int) (int, bool) {
	if len(args) <= i {
		return 1, true
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
