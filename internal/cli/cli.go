// FILE: internal/cli/cli.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"meridian/internal/assist"
	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/core"
	"meridian/internal/engine"
	"meridian/internal/game"

	"golang.org/x/term"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdLoad
	CmdMove
	CmdDraw
	CmdUndo
	CmdRedo
	CmdHint
	CmdTargets
	CmdAuto
	CmdColor
	CmdVerbose
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// ParseCommand maps one input line to a command. Anything unrecognized is
// taken as a move or a location to tap.
func ParseCommand(input string) *Command {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "load":
		return &Command{Type: CmdLoad, Args: args, Raw: input}
	case "d", "draw":
		return &Command{Type: CmdDraw}
	case "u", "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "r", "redo":
		return &Command{Type: CmdRedo, Args: args}
	case "hint":
		return &Command{Type: CmdHint}
	case "targets":
		return &Command{Type: CmdTargets, Args: args}
	case "auto":
		return &Command{Type: CmdAuto}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit", "q":
		return &Command{Type: CmdQuit}
	default:
		return &Command{Type: CmdMove, Args: parts, Raw: input}
	}
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeColor ColorTheme = "on"
)

type themeColors struct {
	red    string
	black  string
	hidden string
	dim    string
	reset  string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeColor: {
		red:    "\033[91m",
		black:  "\033[97m",
		hidden: "\033[48;5;24m",
		dim:    "\033[90m",
		reset:  "\033[0m",
	},
}

type CLI struct {
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

// New renders to output, in color when output is a terminal
func New(output io.Writer) *CLI {
	theme := ThemeOff
	if f, ok := output.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		theme = ThemeColor
	}
	return &CLI{output: output, theme: theme}
}

func (c *CLI) SetTheme(name string) error {
	theme := ColorTheme(name)
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: on, off)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

func (c *CLI) cell(cd card.Card, width int) string {
	t := themes[c.theme]
	text := fmt.Sprintf("%-*s", width, cd.String())
	if cd.IsZero() {
		return t.dim + fmt.Sprintf("%-*s", width, "--") + t.reset
	}
	if cd.Color() == card.Red {
		return t.red + text + t.reset
	}
	return t.black + text + t.reset
}

func (c *CLI) DisplayBoard(b *board.Board) {
	t := themes[c.theme]
	var sb strings.Builder

	waste, _ := b.WasteTop()
	sb.WriteString(fmt.Sprintf("\nStock: %-3d Waste: %s Pockets:", len(b.Stock), c.cell(waste, 4)))
	for j := 0; j < b.PocketCount; j++ {
		p, _ := b.Pocket(j)
		sb.WriteString(fmt.Sprintf(" p%d[%s]", j+1, c.cell(p, 3)))
	}
	if b.StockCycles > 0 {
		sb.WriteString(fmt.Sprintf("  cycles: %d", b.StockCycles))
	}
	sb.WriteString("\n")

	for _, g := range board.Groups {
		sb.WriteString(fmt.Sprintf("%-5s", g.String()))
		for _, s := range card.Suits {
			top, _ := b.Foundations.Top(g, s)
			sb.WriteString(fmt.Sprintf(" %c:%s", s, c.cell(top, 4)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	height := 0
	for i, col := range b.Tableau {
		sb.WriteString(fmt.Sprintf(" t%d %-2s", i, typeMark(col.Type())))
		height = max(height, col.Len())
	}
	sb.WriteString("\n")

	for r := 0; r < height; r++ {
		for _, col := range b.Tableau {
			switch {
			case r >= col.Len():
				sb.WriteString("      ")
			case r < col.FaceDown:
				sb.WriteString(" " + t.hidden + "##" + t.reset + "   ")
			default:
				sb.WriteString(" " + c.cell(col.Cards[r], 4) + " ")
			}
		}
		sb.WriteString("\n")
	}

	c.ShowMessage(sb.String())
}

func typeMark(t board.ColumnType) string {
	switch t {
	case board.ColumnAce:
		return "A"
	case board.ColumnKing:
		return "K"
	case board.ColumnTraditional:
		return "*"
	default:
		return ""
	}
}

func (c *CLI) ShowEvents(events []engine.Event) {
	if !c.verbose {
		return
	}
	for _, e := range events {
		c.ShowMessage("  " + e.String())
	}
}

func (c *CLI) ShowStatus(tier assist.Tier, trivially bool) {
	switch tier {
	case assist.TierConcern:
		c.ShowMessage("Progress has slowed. Try 'hint'.")
	case assist.TierStuck:
		c.ShowMessage("No progress for a while. This deal may be stuck.")
	}
	if trivially {
		c.ShowMessage("Everything is face-up and reachable. Type 'auto' to finish.")
	}
}

func (c *CLI) ShowHistory(entries []game.Entry) {
	if len(entries) == 0 {
		c.ShowMessage("No actions yet.")
		return
	}
	for i, e := range entries {
		c.ShowMessage(fmt.Sprintf("%3d. %s", i+1, e.String()))
	}
}

func (c *CLI) ShowGameOver(state core.State) {
	switch state {
	case core.StateWon:
		c.ShowMessage("\nAll 52 cards are home. You won!")
	case core.StateStalemate:
		c.ShowMessage("\nNo legal action remains. Undo or start a new game.")
	default:
		c.ShowMessage(fmt.Sprintf("\nGame over: %s", state))
	}
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new [mode] [seed]    - Deal a new game (classic|classic_double|hidden|hidden_double)
  load <file|dealId>   - Start from a deal file or a pooled deal
  <move>               - Move cards, e.g. t3>up:h  t2*3>t5  waste>p1
  <location> [count]   - Send a card or run to its best destination, e.g. t4
  d, draw              - Draw from the stock, recycling the waste when empty
  u, undo [count]      - Undo last action(s), default 1
  r, redo [count]      - Redo undone action(s), default 1
  hint                 - Suggest a move (limited per game)
  targets <loc> [n]    - List where the card or run at loc can go
  auto                 - Finish a trivially winnable game
  history              - Show the action history
  color <on|off>       - Toggle colored cards
  verbose              - Toggle event output
  quit/exit            - Exit the program
  help/?               - Show this help message

Locations: t0..t6, waste, p1, p2, up:h, down:s (foundation group:suit)`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Meridian!")
	c.ShowMessage("Build each suit up from 7 and down from 6.")
	c.ShowMessage("Type 'new' to deal, 'help' for commands.")
	c.ShowMessage("")
}
