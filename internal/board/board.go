// FILE: internal/board/board.go
package board

import (
	"slices"
	"strings"

	"meridian/internal/card"
)

const (
	Columns    = 7
	MaxPockets = 2
	DeckSize   = 52
)

type Mode string

const (
	ModeClassic       Mode = "classic"
	ModeClassicDouble Mode = "classic_double"
	ModeHidden        Mode = "hidden"
	ModeHiddenDouble  Mode = "hidden_double"
)

// Modes lists the four dealt modes in menu order
var Modes = []Mode{ModeClassic, ModeClassicDouble, ModeHidden, ModeHiddenDouble}

// IsDouble reports whether the mode name carries the two-pocket suffix
func (m Mode) IsDouble() bool {
	return strings.HasSuffix(string(m), "_double")
}

// Pockets returns the pocket count implied by the mode name
func (m Mode) Pockets() int {
	if m.IsDouble() {
		return 2
	}
	return 1
}

// AllUp reports whether the mode deals every tableau card face-up
func (m Mode) AllUp() bool {
	return !strings.HasPrefix(string(m), "hidden")
}

type ColumnType int

const (
	ColumnEmpty ColumnType = iota
	ColumnAce
	ColumnKing
	ColumnTraditional
)

func (t ColumnType) String() string {
	switch t {
	case ColumnAce:
		return "ace"
	case ColumnKing:
		return "king"
	case ColumnTraditional:
		return "traditional"
	default:
		return "empty"
	}
}

// TypeOf derives the column discipline from its bottom card
func TypeOf(bottom card.Card) ColumnType {
	switch {
	case bottom.IsZero():
		return ColumnEmpty
	case bottom.Rank == card.Ace:
		return ColumnAce
	case bottom.Rank == card.King:
		return ColumnKing
	default:
		return ColumnTraditional
	}
}

// Column is a tableau column, bottom card first. The lowest FaceDown cards
// are hidden.
type Column struct {
	Cards    []card.Card
	FaceDown int
}

// Type is always derived, never stored
func (c Column) Type() ColumnType {
	if len(c.Cards) == 0 {
		return ColumnEmpty
	}
	return TypeOf(c.Cards[0])
}

func (c Column) Len() int {
	return len(c.Cards)
}

func (c Column) Top() (card.Card, bool) {
	if len(c.Cards) == 0 {
		return card.Card{}, false
	}
	return c.Cards[len(c.Cards)-1], true
}

func (c Column) FaceUpCount() int {
	n := len(c.Cards) - c.FaceDown
	if n < 0 {
		return 0
	}
	return n
}

// FaceUp returns the visible run, bottom first
func (c Column) FaceUp() []card.Card {
	if c.FaceDown >= len(c.Cards) {
		return nil
	}
	return c.Cards[c.FaceDown:]
}

func (c Column) clone() Column {
	return Column{Cards: slices.Clone(c.Cards), FaceDown: c.FaceDown}
}

type Group int

const (
	Up Group = iota
	Down
)

// Groups lists foundation groups in deal-file order
var Groups = [2]Group{Up, Down}

func (g Group) String() string {
	if g == Down {
		return "down"
	}
	return "up"
}

// Anchor is the rank that must open an empty pile
func (g Group) Anchor() card.Rank {
	if g == Down {
		return 6
	}
	return 7
}

// Step is the rank delta between consecutive pile cards
func (g Group) Step() card.Rank {
	if g == Down {
		return -1
	}
	return 1
}

// Last is the rank that completes the pile
func (g Group) Last() card.Rank {
	if g == Down {
		return card.Ace
	}
	return card.King
}

// Size is the number of cards a complete pile holds
func (g Group) Size() int {
	if g == Down {
		return 6
	}
	return 7
}

// GroupFor returns the only foundation group a rank can ever land on
func GroupFor(r card.Rank) Group {
	if r >= 7 {
		return Up
	}
	return Down
}

func ParseGroup(s string) (Group, bool) {
	switch s {
	case "up", "u":
		return Up, true
	case "down", "d":
		return Down, true
	}
	return 0, false
}

// Foundations holds the eight piles, indexed by group then suit index
type Foundations [2][4][]card.Card

func (f *Foundations) Pile(g Group, s card.Suit) []card.Card {
	i := s.Index()
	if i < 0 {
		return nil
	}
	return f[g][i]
}

func (f *Foundations) Top(g Group, s card.Suit) (card.Card, bool) {
	pile := f.Pile(g, s)
	if len(pile) == 0 {
		return card.Card{}, false
	}
	return pile[len(pile)-1], true
}

func (f *Foundations) Count() int {
	n := 0
	for g := range f {
		for s := range f[g] {
			n += len(f[g][s])
		}
	}
	return n
}

// Board is a complete game position. A Board reached through the engine is
// never mutated after it is published; every move works on a Clone.
type Board struct {
	Mode        Mode
	Variant     string
	AllUp       bool
	PocketCount int

	Tableau     [Columns]Column
	Foundations Foundations
	Pockets     [MaxPockets]card.Card

	// Stock top is index 0, waste top is the last element
	Stock []card.Card
	Waste []card.Card

	StockCycles int
}

// New returns an empty board for the mode
func New(mode Mode) *Board {
	return &Board{
		Mode:        mode,
		Variant:     "normal",
		AllUp:       mode.AllUp(),
		PocketCount: mode.Pockets(),
	}
}

func (b *Board) Clone() *Board {
	nb := *b
	for i := range b.Tableau {
		nb.Tableau[i] = b.Tableau[i].clone()
	}
	for g := range b.Foundations {
		for s := range b.Foundations[g] {
			nb.Foundations[g][s] = slices.Clone(b.Foundations[g][s])
		}
	}
	nb.Stock = slices.Clone(b.Stock)
	nb.Waste = slices.Clone(b.Waste)
	return &nb
}

func (b *Board) WasteTop() (card.Card, bool) {
	if len(b.Waste) == 0 {
		return card.Card{}, false
	}
	return b.Waste[len(b.Waste)-1], true
}

// Pocket returns the card held in slot j, if any
func (b *Board) Pocket(j int) (card.Card, bool) {
	if j < 0 || j >= MaxPockets || b.Pockets[j].IsZero() {
		return card.Card{}, false
	}
	return b.Pockets[j], true
}

func (b *Board) PocketsEmpty() bool {
	for _, p := range b.Pockets {
		if !p.IsZero() {
			return false
		}
	}
	return true
}

func (b *Board) FaceDownTotal() int {
	n := 0
	for _, col := range b.Tableau {
		n += col.FaceDown
	}
	return n
}

func (b *Board) TableauCount() int {
	n := 0
	for _, col := range b.Tableau {
		n += len(col.Cards)
	}
	return n
}

func (b *Board) FoundationCount() int {
	return b.Foundations.Count()
}

func (b *Board) IsWon() bool {
	return b.Foundations.Count() == DeckSize
}

// Cards lists every card on the board in zone order: tableau, foundations,
// pockets, stock, waste
func (b *Board) Cards() []card.Card {
	cards := make([]card.Card, 0, DeckSize)
	for _, col := range b.Tableau {
		cards = append(cards, col.Cards...)
	}
	for g := range b.Foundations {
		for s := range b.Foundations[g] {
			cards = append(cards, b.Foundations[g][s]...)
		}
	}
	for _, p := range b.Pockets {
		if !p.IsZero() {
			cards = append(cards, p)
		}
	}
	cards = append(cards, b.Stock...)
	cards = append(cards, b.Waste...)
	return cards
}

// Fingerprint is a compact key identifying the full position, used for
// search dedupe and persisted with every action
func (b *Board) Fingerprint() string {
	var sb strings.Builder
	for i, col := range b.Tableau {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteByte(byte('0' + col.FaceDown))
		sb.WriteByte(':')
		writeCards(&sb, col.Cards)
	}
	sb.WriteString("/")
	for g := range b.Foundations {
		for s := range b.Foundations[g] {
			sb.WriteByte(byte('0' + len(b.Foundations[g][s])))
		}
	}
	sb.WriteString("/")
	for j, p := range b.Pockets {
		if j > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.String())
	}
	sb.WriteString("/")
	writeCards(&sb, b.Stock)
	sb.WriteString("/")
	writeCards(&sb, b.Waste)
	return sb.String()
}

func writeCards(sb *strings.Builder, cards []card.Card) {
	for i, c := range cards {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.String())
	}
}
