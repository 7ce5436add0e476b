// FILE: internal/deal/deal.go
// Package deal reads, writes and converts deal files, the JSON starting
// positions loaded into games and certified by the validator.
package deal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"meridian/internal/board"
	"meridian/internal/card"

	"github.com/go-playground/validator/v10"
)

// Unavailable marks a pocket slot that the mode does not provide
const Unavailable = "N/A"

var validate = validator.New()

var (
	ErrEmptyDeal = errors.New("empty deal document")
	ErrNoDeals   = errors.New("no deal files found")
)

type Metadata struct {
	ID          string `json:"id,omitempty" validate:"omitempty,max=128"`
	Mode        string `json:"mode" validate:"required,max=32"`
	Variant     string `json:"variant,omitempty" validate:"omitempty,max=32"`
	Pockets     int    `json:"pockets,omitempty" validate:"omitempty,min=1,max=2"`
	AllUp       *bool  `json:"allUp,omitempty"`
	Difficulty  string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy moderate hard"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty" validate:"omitempty,max=256"`
	Seed        *int64 `json:"seed,omitempty"`
}

// Foundations maps suit letters to piles, bottom card first
type Foundations struct {
	Up   map[string][]string `json:"up"`
	Down map[string][]string `json:"down"`
}

type ColumnState struct {
	Types          []*string `json:"types,omitempty"`
	FaceUpCounts   []int     `json:"faceUpCounts,omitempty"`
	FaceDownCounts []int     `json:"faceDownCounts,omitempty"`
}

// Deal is the wire shape of a starting position. Tableau keys are column
// indexes "0".."6"; stock index 0 is the next card drawn.
type Deal struct {
	Metadata    Metadata            `json:"metadata"`
	Tableau     map[string][]string `json:"tableau"`
	Stock       []string            `json:"stock"`
	Waste       []string            `json:"waste"`
	Pocket1     *string             `json:"pocket1"`
	Pocket2     *string             `json:"pocket2"`
	Foundations Foundations         `json:"foundations"`
	ColumnTypes []*string           `json:"columnTypes,omitempty"`
	ColumnState *ColumnState        `json:"columnState,omitempty"`
}

// Parse decodes and shape-checks a deal document
func Parse(data []byte) (*Deal, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDeal
	}
	var d Deal
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode deal: %w", err)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("invalid deal metadata: %w", err)
	}
	return &d, nil
}

func Load(path string) (*Deal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deal: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return d, nil
}

// Files expands the given paths into deal files. Directories contribute
// their *.json entries in name order.
func Files(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, ErrNoDeals
	}
	return files, nil
}

// Save writes d as indented JSON
func Save(path string, d *Deal) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create deal directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func (d *Deal) Mode() board.Mode {
	return board.Mode(d.Metadata.Mode)
}

// PocketCount prefers explicit metadata over the mode name
func (d *Deal) PocketCount() int {
	if d.Metadata.Pockets > 0 {
		return d.Metadata.Pockets
	}
	return d.Mode().Pockets()
}

func (d *Deal) AllUp() bool {
	if d.Metadata.AllUp != nil {
		return *d.Metadata.AllUp
	}
	return d.Mode().AllUp()
}

// Column returns the tokens of tableau column i, bottom first
func (d *Deal) Column(i int) []string {
	return d.Tableau[strconv.Itoa(i)]
}

// Pockets returns the raw pocket values, nil for empty slots
func (d *Deal) Pockets() [board.MaxPockets]*string {
	return [board.MaxPockets]*string{d.Pocket1, d.Pocket2}
}

// PocketCard returns the token held in slot j, ignoring empty and
// unavailable slots
func (d *Deal) PocketCard(j int) (string, bool) {
	p := d.Pockets()[j]
	if p == nil || *p == "" || *p == Unavailable {
		return "", false
	}
	return *p, true
}

// Pile returns the foundation tokens for a group and suit
func (d *Deal) Pile(g board.Group, s card.Suit) []string {
	piles := d.Foundations.Up
	if g == board.Down {
		piles = d.Foundations.Down
	}
	return piles[string(rune(s))]
}

// DeclaredTypes returns column type metadata from columnTypes or
// columnState.types, nil when the deal declares none
func (d *Deal) DeclaredTypes() []*string {
	if d.ColumnTypes != nil {
		return d.ColumnTypes
	}
	if d.ColumnState != nil && d.ColumnState.Types != nil {
		return d.ColumnState.Types
	}
	return nil
}

// ExpectedFaceDown is the initial staircase: column i hides i cards, never
// its top card
func ExpectedFaceDown(allUp bool, i, size int) int {
	if allUp || size == 0 {
		return 0
	}
	return min(i, size-1)
}

// FaceDown returns the face-down count the board will carry for column i
func (d *Deal) FaceDown(i int) int {
	size := len(d.Column(i))
	if d.ColumnState != nil && i < len(d.ColumnState.FaceDownCounts) {
		n := d.ColumnState.FaceDownCounts[i]
		return max(0, min(n, size-1))
	}
	return ExpectedFaceDown(d.AllUp(), i, size)
}

// ToBoard builds a live board. Malformed tokens are input errors and stop
// the conversion; consistency is the validator's concern.
func (d *Deal) ToBoard() (*board.Board, error) {
	b := board.New(d.Mode())
	if d.Metadata.Variant != "" {
		b.Variant = d.Metadata.Variant
	}
	b.AllUp = d.AllUp()
	b.PocketCount = d.PocketCount()

	var err error
	for i := 0; i < board.Columns; i++ {
		cards, perr := parseAll(d.Column(i))
		if perr != nil {
			return nil, fmt.Errorf("tableau %d: %w", i, perr)
		}
		b.Tableau[i] = board.Column{Cards: cards, FaceDown: max(0, d.FaceDown(i))}
	}

	for _, g := range board.Groups {
		for _, s := range card.Suits {
			pile, perr := parseAll(d.Pile(g, s))
			if perr != nil {
				return nil, fmt.Errorf("foundation %s:%c: %w", g, s, perr)
			}
			b.Foundations[g][s.Index()] = pile
		}
	}

	for j := 0; j < board.MaxPockets; j++ {
		tok, ok := d.PocketCard(j)
		if !ok {
			continue
		}
		if b.Pockets[j], err = card.Parse(tok); err != nil {
			return nil, fmt.Errorf("pocket%d: %w", j+1, err)
		}
	}

	if b.Stock, err = parseAll(d.Stock); err != nil {
		return nil, fmt.Errorf("stock: %w", err)
	}
	if b.Waste, err = parseAll(d.Waste); err != nil {
		return nil, fmt.Errorf("waste: %w", err)
	}
	return b, nil
}

// FromBoard projects a board back into the deal shape. Column metadata is
// derived from the board itself.
func FromBoard(b *board.Board, meta Metadata) *Deal {
	meta.Mode = string(b.Mode)
	meta.Variant = b.Variant
	meta.Pockets = b.PocketCount
	allUp := b.AllUp
	meta.AllUp = &allUp

	d := &Deal{
		Metadata:    meta,
		Tableau:     make(map[string][]string, board.Columns),
		Stock:       nonNil(card.Strings(b.Stock)),
		Waste:       nonNil(card.Strings(b.Waste)),
		Foundations: Foundations{Up: map[string][]string{}, Down: map[string][]string{}},
		ColumnState: &ColumnState{},
	}

	for i, col := range b.Tableau {
		d.Tableau[strconv.Itoa(i)] = nonNil(card.Strings(col.Cards))
		d.ColumnState.Types = append(d.ColumnState.Types, typeName(col.Type()))
		d.ColumnState.FaceUpCounts = append(d.ColumnState.FaceUpCounts, col.FaceUpCount())
		d.ColumnState.FaceDownCounts = append(d.ColumnState.FaceDownCounts, col.FaceDown)
	}

	for _, s := range card.Suits {
		key := string(rune(s))
		d.Foundations.Up[key] = nonNil(card.Strings(b.Foundations.Pile(board.Up, s)))
		d.Foundations.Down[key] = nonNil(card.Strings(b.Foundations.Pile(board.Down, s)))
	}

	d.Pocket1 = pocketValue(b, 0)
	d.Pocket2 = pocketValue(b, 1)
	return d
}

func pocketValue(b *board.Board, j int) *string {
	var v string
	switch {
	case j >= b.PocketCount:
		v = Unavailable
	case !b.Pockets[j].IsZero():
		v = b.Pockets[j].String()
	default:
		return nil
	}
	return &v
}

// typeName renders a column type the way deal files declare it
func typeName(t board.ColumnType) *string {
	if t == board.ColumnEmpty {
		return nil
	}
	s := t.String()
	return &s
}

func parseAll(tokens []string) ([]card.Card, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	cards := make([]card.Card, 0, len(tokens))
	for _, tok := range tokens {
		c, err := card.Parse(tok)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
