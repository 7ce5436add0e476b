// FILE: internal/validation/validation.go
// Package validation certifies that a deal or board is a complete,
// internally consistent 52-card position. It never mutates its input.
package validation

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/deal"
)

type Kind string

const (
	KindConservation    Kind = "conservation"
	KindDuplicate       Kind = "duplicate"
	KindMissing         Kind = "missing"
	KindMalformed       Kind = "malformed"
	KindTableauCount    Kind = "tableau_count"
	KindSequence        Kind = "sequence"
	KindFaceDown        Kind = "face_down"
	KindFoundationSuit  Kind = "foundation_suit"
	KindFoundationStart Kind = "foundation_start"
	KindFoundationStep  Kind = "foundation_step"
	KindColumnType      Kind = "column_type"
	KindPocketCapacity  Kind = "pocket_capacity"
	KindPocketNaming    Kind = "pocket_naming"
)

// Issue is one finding. Where names the zone, e.g. "tableau[3]" or
// "foundations.up.h".
type Issue struct {
	Kind    Kind   `json:"kind"`
	Where   string `json:"where,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Where == "" {
		return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Kind, i.Where, i.Message)
}

type Stats struct {
	TotalCards      int `json:"totalCards"`
	UniqueCards     int `json:"uniqueCards"`
	TableauCards    int `json:"tableauCards"`
	FoundationCards int `json:"foundationCards"`
	PocketCards     int `json:"pocketCards"`
	StockCards      int `json:"stockCards"`
	WasteCards      int `json:"wasteCards"`
	FaceDownCards   int `json:"faceDownCards"`
	Columns         int `json:"columns"`
}

// Report is valid when it has no errors; warnings never block
type Report struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Stats    Stats   `json:"stats"`
}

func (r *Report) fail(kind Kind, where, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Kind: kind, Where: where, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warn(kind Kind, where, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Kind: kind, Where: where, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether any error or warning of the kind was recorded
func (r Report) Has(kind Kind) bool {
	for _, list := range [][]Issue{r.Errors, r.Warnings} {
		for _, i := range list {
			if i.Kind == kind {
				return true
			}
		}
	}
	return false
}

// ValidateBoard checks a live board. Column metadata is derived from the
// board, so only face-down drift can warn about columns.
func ValidateBoard(b *board.Board) Report {
	return ValidateDeal(deal.FromBoard(b, deal.Metadata{}))
}

// ValidateDeal runs every consistency check over d
func ValidateDeal(d *deal.Deal) Report {
	r := Report{Errors: []Issue{}, Warnings: []Issue{}}

	checkConservation(d, &r)
	checkTableauCount(d, &r)
	checkSequences(d, &r)
	checkFaceDown(d, &r)
	checkFoundations(d, &r)
	checkColumnTypes(d, &r)
	checkPockets(d, &r)

	r.IsValid = len(r.Errors) == 0
	return r
}

// zoneTokens lists every token with the zone it sits in
func zoneTokens(d *deal.Deal) [][2]string {
	var out [][2]string
	add := func(where string, tokens []string) {
		for _, t := range tokens {
			out = append(out, [2]string{where, t})
		}
	}
	for _, key := range columnKeys(d) {
		add("tableau["+key+"]", d.Tableau[key])
	}
	for _, g := range board.Groups {
		for _, s := range card.Suits {
			add(pileName(g, s), d.Pile(g, s))
		}
	}
	for j := 0; j < board.MaxPockets; j++ {
		if tok, ok := d.PocketCard(j); ok {
			add("pocket"+strconv.Itoa(j+1), []string{tok})
		}
	}
	add("stock", d.Stock)
	add("waste", d.Waste)
	return out
}

func checkConservation(d *deal.Deal, r *Report) {
	seen := make(map[card.Card]string, board.DeckSize)
	tokens := zoneTokens(d)

	for _, zt := range tokens {
		where, tok := zt[0], zt[1]
		c, err := card.Parse(tok)
		if err != nil {
			r.fail(KindMalformed, where, "unparseable card %q", tok)
			continue
		}
		if first, dup := seen[c]; dup {
			r.fail(KindDuplicate, where, "%s already appears in %s", c, first)
			continue
		}
		seen[c] = where
	}

	r.Stats.TotalCards = len(tokens)
	r.Stats.UniqueCards = len(seen)
	for _, key := range columnKeys(d) {
		r.Stats.TableauCards += len(d.Tableau[key])
	}
	for _, g := range board.Groups {
		for _, s := range card.Suits {
			r.Stats.FoundationCards += len(d.Pile(g, s))
		}
	}
	for j := 0; j < board.MaxPockets; j++ {
		if _, ok := d.PocketCard(j); ok {
			r.Stats.PocketCards++
		}
	}
	r.Stats.StockCards = len(d.Stock)
	r.Stats.WasteCards = len(d.Waste)

	if len(tokens) != board.DeckSize || len(seen) != board.DeckSize {
		r.fail(KindConservation, "", "found %d/%d cards (%d unique)", len(tokens), board.DeckSize, len(seen))
	}

	var missing []string
	for _, c := range card.Deck() {
		if _, ok := seen[c]; !ok {
			missing = append(missing, c.String())
		}
	}
	if len(missing) > 0 {
		r.fail(KindMissing, "", "missing %s", strings.Join(missing, ", "))
	}
}

func checkTableauCount(d *deal.Deal, r *Report) {
	present := 0
	for i := 0; i < board.Columns; i++ {
		if _, ok := d.Tableau[strconv.Itoa(i)]; ok {
			present++
		}
	}
	r.Stats.Columns = len(d.Tableau)
	if present != board.Columns || len(d.Tableau) != board.Columns {
		r.fail(KindTableauCount, "tableau", "expected %d columns keyed 0-6, found %d", board.Columns, len(d.Tableau))
	}
}

func checkSequences(d *deal.Deal, r *Report) {
	for i := 0; i < board.Columns; i++ {
		tokens := d.Column(i)
		if len(tokens) == 0 {
			continue
		}
		where := fmt.Sprintf("tableau[%d]", i)
		down := d.FaceDown(i)
		r.Stats.FaceDownCards += down

		cards, ok := parseRun(tokens[down:])
		if !ok {
			continue
		}

		dir := card.Rank(0)
		for k := 1; k < len(cards); k++ {
			lower, upper := cards[k-1], cards[k]
			step := upper.Rank - lower.Rank
			switch {
			case !card.IsConsecutive(lower, upper):
				r.fail(KindSequence, where, "%s on %s is not consecutive", upper, lower)
			case !card.IsAlternateColor(lower, upper):
				r.fail(KindSequence, where, "%s on %s does not alternate color", upper, lower)
			case dir != 0 && step != dir:
				r.fail(KindSequence, where, "%s on %s reverses the run direction", upper, lower)
			}
			if dir == 0 && card.IsConsecutive(lower, upper) {
				dir = step
			}
		}

		if down > 0 || len(cards) < 2 {
			continue
		}
		switch board.TypeOf(cards[0]) {
		case board.ColumnAce:
			if dir < 0 {
				r.fail(KindSequence, where, "ace column must build upward")
			}
		case board.ColumnKing:
			if dir > 0 {
				r.fail(KindSequence, where, "king column must build downward")
			}
		}
	}
}

func checkFaceDown(d *deal.Deal, r *Report) {
	allUp := d.AllUp()
	for i := 0; i < board.Columns; i++ {
		size := len(d.Column(i))
		actual := d.FaceDown(i)
		if d.ColumnState != nil && i < len(d.ColumnState.FaceDownCounts) {
			actual = d.ColumnState.FaceDownCounts[i]
		}
		expected := deal.ExpectedFaceDown(allUp, i, size)
		if actual == expected {
			continue
		}
		where := fmt.Sprintf("tableau[%d]", i)
		if allUp {
			r.warn(KindFaceDown, where, "all-up mode carries %d face-down cards", actual)
			continue
		}
		r.warn(KindFaceDown, where, "expected %d face-down cards, found %d", expected, actual)
	}
}

func checkFoundations(d *deal.Deal, r *Report) {
	for _, g := range board.Groups {
		for _, s := range card.Suits {
			tokens := d.Pile(g, s)
			if len(tokens) == 0 {
				continue
			}
			where := pileName(g, s)
			cards, ok := parseRun(tokens)
			if !ok {
				continue
			}
			if cards[0].Rank != g.Anchor() {
				r.fail(KindFoundationStart, where, "pile starts at %s, expected rank %s", cards[0], g.Anchor())
			}
			for k, c := range cards {
				if c.Suit != s {
					r.fail(KindFoundationSuit, where, "%s does not belong on the %c pile", c, s)
				}
				if k > 0 && c.Rank-cards[k-1].Rank != g.Step() {
					r.fail(KindFoundationStep, where, "%s does not follow %s", c, cards[k-1])
				}
			}
		}
	}
}

func checkColumnTypes(d *deal.Deal, r *Report) {
	declared := d.DeclaredTypes()
	if declared == nil {
		return
	}
	traditional := board.ColumnTraditional.String()

	for i := 0; i < board.Columns && i < len(declared); i++ {
		where := fmt.Sprintf("tableau[%d]", i)
		tokens := d.Column(i)
		decl := declared[i]

		if len(tokens) == 0 {
			if decl != nil {
				r.fail(KindColumnType, where, "empty column declared %q, expected null", *decl)
			}
			continue
		}

		bottom, err := card.Parse(tokens[0])
		if err != nil {
			continue
		}
		actual := board.TypeOf(bottom).String()
		got := "null"
		if decl != nil {
			got = *decl
		}
		if got == actual {
			continue
		}
		if got == traditional || actual == traditional {
			r.warn(KindColumnType, where, "declared %s but bottom card %s makes it %s", got, bottom, actual)
			continue
		}
		r.fail(KindColumnType, where, "declared %s but bottom card %s makes it %s", got, bottom, actual)
	}
}

func checkPockets(d *deal.Deal, r *Report) {
	count := d.PocketCount()
	if count == 1 {
		if tok, ok := d.PocketCard(1); ok {
			r.fail(KindPocketCapacity, "pocket2", "single-pocket mode holds %s in its second pocket", tok)
		}
		return
	}
	if !d.Mode().IsDouble() {
		r.warn(KindPocketNaming, "metadata.mode", "mode %q has %d pockets but lacks the _double suffix", d.Metadata.Mode, count)
	}
}

// parseRun parses tokens, giving up silently on malformed ones, which the
// conservation check already reports
func parseRun(tokens []string) ([]card.Card, bool) {
	cards := make([]card.Card, 0, len(tokens))
	for _, tok := range tokens {
		c, err := card.Parse(tok)
		if err != nil {
			return nil, false
		}
		cards = append(cards, c)
	}
	return cards, true
}

// columnKeys returns tableau keys with the standard columns first, then any
// stray keys, so reports are stable
func columnKeys(d *deal.Deal) []string {
	keys := make([]string, 0, len(d.Tableau))
	for i := 0; i < board.Columns; i++ {
		if _, ok := d.Tableau[strconv.Itoa(i)]; ok {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	var extra []string
	for k := range d.Tableau {
		if n, err := strconv.Atoi(k); err != nil || n < 0 || n >= board.Columns || strconv.Itoa(n) != k {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func pileName(g board.Group, s card.Suit) string {
	return fmt.Sprintf("foundations.%s.%c", g, s)
}
