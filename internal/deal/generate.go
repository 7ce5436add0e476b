// FILE: internal/deal/generate.go
package deal

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"

	"meridian/internal/board"
	"meridian/internal/card"
)

const (
	DifficultyEasy     = "easy"
	DifficultyModerate = "moderate"
	DifficultyHard     = "hard"
)

// Difficulties lists the supported tiers in ascending order
var Difficulties = []string{DifficultyEasy, DifficultyModerate, DifficultyHard}

const generatorVersion = "1.0.0"

type GenerateOptions struct {
	Mode       board.Mode
	Difficulty string
	Seed       int64
	// Index, when positive, is appended to the id for batch output
	Index int
}

// Generate shuffles a fresh deck and deals the starting layout: column i
// holds i+1 cards, hidden modes hide i of them, one card opens the waste
// and the rest form the stock. The same options always yield the same deal.
func Generate(opts GenerateOptions) (*Deal, error) {
	if !slices.Contains(board.Modes, opts.Mode) {
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if opts.Difficulty == "" {
		opts.Difficulty = DifficultyEasy
	}
	if !slices.Contains(Difficulties, opts.Difficulty) {
		return nil, fmt.Errorf("unknown difficulty %q", opts.Difficulty)
	}

	deck := card.Deck()
	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15))
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	b := board.New(opts.Mode)
	cols, rest, err := layTableau(rng, deck, b.AllUp)
	if err != nil {
		return nil, err
	}
	b.Tableau = cols
	b.Stock = slices.Clone(rest[:len(rest)-1])
	b.Waste = []card.Card{rest[len(rest)-1]}

	id := fmt.Sprintf("%s_normal_%s", opts.Mode, opts.Difficulty)
	if opts.Index > 0 {
		id += fmt.Sprintf("_%02d", opts.Index)
	}
	seed := opts.Seed
	d := FromBoard(b, Metadata{
		ID:          id + "_generated",
		Difficulty:  opts.Difficulty,
		Version:     generatorVersion,
		Description: "Generated " + opts.Difficulty + " level",
		Seed:        &seed,
	})
	return d, nil
}

// layTableau deals column i its i+1 cards. Hidden modes take the shuffled
// deck as is since only the top card shows. All-up modes show every card,
// so each column is drawn as a legal run, longest column first.
func layTableau(rng *rand.Rand, deck []card.Card, allUp bool) ([board.Columns]board.Column, []card.Card, error) {
	var cols [board.Columns]board.Column
	if !allUp {
		next := 0
		for i := 0; i < board.Columns; i++ {
			cards := slices.Clone(deck[next : next+i+1])
			next += i + 1
			cols[i] = board.Column{Cards: cards, FaceDown: ExpectedFaceDown(false, i, len(cards))}
		}
		return cols, deck[next:], nil
	}

	used := make(map[card.Card]bool, board.DeckSize)
	for i := board.Columns - 1; i >= 0; i-- {
		run := findRun(rng, deck, used, i+1)
		if run == nil {
			return cols, nil, fmt.Errorf("no legal run of %d cards left for column %d", i+1, i)
		}
		for _, c := range run {
			used[c] = true
		}
		cols[i] = board.Column{Cards: run}
	}

	rest := make([]card.Card, 0, board.DeckSize)
	for _, c := range deck {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	return cols, rest, nil
}

func findRun(rng *rand.Rand, deck []card.Card, used map[card.Card]bool, n int) []card.Card {
	for _, start := range deck {
		if used[start] {
			continue
		}
		dirs := []card.Rank{1, -1}
		switch {
		case start.Rank == card.Ace:
			dirs = dirs[:1]
		case start.Rank == card.King:
			dirs = dirs[1:]
		case rng.IntN(2) == 1:
			dirs[0], dirs[1] = dirs[1], dirs[0]
		}
		for _, dir := range dirs {
			if run := extendRun(deck, used, []card.Card{start}, dir, n); run != nil {
				return run
			}
		}
	}
	return nil
}

// extendRun grows run one alternating card at a time, keeping ace columns
// within A..6 and king columns within K..7
func extendRun(deck []card.Card, used map[card.Card]bool, run []card.Card, dir card.Rank, n int) []card.Card {
	if len(run) == n {
		return run
	}
	last := run[len(run)-1]
	want := last.Rank + dir
	if want < card.Ace || want > card.King {
		return nil
	}
	switch board.TypeOf(run[0]) {
	case board.ColumnAce:
		if want > 6 {
			return nil
		}
	case board.ColumnKing:
		if want < 7 {
			return nil
		}
	}

	for _, c := range deck {
		if used[c] || c.Rank != want || !card.IsAlternateColor(c, last) {
			continue
		}
		if found := extendRun(deck, used, append(slices.Clone(run), c), dir, n); found != nil {
			return found
		}
	}
	return nil
}

// FileName is the file a generated deal is saved under
func FileName(d *Deal) string {
	if d.Metadata.ID != "" {
		return d.Metadata.ID + ".json"
	}
	return d.Metadata.Mode + "_" + strconv.FormatInt(seedOf(d), 10) + ".json"
}

func seedOf(d *Deal) int64 {
	if d.Metadata.Seed == nil {
		return 0
	}
	return *d.Metadata.Seed
}
