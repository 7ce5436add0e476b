// FILE: internal/card/card.go
// Package card implements the playing card model used by every other package:
// token parsing, rank and color arithmetic, and the canonical 52-card deck.
package card

import (
	"errors"
	"fmt"
	"strconv"
)

// Rank is the numeric rank of a card, Ace=1 through King=13
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// Suit is the single-letter suit code used in deal files
type Suit byte

const (
	Hearts   Suit = 'h'
	Diamonds Suit = 'd'
	Clubs    Suit = 'c'
	Spades   Suit = 's'
)

// Suits lists suits in deal-file order
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

type Color int

const (
	Red Color = iota + 1
	Black
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Black:
		return "black"
	default:
		return "none"
	}
}

var (
	ErrEmptyToken  = errors.New("empty card token")
	ErrInvalidRank = errors.New("invalid card rank")
	ErrInvalidSuit = errors.New("invalid card suit")
)

// Card is an immutable playing card. The zero value is "no card".
type Card struct {
	Rank Rank
	Suit Suit
}

// Parse reads a token such as "10h", "Th", "Ks" or "as". Rank letters are
// case-insensitive, suit letters too.
func Parse(token string) (Card, error) {
	if len(token) < 2 || len(token) > 3 {
		if token == "" {
			return Card{}, ErrEmptyToken
		}
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidRank, token)
	}

	suit, ok := parseSuit(token[len(token)-1])
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidSuit, token)
	}

	rank, ok := parseRank(token[:len(token)-1])
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidRank, token)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// MustParse is Parse for literals known to be valid
func MustParse(token string) Card {
	c, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return c
}

// MustParseAll parses a list of literal tokens
func MustParseAll(tokens ...string) []Card {
	cards := make([]Card, len(tokens))
	for i, t := range tokens {
		cards[i] = MustParse(t)
	}
	return cards
}

func parseSuit(b byte) (Suit, bool) {
	switch b {
	case 'h', 'H':
		return Hearts, true
	case 'd', 'D':
		return Diamonds, true
	case 'c', 'C':
		return Clubs, true
	case 's', 'S':
		return Spades, true
	}
	return 0, false
}

func parseRank(s string) (Rank, bool) {
	switch s {
	case "A", "a":
		return Ace, true
	case "J", "j":
		return Jack, true
	case "Q", "q":
		return Queen, true
	case "K", "k":
		return King, true
	case "T", "t", "10":
		return 10, true
	}
	// a lone digit 2..9; "05", "+5" and the like are malformed
	if len(s) != 1 || s[0] < '2' || s[0] > '9' {
		return 0, false
	}
	return Rank(s[0] - '0'), true
}

// IsZero reports whether c is the "no card" value
func (c Card) IsZero() bool {
	return c.Rank == 0 && c.Suit == 0
}

func (c Card) Color() Color {
	switch c.Suit {
	case Hearts, Diamonds:
		return Red
	case Clubs, Spades:
		return Black
	}
	return 0
}

// String returns the canonical deal-file token, e.g. "10h"
func (c Card) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Rank.String() + string(c.Suit)
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r >= 2 && r <= 10 {
		return strconv.Itoa(int(r))
	}
	return "?"
}

// Index maps a suit to 0..3 in Suits order, or -1
func (s Suit) Index() int {
	for i, v := range Suits {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Suit) Valid() bool {
	return s.Index() >= 0
}

// CompareRank returns -1, 0 or 1 as a ranks below, equal to or above b
func CompareRank(a, b Card) int {
	switch {
	case a.Rank < b.Rank:
		return -1
	case a.Rank > b.Rank:
		return 1
	default:
		return 0
	}
}

// IsConsecutive reports whether the ranks differ by exactly one, either direction
func IsConsecutive(a, b Card) bool {
	d := a.Rank - b.Rank
	return d == 1 || d == -1
}

func IsAlternateColor(a, b Card) bool {
	return a.Color() != b.Color()
}

// Deck returns the 52 cards grouped by suit in Suits order, Ace to King
func Deck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Strings renders cards as tokens
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
