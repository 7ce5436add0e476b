// FILE: internal/board/location.go
package board

import (
	"fmt"
	"strconv"
	"strings"

	"meridian/internal/card"
)

type Zone int

const (
	ZoneNone Zone = iota
	ZoneTableau
	ZoneFoundation
	ZonePocket
	ZoneWaste
	ZoneStock
)

func (z Zone) String() string {
	switch z {
	case ZoneTableau:
		return "tableau"
	case ZoneFoundation:
		return "foundation"
	case ZonePocket:
		return "pocket"
	case ZoneWaste:
		return "waste"
	case ZoneStock:
		return "stock"
	default:
		return "none"
	}
}

// Location addresses one pile on the board. Index is the tableau column
// (0..6) or pocket slot (0..1); Group and Suit select a foundation pile.
type Location struct {
	Zone  Zone
	Index int
	Group Group
	Suit  card.Suit
}

func Tableau(i int) Location {
	return Location{Zone: ZoneTableau, Index: i}
}

func Foundation(g Group, s card.Suit) Location {
	return Location{Zone: ZoneFoundation, Group: g, Suit: s}
}

func Pocket(j int) Location {
	return Location{Zone: ZonePocket, Index: j}
}

func Waste() Location {
	return Location{Zone: ZoneWaste}
}

func Stock() Location {
	return Location{Zone: ZoneStock}
}

// String renders the notation accepted by ParseLocation: t0..t6, up:h,
// down:s, p1, p2, waste, stock. Pockets are numbered as in deal files.
func (l Location) String() string {
	switch l.Zone {
	case ZoneTableau:
		return fmt.Sprintf("t%d", l.Index)
	case ZoneFoundation:
		return fmt.Sprintf("%s:%c", l.Group, l.Suit)
	case ZonePocket:
		return fmt.Sprintf("p%d", l.Index+1)
	case ZoneWaste:
		return "waste"
	case ZoneStock:
		return "stock"
	default:
		return "-"
	}
}

func ParseLocation(s string) (Location, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "w" || s == "waste":
		return Waste(), nil
	case s == "s" || s == "stock":
		return Stock(), nil
	case strings.Contains(s, ":"):
		parts := strings.SplitN(s, ":", 2)
		g, ok := ParseGroup(parts[0])
		if !ok || len(parts[1]) != 1 {
			return Location{}, fmt.Errorf("invalid foundation location %q", s)
		}
		suit := card.Suit(parts[1][0])
		if !suit.Valid() {
			return Location{}, fmt.Errorf("invalid foundation suit %q", s)
		}
		return Foundation(g, suit), nil
	case strings.HasPrefix(s, "t"):
		i, err := strconv.Atoi(s[1:])
		if err != nil || i < 0 || i >= Columns {
			return Location{}, fmt.Errorf("invalid tableau column %q", s)
		}
		return Tableau(i), nil
	case strings.HasPrefix(s, "p"):
		j, err := strconv.Atoi(s[1:])
		if err != nil || j < 1 || j > MaxPockets {
			return Location{}, fmt.Errorf("invalid pocket %q", s)
		}
		return Pocket(j - 1), nil
	}
	return Location{}, fmt.Errorf("unknown location %q", s)
}

func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
