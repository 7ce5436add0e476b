// FILE: internal/core/core.go
package core

type State int

const (
	StateOngoing State = iota
	StateWon
	StateStalemate
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateWon:
		return "won"
	case StateStalemate:
		return "stalemate"
	case StateAbandoned:
		return "abandoned"
	default:
		return "ongoing"
	}
}

// IsOver reports whether the game accepts no further actions
func (s State) IsOver() bool {
	return s == StateWon || s == StateAbandoned
}
