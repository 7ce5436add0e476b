// FILE: internal/engine/reason.go
package engine

// Reason explains why a move was rejected. Reasons satisfy error so callers
// can match them with errors.Is, but the engine only ever returns them.
type Reason int

const (
	ReasonNone Reason = iota
	WrongColor
	NonConsecutiveRank
	WrongFoundationSuit
	FoundationRankMismatch
	ColumnMustStartAceOrKing
	PocketOccupied
	SourceCardFaceDown
	SourceEmpty
	InvalidRun
	IllegalLocation
	ColumnClosed
	TargetFaceDown
)

var reasonNames = map[Reason]string{
	ReasonNone:               "None",
	WrongColor:               "WrongColor",
	NonConsecutiveRank:       "NonConsecutiveRank",
	WrongFoundationSuit:      "WrongFoundationSuit",
	FoundationRankMismatch:   "FoundationRankMismatch",
	ColumnMustStartAceOrKing: "ColumnMustStartAceOrKing",
	PocketOccupied:           "PocketOccupied",
	SourceCardFaceDown:       "SourceCardFaceDown",
	SourceEmpty:              "SourceEmpty",
	InvalidRun:               "InvalidRun",
	IllegalLocation:          "IllegalLocation",
	ColumnClosed:             "ColumnClosed",
	TargetFaceDown:           "TargetFaceDown",
}

var reasonMessages = map[Reason]string{
	WrongColor:               "card must alternate color with the target",
	NonConsecutiveRank:       "card rank does not continue the column",
	WrongFoundationSuit:      "foundation holds a different suit",
	FoundationRankMismatch:   "card is not the next rank for this foundation",
	ColumnMustStartAceOrKing: "empty column accepts only an ace or a king",
	PocketOccupied:           "pocket already holds a card",
	SourceCardFaceDown:       "card is face-down",
	SourceEmpty:              "nothing to move from source",
	InvalidRun:               "cards do not form a movable run",
	IllegalLocation:          "location cannot take part in this move",
	ColumnClosed:             "traditional columns cannot be built on",
	TargetFaceDown:           "target card is face-down",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "Unknown"
}

func (r Reason) Error() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return r.String()
}

// ParseReason maps a reason name back to its value
func ParseReason(s string) (Reason, bool) {
	for r, name := range reasonNames {
		if name == s {
			return r, true
		}
	}
	return ReasonNone, false
}
