// FILE: internal/core/api.go
package core

// Request types

type CreateGameRequest struct {
	Mode   string       `json:"mode,omitempty" validate:"omitempty,oneof=classic classic_double hidden hidden_double"`
	DealID string       `json:"dealId,omitempty" validate:"omitempty,max=128"`
	Seed   *int64       `json:"seed,omitempty"`
	Player PlayerConfig `json:"player"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=3,max=24"` // "t3>up:h", "t2*3>t5", "waste>p1"
}

// TapRequest moves a card to its best destination, as a double-click does
type TapRequest struct {
	From  string `json:"from" validate:"required,min=1,max=8"`
	Count int    `json:"count,omitempty" validate:"omitempty,min=1,max=13"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=100"` // Bounded by history capacity
}

type RedoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=100"`
}

// Response types

type GameResponse struct {
	GameID         string      `json:"gameId"`
	DealID         string      `json:"dealId,omitempty"`
	Mode           string      `json:"mode"`
	State          string      `json:"state"`
	Board          BoardView   `json:"board"`
	HistoryLength  int         `json:"historyLength"`
	RedoLength     int         `json:"redoLength"`
	HintsRemaining int         `json:"hintsRemaining"`
	Stalemate      string      `json:"stalemate"` // "none", "concern", "stuck"
	Moves          int         `json:"moves"`
	TriviallyWon   bool        `json:"triviallyWinnable"`
	Player         *Player     `json:"player,omitempty"`
	LastAction     *ActionInfo `json:"lastAction,omitempty"`
}

type ActionInfo struct {
	Action string   `json:"action"` // "move", "draw", "undo", "redo"
	Move   string   `json:"move,omitempty"`
	Events []string `json:"events,omitempty"`
}

// BoardView is the read-only projection rendered by clients. Face-down
// cards are masked.
type BoardView struct {
	Tableau     []ColumnView        `json:"tableau"`
	Foundations map[string][]string `json:"foundations"` // "up:h" -> pile
	Pockets     []*string           `json:"pockets"`
	StockCount  int                 `json:"stockCount"`
	Waste       []string            `json:"waste"`
	StockCycles int                 `json:"stockCycles"`
	ASCII       string              `json:"ascii,omitempty"`
}

type ColumnView struct {
	Type     string   `json:"type"`
	FaceDown int      `json:"faceDown"`
	Cards    []string `json:"cards"`
}

type HintResponse struct {
	Move           string `json:"move"`
	HintsRemaining int    `json:"hintsRemaining"`
}

type TargetsResponse struct {
	From    string   `json:"from"`
	Count   int      `json:"count"`
	Targets []string `json:"targets"`
}

type AutoCompleteResponse struct {
	Moves []string     `json:"moves"`
	Game  GameResponse `json:"game"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
