// FILE: internal/transport/http/types.go
package http

import (
	"errors"

	"meridian/internal/assist"
	"meridian/internal/board"
	"meridian/internal/card"
	"meridian/internal/core"
	"meridian/internal/engine"
	"meridian/internal/game"
	"meridian/internal/service"

	"github.com/gofiber/fiber/v2"
)

func buildGameResponse(v service.View) core.GameResponse {
	resp := core.GameResponse{
		GameID:         v.ID,
		DealID:         v.DealID,
		Mode:           string(v.Mode),
		State:          v.State.String(),
		Board:          buildBoardView(v.Board, false),
		HistoryLength:  v.HistoryLen,
		RedoLength:     v.RedoLen,
		HintsRemaining: v.HintsRemaining,
		Stalemate:      v.Tier.String(),
		Moves:          v.Moves,
		TriviallyWon:   v.TriviallyWinnable,
		Player:         v.Player,
	}
	if v.Last != nil {
		info := &core.ActionInfo{Action: v.Last.Kind, Move: v.Last.Notation}
		for _, e := range v.Last.Events {
			info.Events = append(info.Events, e.String())
		}
		resp.LastAction = info
	}
	return resp
}

// buildBoardView projects b for clients. Face-down cards never leave the
// server, only their count.
func buildBoardView(b *board.Board, ascii bool) core.BoardView {
	view := core.BoardView{
		Tableau:     make([]core.ColumnView, 0, board.Columns),
		Foundations: make(map[string][]string, 8),
		Pockets:     make([]*string, 0, b.PocketCount),
		StockCount:  len(b.Stock),
		Waste:       card.Strings(b.Waste),
		StockCycles: b.StockCycles,
	}
	for _, col := range b.Tableau {
		view.Tableau = append(view.Tableau, core.ColumnView{
			Type:     col.Type().String(),
			FaceDown: col.FaceDown,
			Cards:    card.Strings(col.FaceUp()),
		})
	}
	for _, g := range board.Groups {
		for _, s := range card.Suits {
			view.Foundations[board.Foundation(g, s).String()] = card.Strings(b.Foundations.Pile(g, s))
		}
	}
	for j := 0; j < b.PocketCount; j++ {
		var slot *string
		if c, ok := b.Pocket(j); ok {
			name := c.String()
			slot = &name
		}
		view.Pockets = append(view.Pockets, slot)
	}
	if ascii {
		view.ASCII = b.ToASCII()
	}
	return view
}

func locationStrings(locs []board.Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.String()
	}
	return out
}

func moveStrings(moves []engine.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

// errorResponse maps a service or domain error to a status and body
func errorResponse(err error) (int, core.ErrorResponse) {
	var reason engine.Reason
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound, core.ErrorResponse{Error: "game not found", Code: core.ErrGameNotFound}
	case errors.Is(err, service.ErrDealNotFound):
		return fiber.StatusNotFound, core.ErrorResponse{Error: "deal not found", Code: core.ErrDealNotFound, Details: err.Error()}
	case errors.Is(err, service.ErrInvalidDeal):
		return fiber.StatusBadRequest, core.ErrorResponse{Error: "invalid deal", Code: core.ErrInvalidDeal, Details: err.Error()}
	case errors.Is(err, service.ErrResourceLimit):
		return fiber.StatusServiceUnavailable, core.ErrorResponse{Error: "server at capacity", Code: core.ErrResourceLimit}
	case errors.Is(err, game.ErrGameOver):
		return fiber.StatusConflict, core.ErrorResponse{Error: "game is over", Code: core.ErrGameOver}
	case errors.Is(err, engine.ErrNothingToDraw):
		return fiber.StatusConflict, core.ErrorResponse{Error: "nothing to draw", Code: core.ErrNothingToDraw}
	case errors.Is(err, game.ErrNoUndo):
		return fiber.StatusConflict, core.ErrorResponse{Error: "nothing to undo", Code: core.ErrNoUndo}
	case errors.Is(err, game.ErrNoRedo):
		return fiber.StatusConflict, core.ErrorResponse{Error: "nothing to redo", Code: core.ErrNoRedo}
	case errors.Is(err, game.ErrNoHints):
		return fiber.StatusConflict, core.ErrorResponse{Error: "no hints remaining", Code: core.ErrNoHints}
	case errors.Is(err, game.ErrNoHint):
		return fiber.StatusConflict, core.ErrorResponse{Error: "no useful move found", Code: core.ErrNoHint}
	case errors.Is(err, assist.ErrNotTriviallyWinnable):
		return fiber.StatusConflict, core.ErrorResponse{Error: "game is not trivially winnable", Code: core.ErrNotTrivial}
	case errors.Is(err, game.ErrInvariant):
		return fiber.StatusInternalServerError, core.ErrorResponse{Error: "board invariant broken", Code: core.ErrInternalError, Details: err.Error()}
	case errors.As(err, &reason):
		return fiber.StatusBadRequest, core.ErrorResponse{Error: "illegal move", Code: core.ErrIllegalMove, Details: reason.String()}
	default:
		return fiber.StatusInternalServerError, core.ErrorResponse{Error: "internal server error", Code: core.ErrInternalError, Details: err.Error()}
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string, err error) error {
	body := core.ErrorResponse{Error: msg, Code: core.ErrInvalidRequest}
	if err != nil {
		body.Details = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
