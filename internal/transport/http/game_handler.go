// FILE: internal/transport/http/game_handler.go
package http

import (
	"context"
	"strconv"

	"meridian/internal/board"
	"meridian/internal/core"
	"meridian/internal/deal"
	"meridian/internal/engine"
	"meridian/internal/service"

	"github.com/gofiber/fiber/v2"
)

// gameID reads and checks the :gameId route parameter
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	return id, isValidUUID(id)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: err.Error(),
		Code:  core.ErrInternalError,
	})
}

// CreateGame starts a game from a pooled deal or a generated one
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return internalError(c, err)
	}

	v, err := h.svc.CreateGame(service.CreateParams{
		Mode:   req.Mode,
		DealID: req.DealID,
		Seed:   req.Seed,
		Player: req.Player,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(buildGameResponse(v))
}

// GetGame returns the current state. With wait=true and version set to
// the caller's last seen version it long-polls for the next change.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	v, err := h.svc.GetGame(id)
	if err != nil {
		return sendError(c, err)
	}
	if c.Query("wait", "false") != "true" {
		return c.JSON(buildGameResponse(v))
	}

	version, err := strconv.Atoi(c.Query("version", "-1"))
	if err != nil || version != v.Version {
		return c.JSON(buildGameResponse(v))
	}

	ctx := c.Context()
	notify, err := h.svc.Wait(ctx, id, version)
	if err != nil {
		return sendError(c, err)
	}

	select {
	case <-notify:
		// changed, timed out or deleted
		v, err := h.svc.GetGame(id)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(buildGameResponse(v))
	case <-ctx.Done():
		return nil
	}
}

func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	if err := h.svc.DeleteGame(id); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MakeMove applies a move in notation such as "t2*3>t5"
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return internalError(c, err)
	}
	m, err := engine.ParseMove(req.Move)
	if err != nil {
		return badRequest(c, "invalid move notation", err)
	}

	v, _, err := h.svc.Move(id, m)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(v))
}

func (h *HTTPHandler) Draw(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	v, _, err := h.svc.Draw(id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(v))
}

func (h *HTTPHandler) Undo(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return internalError(c, err)
	}
	v, _, err := h.svc.Undo(id, req.Count)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(v))
}

func (h *HTTPHandler) Redo(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, err := validatedBody[core.RedoRequest](c)
	if err != nil {
		return internalError(c, err)
	}
	v, _, err := h.svc.Redo(id, req.Count)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(v))
}

// Hint spends a hint and returns the suggested move without playing it
func (h *HTTPHandler) Hint(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	m, v, err := h.svc.Hint(id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(core.HintResponse{Move: m.String(), HintsRemaining: v.HintsRemaining})
}

func (h *HTTPHandler) Tap(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, err := validatedBody[core.TapRequest](c)
	if err != nil {
		return internalError(c, err)
	}
	from, err := board.ParseLocation(req.From)
	if err != nil {
		return badRequest(c, "invalid location", err)
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	v, _, err := h.svc.Tap(id, from, count)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildGameResponse(v))
}

// AutoComplete finishes a trivially winnable game
func (h *HTTPHandler) AutoComplete(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	moves, v, err := h.svc.AutoComplete(context.Background(), id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(core.AutoCompleteResponse{
		Moves: moveStrings(moves),
		Game:  buildGameResponse(v),
	})
}

// Targets lists legal destinations for a drag from ?from= with ?count=
func (h *HTTPHandler) Targets(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	from, err := board.ParseLocation(c.Query("from"))
	if err != nil {
		return badRequest(c, "invalid location", err)
	}
	count, err := strconv.Atoi(c.Query("count", "1"))
	if err != nil || count < 1 || count > 13 {
		return badRequest(c, "count must be between 1 and 13", nil)
	}

	targets, err := h.svc.Targets(id, from, count)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(core.TargetsResponse{
		From:    from.String(),
		Count:   count,
		Targets: locationStrings(targets),
	})
}

// GetBoard returns the board view with its ASCII rendering
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	v, err := h.svc.GetGame(id)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(buildBoardView(v.Board, true))
}

func (h *HTTPHandler) ListDeals(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"deals": h.svc.Deals().List(c.Query("mode")),
	})
}

// ValidateDeal checks an uploaded deal without starting a game
func (h *HTTPHandler) ValidateDeal(c *fiber.Ctx) error {
	d, err := validatedBody[deal.Deal](c)
	if err != nil {
		return internalError(c, err)
	}
	report := h.svc.ValidateDeal(d)
	status := fiber.StatusOK
	if !report.IsValid {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(report)
}
