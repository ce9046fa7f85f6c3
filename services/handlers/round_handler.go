package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/shared"
)

type RoundHandler struct {
	roundSvc RoundServiceInterface
}

func NewRoundHandler(roundSvc RoundServiceInterface) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc}
}

func parseGameID(c *fiber.Ctx) (uint64, error) {
	gameID, err := strconv.ParseUint(c.Params("gameId"), 10, 64)
	if err != nil {
		return 0, shared.NewBadRequestError(err, "Invalid game id")
	}
	return gameID, nil
}

// @Summary Start Round
// @Description Open the guess window for a challenge
// @Tags rounds
// @Produce json
// @Security Bearer
// @Param gameId path int true "Game ID"
// @Success 200 {object} shared.Response{data=dto.RoundStateResponse}
// @Router /api/v1/rounds/{gameId}/start [post]
func (h *RoundHandler) StartRound(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	state, err := h.roundSvc.StartRound(c.Context(), userID, gameID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, state)
}

// @Summary Submit Guess
// @Description Place or move the guess pin while the window is open
// @Tags rounds
// @Accept json
// @Produce json
// @Security Bearer
// @Param gameId path int true "Game ID"
// @Param request body dto.GuessRequest true "Guess coordinates"
// @Success 200 {object} shared.Response{data=dto.RoundStateResponse}
// @Router /api/v1/rounds/{gameId}/guess [post]
func (h *RoundHandler) SubmitGuess(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	var req dto.GuessRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}
	if err := dto.GetValidator().Struct(&req); err != nil {
		return &shared.AppError{
			StatusCode: fiber.StatusBadRequest,
			Code:       shared.ErrCodeBadRequest,
			Message:    "Validation failed",
			Data:       dto.FormatValidationErrors(err),
			Err:        err,
		}
	}

	state, err := h.roundSvc.SubmitGuess(c.Context(), userID, gameID, shared.Coordinate{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, state)
}

// @Summary Lock Round
// @Description Commit the current guess early and score it
// @Tags rounds
// @Produce json
// @Security Bearer
// @Param gameId path int true "Game ID"
// @Success 200 {object} shared.Response{data=dto.RoundStateResponse}
// @Router /api/v1/rounds/{gameId}/lock [post]
func (h *RoundHandler) LockRound(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	state, err := h.roundSvc.LockRound(c.Context(), userID, gameID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, state)
}

// @Summary Round State
// @Description Reconcile and return the round state for a challenge
// @Tags rounds
// @Produce json
// @Security Bearer
// @Param gameId path int true "Game ID"
// @Success 200 {object} shared.Response{data=dto.RoundStateResponse}
// @Router /api/v1/rounds/{gameId} [get]
func (h *RoundHandler) GetRoundState(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	state, err := h.roundSvc.RoundState(c.Context(), userID, gameID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, state)
}
