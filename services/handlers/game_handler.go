package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/shared"
)

type GameHandler struct {
	gameSvc GameServiceInterface
}

func NewGameHandler(gameSvc GameServiceInterface) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// @Summary Today's Challenge
// @Description Get the daily challenge for the current date
// @Tags games
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameResponse}
// @Router /api/v1/games/today [get]
func (h *GameHandler) GetTodayGame(c *fiber.Ctx) error {
	game, err := h.gameSvc.TodayGame()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, game)
}

// @Summary Save Game Result
// @Description Record a finished play and refresh the streak
// @Tags games
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.SaveGameRequest true "Game result"
// @Success 200 {object} shared.Response{data=dto.SaveGameResponse}
// @Router /api/v1/games/save [post]
func (h *GameHandler) SaveGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SaveGameRequest
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

	resp, err := h.gameSvc.SaveResult(userID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Game History
// @Description List the authenticated profile's finished plays, newest first
// @Tags games
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameHistoryResponse}
// @Router /api/v1/games/history [get]
func (h *GameHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	history, err := h.gameSvc.History(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, history)
}
