package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/geoid-labs/geoid_api/shared"
)

type ProfileHandler struct {
	gameSvc GameServiceInterface
}

func NewProfileHandler(gameSvc GameServiceInterface) *ProfileHandler {
	return &ProfileHandler{gameSvc: gameSvc}
}

// @Summary Profile
// @Description Get the authenticated profile with play history, streak and badges
// @Tags profile
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.ProfileResponse}
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	profile, err := h.gameSvc.ProfileSummary(c.Context(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, profile)
}
