package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/shared"
)

type BadgeHandler struct {
	ledgerSvc     BadgeLedgerInterface
	settlementSvc SettlementServiceInterface
}

func NewBadgeHandler(ledgerSvc BadgeLedgerInterface, settlementSvc SettlementServiceInterface) *BadgeHandler {
	return &BadgeHandler{
		ledgerSvc:     ledgerSvc,
		settlementSvc: settlementSvc,
	}
}

// @Summary Badge Collection
// @Description List all badges with the profile's claimed flags
// @Tags badges
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.BadgeCollectionResponse}
// @Router /api/v1/badges [get]
func (h *BadgeHandler) GetBadges(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	badges, err := h.ledgerSvc.ListWithClaimed(c.Context(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, badges)
}

// @Summary Claim Badge
// @Description Claim a badge and settle everything that follows: best-effort
// @Description mint, streak recompute and any streak milestone badge reached
// @Tags badges
// @Accept json
// @Produce json
// @Security Bearer
// @Param badgeId path int true "Badge ID"
// @Param request body dto.ClaimBadgeRequest false "Optional mint recipient override"
// @Success 200 {object} shared.Response{data=dto.SettleResponse}
// @Router /api/v1/badges/{badgeId}/claim [post]
func (h *BadgeHandler) ClaimBadge(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	badgeID, err := strconv.ParseUint(c.Params("badgeId"), 10, 64)
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid badge id")
	}

	var req dto.ClaimBadgeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request body")
		}
	}

	address := req.Address
	if address == "" {
		if primary, ok := c.Locals(shared.PrimaryAddress).(string); ok {
			address = primary
		}
	}

	resp, err := h.settlementSvc.Settle(c.Context(), userID, badgeID, address)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
