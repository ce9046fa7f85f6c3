package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/geoid-labs/geoid_api/shared"
)

type AdminHandler struct {
	mediaSvc MediaServiceInterface
}

func NewAdminHandler(mediaSvc MediaServiceInterface) *AdminHandler {
	return &AdminHandler{mediaSvc: mediaSvc}
}

// @Summary Upload Badge Artwork (Admin)
// @Description Upload artwork for a badge and repoint its image URL
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param badgeId path int true "Badge ID"
// @Param artwork formData file true "Artwork file (JPG, PNG, WEBP, SVG)"
// @Success 200 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/admin/badges/{badgeId}/artwork [post]
func (h *AdminHandler) UploadBadgeArtwork(c *fiber.Ctx) error {
	badgeID, err := strconv.ParseUint(c.Params("badgeId"), 10, 64)
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid badge id")
	}

	file, err := c.FormFile("artwork")
	if err != nil {
		return shared.NewBadRequestError(err, "No artwork file provided")
	}

	response, err := h.mediaSvc.UploadBadgeArtwork(badgeID, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Artwork uploaded successfully", response)
}
