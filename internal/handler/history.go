package handler

import (
	"github.com/gofiber/fiber/v2"

	"keywordlens/pkg/history"
)

// History handles GET /api/analysis/history?type=<analysis_type>&limit=<n>,
// returning stored analyses newest first. Entries keep the raw provider
// result so clients re-feed it through the normalizer for redisplay.
func (h *Handler) History(c *fiber.Ctx) error {
	analysisType := c.Query("type")
	if analysisType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter 'type' is required",
		})
	}

	entries, err := h.store.List(c.Context(), analysisType, c.QueryInt("limit", history.DefaultLimit))
	if err != nil {
		h.log.WithError(err).Error("History lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load analysis history",
		})
	}

	return c.JSON(fiber.Map{"analyses": entries})
}
