package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"keywordlens/pkg/i18n"
)

type settingsRequest struct {
	Locale string `json:"locale"`
}

// Settings handles GET /api/user-settings.
func (h *Handler) Settings(c *fiber.Ctx) error {
	h.settingsMu.RLock()
	locale := h.locale
	h.settingsMu.RUnlock()

	if locale == "" {
		locale = requestLocale(c)
	}
	return c.JSON(fiber.Map{"locale": locale})
}

// UpdateSettings handles PUT /api/user-settings. The preference is kept
// server-side and mirrored to the locale cookie; clients treat the mirror
// as best-effort.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !i18n.Supported(req.Locale) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unsupported locale %q", req.Locale),
		})
	}

	h.settingsMu.Lock()
	h.locale = req.Locale
	h.settingsMu.Unlock()

	c.Cookie(&fiber.Cookie{
		Name:    "locale",
		Value:   req.Locale,
		Expires: time.Now().AddDate(1, 0, 0),
	})
	return c.JSON(fiber.Map{"locale": req.Locale})
}
