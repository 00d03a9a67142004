package handler

import (
	"github.com/gofiber/fiber/v2"

	"keywordlens/pkg/i18n"
)

type auditRequest struct {
	Target string `json:"target"`
}

// StartAudit handles POST /api/serp/onpage-audit. Audits run asynchronously
// on the provider side; the returned taskId is polled via TaskProgress.
func (h *Handler) StartAudit(c *fiber.Ctx) error {
	var req auditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(queryResponse{
			Error: i18n.T(requestLocale(c), i18n.KeyValidationFailed) + ": " + err.Error(),
		})
	}

	taskID, err := h.provider.StartAudit(c.Context(), req.Target)
	if err != nil {
		return h.queryError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"taskId":  taskID,
		"message": i18n.T(requestLocale(c), i18n.KeyAuditStarted),
	})
}

// TaskProgress handles GET /api/serp/task/:id.
func (h *Handler) TaskProgress(c *fiber.Ctx) error {
	status, err := h.provider.TaskProgress(c.Context(), c.Params("id"))
	if err != nil {
		return h.queryError(c, err)
	}
	return c.JSON(status)
}
