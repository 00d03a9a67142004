package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"keywordlens/pkg/export"
	"keywordlens/pkg/normalize"
)

type exportRequest struct {
	Keyword string                    `json:"keyword"`
	Format  string                    `json:"format"`
	Rows    []normalize.KeywordMetric `json:"rows"`
}

// Export handles POST /api/export, responding with the serialized rows as a
// file attachment named after the query keyword and the current date.
func (h *Handler) Export(c *fiber.Ctx) error {
	var req exportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	format, ok := export.ParseFormat(req.Format)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unsupported export format %q", req.Format),
		})
	}
	if len(req.Rows) > h.maxExportRows {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("at most %d rows can be exported", h.maxExportRows),
		})
	}

	data, err := export.Export(req.Rows, format)
	if err != nil {
		h.log.WithError(err).WithField("format", format).Error("Export failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	filename := export.Filename(req.Keyword, format, time.Now())
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
