package handlers

import (
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	Stats *services.StatsService
	// Reports is nil when object storage is not configured.
	Reports *services.ReportService
}

// Summary serves the public statistics. dateWiseCollection is keyed by day as
// YYYY-MM-DD in the configured timezone, not the DD/MM/YYYY display date stored
// on entries, so chart labels sort chronologically.
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.Stats.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (h *StatsHandler) ExportReport(c *fiber.Ctx) error {
	if h.Reports == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Report storage is not configured"})
	}
	report, err := h.Reports.Export(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
