package handlers

import (
	"github.com/arzan03/wastetrack/internal/middleware"
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WasteHandler struct {
	Waste *services.WasteService
}

func (h *WasteHandler) List(c *fiber.Ctx) error {
	entries, err := h.Waste.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// Create records an entry owned by the caller.
func (h *WasteHandler) Create(c *fiber.Ctx) error {
	var request struct {
		Location string `json:"location"`
		Weight   weight `json:"weight"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session := middleware.SessionFrom(c)
	entry, err := h.Waste.Create(c.UserContext(), services.WasteInput{
		Location: request.Location,
		Weight:   float64(request.Weight),
		Category: request.Category,
	}, session.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *WasteHandler) Update(c *fiber.Ctx) error {
	var request struct {
		Location *string `json:"location"`
		Weight   *weight `json:"weight"`
		Category *string `json:"category"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	upd := models.WasteUpdate{Location: request.Location}
	if request.Weight != nil {
		w := float64(*request.Weight)
		upd.Weight = &w
	}
	if request.Category != nil {
		category := models.Category(*request.Category)
		upd.Category = &category
	}

	entry, err := h.Waste.Update(c.UserContext(), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (h *WasteHandler) Delete(c *fiber.Ctx) error {
	if err := h.Waste.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Entry removed"})
}
