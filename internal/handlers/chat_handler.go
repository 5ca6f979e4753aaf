package handlers

import (
	"errors"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	Chat *services.ChatService
}

// Reply forwards a question to the assistant. The reply is never empty, even
// when the upstream model fails.
func (h *ChatHandler) Reply(c *fiber.Ctx) error {
	var request struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	reply, err := h.Chat.Reply(c.UserContext(), request.Message)
	switch {
	case errors.Is(err, common.ErrValidation):
		return badRequest(c, common.Message(err))
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"reply": reply})
	}
	return c.JSON(fiber.Map{"reply": reply})
}
