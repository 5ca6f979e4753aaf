package handlers

import (
	"errors"
	"time"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/middleware"
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

// MinPasswordLength is enforced on passwords set through the API.
const MinPasswordLength = 6

type AuthHandler struct {
	Auth *services.AuthService
}

type authResponse struct {
	ID                      string    `json:"id"`
	Username                string    `json:"username"`
	Role                    string    `json:"role"`
	VolunteerRequestPending bool      `json:"volunteerRequestPending"`
	Token                   string    `json:"token"`
	ExpiresAt               time.Time `json:"expiresAt"`
}

func newAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{
		ID:                      res.User.ID.Hex(),
		Username:                res.User.Username,
		Role:                    string(res.User.Role),
		VolunteerRequestPending: res.User.VolunteerRequestPending,
		Token:                   res.Token,
		ExpiresAt:               res.ExpiresAt,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(request.Password) < MinPasswordLength {
		return badRequest(c, "password must be at least 6 characters")
	}

	res, err := h.Auth.Register(c.UserContext(), request.Username, request.Password, request.Role)
	if errors.Is(err, common.ErrConflict) || errors.Is(err, common.ErrValidation) {
		return badRequest(c, common.Message(err))
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newAuthResponse(res))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.Auth.Login(c.UserContext(), request.Username, request.Password)
	if err != nil {
		return err
	}
	return c.JSON(newAuthResponse(res))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var request struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.Auth.RequestPasswordReset(c.UserContext(), request.Username); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset request sent to admin"})
}

// Me describes the caller's session, including when it expires.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	return c.JSON(fiber.Map{
		"id":                      session.UserID.Hex(),
		"username":                session.Username,
		"role":                    session.Role,
		"volunteerRequestPending": session.VolunteerRequestPending,
		"expiresAt":               session.ExpiresAt,
		"canRecord":               session.CanRecord(),
		"canDelete":               session.CanDelete(),
	})
}
