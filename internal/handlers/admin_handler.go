package handlers

import (
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the administrator-only user management routes.
type AdminHandler struct {
	Auth       *services.AuthService
	Volunteers *services.VolunteerService
}

// List all users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Create a user of any role
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
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

	user, err := h.Auth.Provision(c.UserContext(), request.Username, request.Password, models.Role(request.Role))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Set a new password for a user
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	var request struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if request.NewPassword == "" {
		return badRequest(c, "New password is required")
	}
	if len(request.NewPassword) < MinPasswordLength {
		return badRequest(c, "password must be at least 6 characters")
	}

	if err := h.Auth.ResetPassword(c.UserContext(), c.Params("id"), request.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// List users waiting for volunteer approval
func (h *AdminHandler) PendingVolunteers(c *fiber.Ctx) error {
	users, err := h.Volunteers.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Approve a pending volunteer
func (h *AdminHandler) ApproveVolunteer(c *fiber.Ctx) error {
	if err := h.Volunteers.Approve(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User approved as volunteer"})
}
