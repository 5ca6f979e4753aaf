// Package server assembles the Fiber application and its routes.
package server

import (
	"github.com/arzan03/wastetrack/internal/handlers"
	"github.com/arzan03/wastetrack/internal/middleware"
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Deps struct {
	Log         *zap.Logger
	CORSOrigins string
	// AccessLog disables the request logger when false.
	AccessLog bool

	Auth       *services.AuthService
	Waste      *services.WasteService
	Stats      *services.StatsService
	Volunteers *services.VolunteerService
	Chat       *services.ChatService
	// Reports may be nil.
	Reports *services.ReportService
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "wastetrack",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          handlers.ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	registerRoutes(app, d)
	return app
}

func registerRoutes(app *fiber.App, d Deps) {
	authHandler := &handlers.AuthHandler{Auth: d.Auth}
	adminHandler := &handlers.AdminHandler{Auth: d.Auth, Volunteers: d.Volunteers}
	wasteHandler := &handlers.WasteHandler{Waste: d.Waste}
	statsHandler := &handlers.StatsHandler{Stats: d.Stats, Reports: d.Reports}
	chatHandler := &handlers.ChatHandler{Chat: d.Chat}

	authenticated := middleware.AuthMiddleware(d.Auth)
	adminOnly := middleware.AdminOnly()

	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Get("/me", authenticated, authHandler.Me)
	auth.Get("/users", authenticated, adminOnly, adminHandler.ListUsers)
	auth.Get("/users/all", authenticated, adminOnly, adminHandler.ListUsers)
	auth.Post("/users", authenticated, adminOnly, adminHandler.CreateUser)
	auth.Put("/users/:id/password", authenticated, adminOnly, adminHandler.ResetPassword)
	auth.Put("/users/change-password/:id", authenticated, adminOnly, adminHandler.ResetPassword)

	// Waste Routes
	waste := api.Group("/waste")
	waste.Get("/", wasteHandler.List)
	waste.Post("/", authenticated, wasteHandler.Create)
	waste.Put("/:id", authenticated, wasteHandler.Update)
	waste.Delete("/:id", authenticated, middleware.RequireRoles(models.DeletingRoles...), wasteHandler.Delete)

	// Stats Routes
	stats := api.Group("/stats")
	stats.Get("/summary", statsHandler.Summary)
	stats.Get("/dynamic", statsHandler.Summary)
	stats.Post("/reports", authenticated, middleware.RequireRoles(models.RoleAdmin, models.RoleManager), statsHandler.ExportReport)

	// Volunteer Routes
	users := api.Group("/users", authenticated, adminOnly)
	users.Get("/pending-volunteers", adminHandler.PendingVolunteers)
	users.Put("/:id/approve", adminHandler.ApproveVolunteer)
	users.Put("/approve-volunteer/:id", adminHandler.ApproveVolunteer)
	users.Put("/:id/reset-password", adminHandler.ResetPassword)

	api.Post("/chat", chatHandler.Reply)
}
