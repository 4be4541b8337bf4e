package routes

import (
	"time"

	"github.com/David-999-david/man-app-server/handlers"
	"github.com/David-999-david/man-app-server/middleware"
	"github.com/David-999-david/man-app-server/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Todo    *handlers.TodoHandler
	Address *handlers.AddressHandler
}

func Register(app *fiber.App, tokens *services.TokenService, h Handlers) {
	api := app.Group("/api")

	// 10 requests per 15 minutes per IP on the OTP endpoints, matching the
	// limiter on the old backend
	otpLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 15 * time.Minute,
	})

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/signin", h.Auth.SignIn)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/forgot-password", otpLimiter, h.Auth.RequestPasswordReset)
	auth.Post("/verify-otp", otpLimiter, h.Auth.VerifyResetCode)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	requireAuth := middleware.RequireAuth(tokens)

	auth.Get("/me", requireAuth, h.Auth.Profile)

	// Users
	api.Post("/users/avatar", requireAuth, h.User.UploadAvatar)

	// Todos CRUD
	todos := api.Group("/todos", requireAuth)
	todos.Post("/", h.Todo.Create)
	todos.Get("/", h.Todo.List)
	todos.Get("/:id", h.Todo.GetByID)
	todos.Put("/:id", h.Todo.Update)
	todos.Delete("/:id", h.Todo.Delete)
	todos.Delete("/", h.Todo.DeleteMany)

	// Addresses CRUD
	addresses := api.Group("/addresses", requireAuth)
	addresses.Post("/", h.Address.Create)
	addresses.Get("/", h.Address.List)
	addresses.Get("/:id", h.Address.GetByID)
	addresses.Put("/:id", h.Address.Update)
	addresses.Delete("/:id", h.Address.Delete)
}
