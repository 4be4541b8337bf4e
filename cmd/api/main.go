package main

import (
	"context"
	"log"
	"os"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/handlers"
	"github.com/David-999-david/man-app-server/routes"
	"github.com/David-999-david/man-app-server/services"
	"github.com/David-999-david/man-app-server/utils/mailer"
	"github.com/David-999-david/man-app-server/utils/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	if err := config.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db := config.ConnectDB()

	storageClient, err := storage.NewClient(context.Background(), config.LoadStorageConfig())
	if err != nil {
		log.Fatalf("storage error: %v", err)
	}

	mailClient := mailer.NewClient(config.LoadEmailConfig())

	authCfg := config.LoadAuthConfig()
	tokens := services.NewTokenService(db, config.LoadJWTConfig())

	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(
			services.NewAuthService(db, tokens, authCfg),
			services.NewResetService(db, tokens, mailClient, authCfg),
		),
		User:    handlers.NewUserHandler(services.NewUserService(db, storageClient)),
		Todo:    handlers.NewTodoHandler(services.NewTodoService(db)),
		Address: handlers.NewAddressHandler(services.NewAddressService(db, storageClient)),
	}

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	routes.Register(app, tokens, h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 API running on :" + port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
