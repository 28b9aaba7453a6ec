package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"app/config"
	"app/database"
	"app/forecast"
	"app/handlers"
	"app/middleware"
	"app/routes"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	// Load configuration
	config.Load()
	if config.AppConfig.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	// Initialize database
	database.InitDB(config.AppConfig.DatabaseURL)
	defer database.CloseDB()

	// Wire the forecasting engine to the Postgres-backed data provider.
	provider := forecast.WithRetry(
		forecast.NewPostgresProvider(database.GetDB()),
		config.AppConfig.ProviderRetries,
		200*time.Millisecond,
		config.AppConfig.ProviderTimeout,
	)
	handlers.Init(forecast.NewEngine(provider))

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())
	app.Use(middleware.RequestLogger)

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
