package routes

import (
	"app/handlers"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Forecasting ---
	forecast := api.Group("/forecast")
	forecast.Get("/products/:productId", handlers.HandleForecastDemand)
	forecast.Get("/products/:productId/insight", handlers.HandleForecastInsight)
	forecast.Get("/products/:productId/seasonality", handlers.HandleAnalyzeSeasonality)
	forecast.Get("/products/:productId/trends", handlers.HandleDetectTrends)
	forecast.Post("/products/:productId/train", handlers.HandleTrainModel)
	forecast.Get("/products/:productId/accuracy", handlers.HandleGetModelAccuracy)
	forecast.Get("/categories/:categoryId", handlers.HandleForecastCategory)

	// --- Purchasing ---
	api.Get("/recommendations/purchase", handlers.HandleGetPurchaseRecommendations)

	// --- Scenarios ---
	api.Post("/scenarios/simulate", handlers.HandleSimulateScenario)
}
