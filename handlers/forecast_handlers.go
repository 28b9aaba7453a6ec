package handlers

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"app/forecast"
	"app/models"
)

// HandleForecastDemand generates a demand forecast for a product.
func HandleForecastDemand(c *fiber.Ctx) error {
	productID := c.Params("productId")
	days, err := parseDays(c.Query("days", "30"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	log.Printf("📈 [FORECAST] Request - Product: %s, Days: %d", productID, days)

	fc, err := engine.ForecastDemand(context.Background(), productID, days)
	if err != nil {
		return respondEngineError(c, "FORECAST", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fc})
}

// HandleForecastCategory forecasts every product in a category.
// Failed products are reported in the response, not fatal.
func HandleForecastCategory(c *fiber.Ctx) error {
	categoryID := c.Params("categoryId")
	days, err := parseDays(c.Query("days", "30"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	log.Printf("📈 [FORECAST] Category request - Category: %s, Days: %d", categoryID, days)

	result, err := engine.ForecastCategory(context.Background(), categoryID, days)
	if err != nil {
		return respondEngineError(c, "FORECAST", err)
	}

	log.Printf("✅ [FORECAST] Category %s: %d forecasts, %d skipped", categoryID, len(result.Results), len(result.Failures))
	return c.JSON(fiber.Map{"success": true, "data": result})
}

// HandleAnalyzeSeasonality returns the dominant seasonal pattern of a
// product's sales history.
func HandleAnalyzeSeasonality(c *fiber.Ctx) error {
	productID := c.Params("productId")

	pattern, err := engine.AnalyzeSeasonality(context.Background(), productID)
	if err != nil {
		return respondEngineError(c, "SEASONALITY", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": pattern})
}

// HandleDetectTrends returns the trend analysis for a product.
func HandleDetectTrends(c *fiber.Ctx) error {
	productID := c.Params("productId")

	trend, err := engine.DetectTrends(context.Background(), productID)
	if err != nil {
		return respondEngineError(c, "TRENDS", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": trend})
}

// HandleTrainModel trains and scores the forecast model for a product.
func HandleTrainModel(c *fiber.Ctx) error {
	productID := c.Params("productId")

	log.Printf("🎯 [TRAIN] Request - Product: %s", productID)

	if err := engine.TrainModel(context.Background(), productID); err != nil {
		return respondEngineError(c, "TRAIN", err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Model trained"})
}

// HandleGetModelAccuracy returns stored accuracy metrics for a product.
func HandleGetModelAccuracy(c *fiber.Ctx) error {
	productID := c.Params("productId")

	accuracy, err := engine.ModelAccuracy(productID)
	if err != nil {
		return respondEngineError(c, "ACCURACY", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": accuracy})
}

// HandleGetPurchaseRecommendations returns reorder recommendations,
// sorted by urgency.
func HandleGetPurchaseRecommendations(c *fiber.Ctx) error {
	filters := models.RecommendationFilters{
		CategoryID: c.Query("categoryId"),
		SupplierID: c.Query("supplierId"),
		Urgency:    c.Query("urgency"),
	}

	if filters.Urgency != "" {
		switch filters.Urgency {
		case models.UrgencyCritical, models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid urgency filter"})
		}
	}
	if raw := c.Query("minValue"); raw != "" {
		minValue, err := strconv.ParseFloat(raw, 64)
		if err != nil || minValue < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid minValue filter"})
		}
		filters.MinValue = minValue
	}

	log.Printf("🛒 [RECOMMEND] Request - Category: %q, Supplier: %q, Urgency: %q, MinValue: %.2f",
		filters.CategoryID, filters.SupplierID, filters.Urgency, filters.MinValue)

	report, err := engine.PurchaseRecommendations(context.Background(), filters)
	if err != nil {
		return respondEngineError(c, "RECOMMEND", err)
	}

	log.Printf("✅ [RECOMMEND] Returning %d recommendations, %d skipped", len(report.Recommendations), len(report.Failures))
	return c.JSON(fiber.Map{"success": true, "data": report})
}

// HandleSimulateScenario projects demand under a what-if scenario.
func HandleSimulateScenario(c *fiber.Ctx) error {
	var input models.ScenarioInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if input.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "product_id is required"})
	}
	if input.CompetitorAction != "" {
		switch input.CompetitorAction {
		case models.CompetitorPriceCut, models.CompetitorPromotion, models.CompetitorOutOfStock:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid competitor action"})
		}
	}

	simulation, err := engine.SimulateScenario(context.Background(), input)
	if err != nil {
		return respondEngineError(c, "SCENARIO", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": simulation})
}

// parseDays validates the forecast horizon query parameter.
func parseDays(raw string) (int, error) {
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 365 {
		return 0, &fiber.Error{Code: fiber.StatusBadRequest, Message: "days must be an integer between 1 and 365"}
	}
	return days, nil
}

// respondEngineError maps engine errors onto HTTP statuses: thin data
// is 422, an untrained model is 404, everything else is a 500.
func respondEngineError(c *fiber.Ctx, tag string, err error) error {
	switch {
	case forecast.IsInsufficientData(err):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"success": false, "message": err.Error()})
	case forecast.IsModelNotTrained(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": err.Error()})
	default:
		log.Printf("❌ [%s] %v", tag, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Internal error"})
	}
}
