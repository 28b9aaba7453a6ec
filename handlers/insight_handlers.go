package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"app/config"
	"app/models"
)

// HandleForecastInsight generates an AI narrative over a product's
// demand forecast using Gemini. The insight is advisory text only; the
// forecast numbers never depend on it.
func HandleForecastInsight(c *fiber.Ctx) error {
	if config.AppConfig.GeminiAPIKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "AI insights are not configured"})
	}

	productID := c.Params("productId")
	ctx := context.Background()

	fc, err := engine.ForecastDemand(ctx, productID, 30)
	if err != nil {
		return respondEngineError(c, "INSIGHT", err)
	}
	// Trend and seasonality enrich the prompt; both are optional.
	trend, _ := engine.DetectTrends(ctx, productID)
	seasonality, _ := engine.AnalyzeSeasonality(ctx, productID)

	prompt := constructInsightPrompt(fc, trend, seasonality)

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to connect to AI service"})
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.5-flash-lite")
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Error from Gemini API: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to generate insight from AI"})
	}

	insight, err := parseInsightResponse(resp, productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": insight})
}

// constructInsightPrompt renders the computed forecast into a prompt
// asking for a minified JSON analysis.
func constructInsightPrompt(fc *models.DemandForecast, trend *models.TrendAnalysis, seasonality *models.SeasonalityPattern) string {
	var sb strings.Builder
	for _, p := range fc.Forecast {
		fmt.Fprintf(&sb, "On %s, %d units are predicted.\n", p.Date.Format("2006-01-02"), p.Quantity)
	}

	trendStr := "unknown"
	if trend != nil {
		trendStr = fmt.Sprintf("%s (%.1f%% annualized)", trend.Trend, trend.GrowthRate)
	}
	seasonalityStr := "unknown"
	if seasonality != nil {
		seasonalityStr = seasonality.Pattern
	}

	jsonFormat := `{"summary":"string","positive_factors":["string",...],"negative_factors":["string",...]}`

	return fmt.Sprintf(`
        You are an expert retail data analyst. Your task is to write a brief analysis of a statistical demand forecast.

        **Analysis Context:**
        - Product Name: %s
        - Forecast Confidence: %.0f/100
        - Detected Trend: %s
        - Detected Seasonality: %s
        - Today's Date: %s

        **30-Day Demand Forecast:**
        %s

        **Required Output:**
        You must provide a single, minified JSON object with the following exact structure. Do not include any markdown formatting, backticks, or explanatory text before or after the JSON object.

        %s
    `, fc.ProductName, fc.Confidence, trendStr, seasonalityStr, time.Now().Format("2006-01-02"), sb.String(), jsonFormat)
}

func extractJSON(rawString string) string {
	start := strings.Index(rawString, "{")
	end := strings.LastIndex(rawString, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return rawString[start : end+1]
}

// parseInsightResponse parses the JSON from Gemini into a structured insight.
func parseInsightResponse(resp *genai.GenerateContentResponse, productID string) (*models.ForecastInsight, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content received from AI")
	}

	var geminiText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			geminiText += string(txt)
		}
	}

	jsonStr := extractJSON(geminiText)
	if jsonStr == "" {
		log.Printf("Could not extract JSON from Gemini response: %s", geminiText)
		return nil, fmt.Errorf("failed to parse AI response format")
	}

	var geminiJSON struct {
		Summary         string   `json:"summary"`
		PositiveFactors []string `json:"positive_factors"`
		NegativeFactors []string `json:"negative_factors"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &geminiJSON); err != nil {
		log.Printf("Error parsing Gemini JSON: %v\nRaw JSON: %s", err, jsonStr)
		return nil, fmt.Errorf("failed to parse AI insight data")
	}

	return &models.ForecastInsight{
		ProductID:       productID,
		Summary:         geminiJSON.Summary,
		PositiveFactors: geminiJSON.PositiveFactors,
		NegativeFactors: geminiJSON.NegativeFactors,
		GeneratedAt:     time.Now(),
	}, nil
}
