package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/forecast"
	"app/models"
)

// stubProvider serves one product ("p1") with 60 days of steady sales
// and one product ("thin") with almost none.
type stubProvider struct{}

func (stubProvider) HistoricalSales(_ context.Context, productID string, days int) ([]models.HistoricalSalesPoint, error) {
	n := 60
	if productID == "thin" {
		n = 3
	}
	if n > days {
		n = days
	}
	points := make([]models.HistoricalSalesPoint, n)
	start := time.Now().AddDate(0, 0, -n)
	for i := range points {
		points[i] = models.HistoricalSalesPoint{Date: start.AddDate(0, 0, i), Quantity: 10}
	}
	return points, nil
}

func (stubProvider) CurrentStock(context.Context, string) (int, error)      { return 0, nil }
func (stubProvider) SupplierLeadTime(context.Context, string) (int, error)  { return 7, nil }
func (stubProvider) ProductName(context.Context, string) (string, error)    { return "Milk 1L", nil }
func (stubProvider) ProductSKU(context.Context, string) (string, error)     { return "SKU-1", nil }
func (stubProvider) AllProducts(context.Context) ([]string, error)          { return []string{"p1"}, nil }
func (stubProvider) ProductsInCategory(context.Context, string) ([]string, error) {
	return []string{"p1"}, nil
}
func (stubProvider) ProductsBySupplier(context.Context, string) ([]string, error) {
	return []string{"p1"}, nil
}
func (stubProvider) ProductCost(context.Context, string) (decimal.Decimal, error) {
	return decimal.NewFromInt(5), nil
}
func (stubProvider) ProductPrice(context.Context, string) (decimal.Decimal, error) {
	return decimal.NewFromInt(8), nil
}

func newTestApp() *fiber.App {
	Init(forecast.NewEngine(stubProvider{}))

	app := fiber.New()
	api := app.Group("/api/v1")
	fc := api.Group("/forecast")
	fc.Get("/products/:productId", HandleForecastDemand)
	fc.Get("/products/:productId/seasonality", HandleAnalyzeSeasonality)
	fc.Get("/products/:productId/trends", HandleDetectTrends)
	fc.Post("/products/:productId/train", HandleTrainModel)
	fc.Get("/products/:productId/accuracy", HandleGetModelAccuracy)
	fc.Get("/categories/:categoryId", HandleForecastCategory)
	api.Get("/recommendations/purchase", HandleGetPurchaseRecommendations)
	api.Post("/scenarios/simulate", HandleSimulateScenario)
	return app
}

func decodeEnvelope(t *testing.T, resp io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func TestHandleForecastDemandOK(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/forecast/products/p1?days=14", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeEnvelope(t, resp.Body)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", data["product_id"])
	points, ok := data["forecast"].([]any)
	require.True(t, ok)
	assert.Len(t, points, 14)
}

func TestHandleForecastDemandInvalidDays(t *testing.T) {
	app := newTestApp()

	for _, days := range []string{"abc", "0", "-3", "400"} {
		req := httptest.NewRequest("GET", "/api/v1/forecast/products/p1?days="+days, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, "days=%s", days)
	}
}

func TestHandleForecastDemandThinHistory(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/forecast/products/thin", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)

	body := decodeEnvelope(t, resp.Body)
	assert.Equal(t, false, body["success"])
}

func TestHandleForecastCategoryOK(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/forecast/categories/drinks", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleGetModelAccuracyLifecycle(t *testing.T) {
	app := newTestApp()

	// Untrained product: 404.
	req := httptest.NewRequest("GET", "/api/v1/forecast/products/p1/accuracy", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	// Train, then the accuracy becomes available.
	req = httptest.NewRequest("POST", "/api/v1/forecast/products/p1/train", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/v1/forecast/products/p1/accuracy", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeEnvelope(t, resp.Body)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", data["product_id"])
}

func TestHandleGetPurchaseRecommendationsInvalidFilters(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/recommendations/purchase?urgency=panic", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/v1/recommendations/purchase?minValue=-5", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleGetPurchaseRecommendationsOK(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/recommendations/purchase", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeEnvelope(t, resp.Body)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	// Stock is zero in the stub, so the product needs reordering.
	recs, ok := data["recommendations"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, recs)
}

func TestHandleSimulateScenarioValidation(t *testing.T) {
	app := newTestApp()

	cases := []string{
		`not json`,
		`{}`,
		`{"product_id":"p1","competitor_action":"teleport"}`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest("POST", "/api/v1/scenarios/simulate", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, "payload=%s", payload)
	}
}

func TestHandleSimulateScenarioOK(t *testing.T) {
	app := newTestApp()

	payload := `{"product_id":"p1","promotion_discount_percent":20}`
	req := httptest.NewRequest("POST", "/api/v1/scenarios/simulate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeEnvelope(t, resp.Body)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 50, data["sales_change_percent"].(float64), 1e-6)
}
