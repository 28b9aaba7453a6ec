package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Forecasting ---

// HistoricalSalesPoint is one day of sales history for a product,
// supplied by the sales data provider. Dates are strictly increasing.
type HistoricalSalesPoint struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

// Forecast period labels.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// ForecastPoint is the predicted demand for a single future day.
// Low/High form a 95%-style confidence band, not a hard guarantee.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
	Low      float64   `json:"low"`
	High     float64   `json:"high"`
}

// ForecastFactor is a qualitative explanatory signal attached to a
// forecast. Impact is a heuristic in [-1, 1], not a calibrated
// probability, and is never used in downstream numeric computation.
type ForecastFactor struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// DemandForecast is a day-by-day demand projection for one product.
type DemandForecast struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Period      string           `json:"period"`
	Forecast    []ForecastPoint  `json:"forecast"`
	Confidence  float64          `json:"confidence"`
	Factors     []ForecastFactor `json:"factors"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// --- Seasonality & trend ---

// Seasonality pattern labels.
const (
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"
	PatternYearly  = "yearly"
	PatternNone    = "none"
)

// SeasonalPeriod pairs a period key with its demand multiplier. The key
// is a weekday number (Sunday = 0), a day of month, or a month name
// depending on the detected pattern.
type SeasonalPeriod struct {
	Period     string  `json:"period"`
	Multiplier float64 `json:"multiplier"`
}

// SeasonalityPattern describes the dominant seasonal structure of a
// product's sales history.
type SeasonalityPattern struct {
	ProductID string           `json:"product_id"`
	Pattern   string           `json:"pattern"`
	Peaks     []SeasonalPeriod `json:"peaks"`
	Troughs   []SeasonalPeriod `json:"troughs"`
	Strength  float64          `json:"strength"`
}

// Trend labels.
const (
	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// TrendAnalysis summarises the direction of a product's sales.
// GrowthRate is an annualized percentage.
type TrendAnalysis struct {
	ProductID   string    `json:"product_id"`
	Trend       string    `json:"trend"`
	GrowthRate  float64   `json:"growth_rate"`
	Confidence  float64   `json:"confidence"`
	DataPoints  int       `json:"data_points"`
	LastUpdated time.Time `json:"last_updated"`
}

// --- Purchasing ---

// Urgency tiers, ordered critical > high > medium > low.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

// PurchaseRecommendation tells a merchant what to reorder and when.
type PurchaseRecommendation struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	SKU                 string          `json:"sku"`
	CurrentStock        int             `json:"current_stock"`
	AvgDailySales       float64         `json:"avg_daily_sales"`
	DaysUntilStockout   float64         `json:"days_until_stockout"`
	RecommendedQuantity int             `json:"recommended_quantity"`
	ReorderPoint        float64         `json:"reorder_point"`
	Urgency             string          `json:"urgency"`
	OptimalOrderDate    time.Time       `json:"optimal_order_date"`
	SupplierLeadTime    int             `json:"supplier_lead_time"`
	EstimatedCost       decimal.Decimal `json:"estimated_cost"`
	EstimatedRevenue    decimal.Decimal `json:"estimated_revenue"`
	ROI                 float64         `json:"roi"`
}

// RecommendationFilters narrows the candidate set for purchase
// recommendations. Zero values mean "no filter".
type RecommendationFilters struct {
	CategoryID string  `json:"category_id,omitempty"`
	SupplierID string  `json:"supplier_id,omitempty"`
	Urgency    string  `json:"urgency,omitempty"`
	MinValue   float64 `json:"min_value,omitempty"`
}

// --- Scenario simulation ---

// Competitor actions accepted by the scenario simulator.
const (
	CompetitorPriceCut   = "price_cut"
	CompetitorPromotion  = "promotion"
	CompetitorOutOfStock = "out_of_stock"
)

// ScenarioInput describes a what-if scenario. Pointer fields are
// optional effects; nil means the effect is not applied.
type ScenarioInput struct {
	ProductID                string   `json:"product_id"`
	PriceChangePercent       *float64 `json:"price_change_percent,omitempty"`
	PromotionDiscountPercent *float64 `json:"promotion_discount_percent,omitempty"`
	CompetitorAction         string   `json:"competitor_action,omitempty"`
}

// ScenarioSimulation projects demand and revenue under a what-if
// scenario. Confidence is a fixed heuristic (70), not a derived
// statistic.
type ScenarioSimulation struct {
	ScenarioName       string          `json:"scenario_name"`
	BaselineSales      float64         `json:"baseline_sales"`
	ProjectedSales     float64         `json:"projected_sales"`
	SalesChange        float64         `json:"sales_change"`
	SalesChangePercent float64         `json:"sales_change_percent"`
	RevenueImpact      decimal.Decimal `json:"revenue_impact"`
	MarginImpact       decimal.Decimal `json:"margin_impact"`
	Confidence         float64         `json:"confidence"`
	Assumptions        []string        `json:"assumptions"`
}

// --- Model accuracy ---

// ModelAccuracy holds cross-validated error metrics for a product's
// forecast model. Entries persist until the model is retrained.
type ModelAccuracy struct {
	ProductID   string    `json:"product_id"`
	MAPE        float64   `json:"mape"`
	RMSE        float64   `json:"rmse"`
	MAE         float64   `json:"mae"`
	R2          float64   `json:"r2"`
	TrainedOn   int       `json:"trained_on"`
	LastTrained time.Time `json:"last_trained"`
}

// --- Batch reports ---

// ItemFailure records a single product's failure inside a batch
// operation.
type ItemFailure struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// CategoryForecast is the partial-failure result of a category-wide
// forecast: per-product forecasts plus the items that were skipped.
type CategoryForecast struct {
	CategoryID string                     `json:"category_id"`
	Results    map[string]*DemandForecast `json:"results"`
	Failures   []ItemFailure              `json:"failures"`
}

// RecommendationReport aggregates purchase recommendations with the
// products that could not be evaluated. Recommendations are pre-sorted
// by urgency, critical first.
type RecommendationReport struct {
	Recommendations []PurchaseRecommendation `json:"recommendations"`
	Failures        []ItemFailure            `json:"failures"`
}

// ForecastInsight is the AI-generated narrative over a computed
// forecast. Advisory text only; nothing downstream consumes it.
type ForecastInsight struct {
	ProductID       string    `json:"product_id"`
	Summary         string    `json:"summary"`
	PositiveFactors []string  `json:"positive_factors"`
	NegativeFactors []string  `json:"negative_factors"`
	GeneratedAt     time.Time `json:"generated_at"`
}
