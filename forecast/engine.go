package forecast

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"app/models"
)

// History minimums and fetch windows, in days.
const (
	minForecastHistory = 14
	minTrendHistory    = 30

	historyWindowDays  = 365
	trendWindowDays    = 90
	trainingWindowDays = 180

	trendRegressionPoints = 30
	baseWindowPoints      = 7

	defaultCacheSize = 512
)

// A slope is treated as flat when |slope| / average quantity is below
// this ratio.
const trendStableRatio = 0.02

// Engine is the demand-forecasting and purchase-recommendation engine.
// It owns its forecast and model-accuracy caches, so separate tenants
// and tests get separate instances. Computation for the same product is
// serialized per product ID; different products may run concurrently.
type Engine struct {
	provider SalesDataProvider
	now      func() time.Time

	cache *lru.Cache[string, *models.DemandForecast]

	accMu    sync.RWMutex
	accuracy map[string]models.ModelAccuracy

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now". Tests use this to
// pin forecast dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCacheSize bounds the in-process forecast cache.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		if cache, err := lru.New[string, *models.DemandForecast](size); err == nil {
			e.cache = cache
		}
	}
}

// NewEngine creates an engine backed by the given sales data provider.
func NewEngine(provider SalesDataProvider, opts ...Option) *Engine {
	cache, _ := lru.New[string, *models.DemandForecast](defaultCacheSize)
	e := &Engine{
		provider: provider,
		now:      time.Now,
		cache:    cache,
		accuracy: make(map[string]models.ModelAccuracy),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lockProduct serializes computation for one product ID and returns
// the unlock function.
func (e *Engine) lockProduct(productID string) func() {
	e.locksMu.Lock()
	mu, ok := e.locks[productID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[productID] = mu
	}
	e.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// ForecastDemand generates a fresh day-by-day demand forecast for the
// product and caches it by product ID (last write wins). Fails with
// InsufficientDataError below 14 days of history.
func (e *Engine) ForecastDemand(ctx context.Context, productID string, days int) (*models.DemandForecast, error) {
	unlock := e.lockProduct(productID)
	defer unlock()
	return e.generateForecast(ctx, productID, days)
}

// generateForecast computes and caches a forecast. Callers must hold
// the product lock.
func (e *Engine) generateForecast(ctx context.Context, productID string, days int) (*models.DemandForecast, error) {
	history, err := e.provider.HistoricalSales(ctx, productID, historyWindowDays)
	if err != nil {
		return nil, err
	}

	// Product name is decoration on the forecast; a lookup failure
	// should not sink the computation.
	name, err := e.provider.ProductName(ctx, productID)
	if err != nil {
		name = productID
	}

	fc, err := buildForecast(productID, name, history, days, e.now())
	if err != nil {
		return nil, err
	}

	e.cache.Add(productID, fc)
	return fc, nil
}

// cachedForecast returns today's cached forecast for the product when
// it covers at least the requested horizon, generating and caching one
// otherwise. The recommendation engine and scenario simulator consume
// forecasts through this path.
func (e *Engine) cachedForecast(ctx context.Context, productID string, days int) (*models.DemandForecast, error) {
	unlock := e.lockProduct(productID)
	defer unlock()

	if fc, ok := e.cache.Get(productID); ok {
		if len(fc.Forecast) >= days && sameDay(fc.GeneratedAt, e.now()) {
			return fc, nil
		}
	}
	return e.generateForecast(ctx, productID, days)
}

// ForecastCategory forecasts every product in a category. Products are
// processed concurrently and failures are isolated: a bad product is
// reported in the result's Failures list, never aborts the batch.
func (e *Engine) ForecastCategory(ctx context.Context, categoryID string, days int) (*models.CategoryForecast, error) {
	productIDs, err := e.provider.ProductsInCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	result := &models.CategoryForecast{
		CategoryID: categoryID,
		Results:    make(map[string]*models.DemandForecast, len(productIDs)),
		Failures:   []models.ItemFailure{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, productID := range productIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			fc, err := e.ForecastDemand(ctx, id, days)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("⚠️  [FORECAST] Skipping product %s in category %s: %v", id, categoryID, err)
				result.Failures = append(result.Failures, models.ItemFailure{ProductID: id, Reason: err.Error()})
				return
			}
			result.Results[id] = fc
		}(productID)
	}
	wg.Wait()

	return result, nil
}

// AnalyzeSeasonality detects the dominant seasonal pattern in the
// product's history. With fewer than 90 days it reports pattern "none"
// with zero strength rather than failing.
func (e *Engine) AnalyzeSeasonality(ctx context.Context, productID string) (*models.SeasonalityPattern, error) {
	history, err := e.provider.HistoricalSales(ctx, productID, historyWindowDays)
	if err != nil {
		return nil, err
	}
	pattern := detectSeasonality(history).toPattern(productID)
	return &pattern, nil
}

// DetectTrends fits a trend line over the recent history and
// classifies it as growing, declining or stable. Requires at least 30
// days of history.
func (e *Engine) DetectTrends(ctx context.Context, productID string) (*models.TrendAnalysis, error) {
	history, err := e.provider.HistoricalSales(ctx, productID, trendWindowDays)
	if err != nil {
		return nil, err
	}
	if len(history) < minTrendHistory {
		return nil, &InsufficientDataError{ProductID: productID, Points: len(history), Required: minTrendHistory}
	}

	values := quantities(history)
	reg, err := LinearRegression(values)
	if err != nil {
		return nil, err
	}

	avg := mean(values)
	growthRate := 0.0
	if avg > 0 {
		// Daily relative change, annualized as a percentage.
		growthRate = reg.Slope / avg * 365 * 100
	}

	return &models.TrendAnalysis{
		ProductID:   productID,
		Trend:       classifyTrend(reg.Slope, avg),
		GrowthRate:  growthRate,
		Confidence:  clamp(reg.R2*100, 0, 100),
		DataPoints:  len(history),
		LastUpdated: e.now(),
	}, nil
}

func classifyTrend(slope, avg float64) string {
	if avg > 0 && math.Abs(slope)/avg < trendStableRatio {
		return models.TrendStable
	}
	switch {
	case slope > 0:
		return models.TrendGrowing
	case slope < 0:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func quantities(points []models.HistoricalSalesPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = float64(p.Quantity)
	}
	return values
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
