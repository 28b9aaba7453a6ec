package forecast

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"app/models"
)

// Reorder math parameters: one week of safety stock, a 30-day order
// horizon, and a sentinel stockout distance for products without
// forecast demand.
const (
	safetyStockDays     = 7
	orderHorizonDays    = 30
	stockoutSentinel    = 999
	avgSalesWindowDays  = 7
	mediumStockMultiple = 1.5
)

var urgencyRank = map[string]int{
	models.UrgencyCritical: 0,
	models.UrgencyHigh:     1,
	models.UrgencyMedium:   2,
	models.UrgencyLow:      3,
}

// PurchaseRecommendations evaluates the candidate products against
// their forecasts and current stock and returns reorder
// recommendations sorted by urgency, critical first. Per-product
// failures are collected in the report, never abort the batch.
func (e *Engine) PurchaseRecommendations(ctx context.Context, filters models.RecommendationFilters) (*models.RecommendationReport, error) {
	productIDs, err := e.candidateProducts(ctx, filters)
	if err != nil {
		return nil, err
	}

	report := &models.RecommendationReport{
		Recommendations: []models.PurchaseRecommendation{},
		Failures:        []models.ItemFailure{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, productID := range productIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rec, err := e.recommendForProduct(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("⚠️  [RECOMMEND] Skipping product %s: %v", id, err)
				report.Failures = append(report.Failures, models.ItemFailure{ProductID: id, Reason: err.Error()})
				return
			}
			if rec != nil {
				report.Recommendations = append(report.Recommendations, *rec)
			}
		}(productID)
	}
	wg.Wait()

	report.Recommendations = applyFilters(report.Recommendations, filters)

	sort.Slice(report.Recommendations, func(i, j int) bool {
		a, b := report.Recommendations[i], report.Recommendations[j]
		if urgencyRank[a.Urgency] != urgencyRank[b.Urgency] {
			return urgencyRank[a.Urgency] < urgencyRank[b.Urgency]
		}
		return a.DaysUntilStockout < b.DaysUntilStockout
	})

	return report, nil
}

// candidateProducts resolves the filter set to product IDs: a category
// filter wins, then a supplier filter, otherwise every product. With
// both set, the category list is narrowed to the supplier's products.
func (e *Engine) candidateProducts(ctx context.Context, filters models.RecommendationFilters) ([]string, error) {
	switch {
	case filters.CategoryID != "" && filters.SupplierID != "":
		inCategory, err := e.provider.ProductsInCategory(ctx, filters.CategoryID)
		if err != nil {
			return nil, err
		}
		bySupplier, err := e.provider.ProductsBySupplier(ctx, filters.SupplierID)
		if err != nil {
			return nil, err
		}
		supplied := make(map[string]bool, len(bySupplier))
		for _, id := range bySupplier {
			supplied[id] = true
		}
		var ids []string
		for _, id := range inCategory {
			if supplied[id] {
				ids = append(ids, id)
			}
		}
		return ids, nil
	case filters.CategoryID != "":
		return e.provider.ProductsInCategory(ctx, filters.CategoryID)
	case filters.SupplierID != "":
		return e.provider.ProductsBySupplier(ctx, filters.SupplierID)
	default:
		return e.provider.AllProducts(ctx)
	}
}

// recommendForProduct computes the reorder recommendation for one
// product, or nil when its stock position does not need one.
func (e *Engine) recommendForProduct(ctx context.Context, productID string) (*models.PurchaseRecommendation, error) {
	stock, err := e.provider.CurrentStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	leadTime, err := e.provider.SupplierLeadTime(ctx, productID)
	if err != nil {
		return nil, err
	}

	fc, err := e.cachedForecast(ctx, productID, orderHorizonDays)
	if err != nil {
		return nil, err
	}

	var avgDailySales float64
	for _, p := range fc.Forecast[:avgSalesWindowDays] {
		avgDailySales += float64(p.Quantity)
	}
	avgDailySales /= avgSalesWindowDays

	daysUntilStockout := float64(stockoutSentinel)
	if avgDailySales > 0 {
		daysUntilStockout = float64(stock) / avgDailySales
	}

	reorderPoint := avgDailySales*float64(leadTime) + avgDailySales*safetyStockDays
	if float64(stock) > reorderPoint && daysUntilStockout > float64(leadTime) {
		return nil, nil
	}

	quantity := int(math.Max(
		math.Ceil(avgDailySales*orderHorizonDays),
		math.Ceil(reorderPoint-float64(stock)),
	))
	if quantity <= 0 {
		return nil, nil
	}

	urgency := models.UrgencyLow
	switch {
	case daysUntilStockout <= float64(leadTime):
		urgency = models.UrgencyCritical
	case daysUntilStockout <= 2*float64(leadTime):
		urgency = models.UrgencyHigh
	case float64(stock) <= mediumStockMultiple*reorderPoint:
		urgency = models.UrgencyMedium
	}

	orderIn := int(math.Max(0, daysUntilStockout-float64(leadTime)-safetyStockDays))
	optimalOrderDate := e.now().Truncate(24 * time.Hour).AddDate(0, 0, orderIn)

	cost, err := e.provider.ProductCost(ctx, productID)
	if err != nil {
		return nil, err
	}
	price, err := e.provider.ProductPrice(ctx, productID)
	if err != nil {
		return nil, err
	}
	sku, err := e.provider.ProductSKU(ctx, productID)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	estimatedCost := cost.Mul(qty)
	estimatedRevenue := price.Mul(qty)

	// ROI stays signed when price is at or below cost; a free product
	// has no meaningful ROI and reports zero.
	roi := 0.0
	if estimatedCost.IsPositive() {
		roi = estimatedRevenue.Sub(estimatedCost).Div(estimatedCost).InexactFloat64() * 100
	}

	return &models.PurchaseRecommendation{
		ProductID:           productID,
		ProductName:         fc.ProductName,
		SKU:                 sku,
		CurrentStock:        stock,
		AvgDailySales:       avgDailySales,
		DaysUntilStockout:   daysUntilStockout,
		RecommendedQuantity: quantity,
		ReorderPoint:        reorderPoint,
		Urgency:             urgency,
		OptimalOrderDate:    optimalOrderDate,
		SupplierLeadTime:    leadTime,
		EstimatedCost:       estimatedCost,
		EstimatedRevenue:    estimatedRevenue,
		ROI:                 roi,
	}, nil
}

func applyFilters(recs []models.PurchaseRecommendation, filters models.RecommendationFilters) []models.PurchaseRecommendation {
	if filters.Urgency == "" && filters.MinValue <= 0 {
		return recs
	}
	minValue := decimal.NewFromFloat(filters.MinValue)
	filtered := recs[:0]
	for _, rec := range recs {
		if filters.Urgency != "" && rec.Urgency != filters.Urgency {
			continue
		}
		if filters.MinValue > 0 && rec.EstimatedCost.LessThan(minValue) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}
