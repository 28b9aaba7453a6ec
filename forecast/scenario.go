package forecast

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"app/models"
)

// Heuristic scenario coefficients: a fixed price elasticity of -1.5, a
// 2.5x promotion uplift per discount percent, and flat multipliers for
// competitor moves.
const (
	priceElasticity    = -1.5
	promotionUplift    = 2.5
	scenarioConfidence = 70 // fixed heuristic, not statistically derived
)

var competitorMultipliers = map[string]float64{
	models.CompetitorPriceCut:   0.85,
	models.CompetitorPromotion:  0.90,
	models.CompetitorOutOfStock: 1.25,
}

// SimulateScenario projects demand and revenue under a what-if
// scenario by applying multiplicative adjustments to a 30-day baseline
// forecast. The reported confidence is a fixed heuristic (70); treat
// it as advisory, not a derived statistic.
func (e *Engine) SimulateScenario(ctx context.Context, input models.ScenarioInput) (*models.ScenarioSimulation, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("scenario requires a product id")
	}
	if input.CompetitorAction != "" {
		if _, ok := competitorMultipliers[input.CompetitorAction]; !ok {
			return nil, fmt.Errorf("unknown competitor action %q", input.CompetitorAction)
		}
	}

	fc, err := e.cachedForecast(ctx, input.ProductID, orderHorizonDays)
	if err != nil {
		return nil, err
	}

	var baseline float64
	for _, p := range fc.Forecast[:orderHorizonDays] {
		baseline += float64(p.Quantity)
	}

	multiplier := 1.0
	var names, assumptions []string

	if input.PriceChangePercent != nil {
		change := *input.PriceChangePercent
		multiplier *= 1 + (priceElasticity*change)/100
		names = append(names, fmt.Sprintf("price %+.0f%%", change))
		assumptions = append(assumptions, fmt.Sprintf(
			"Price change of %+.1f%% with an assumed elasticity of %.1f", change, priceElasticity))
	}
	if input.PromotionDiscountPercent != nil {
		discount := *input.PromotionDiscountPercent
		multiplier *= 1 + (promotionUplift*discount)/100
		names = append(names, fmt.Sprintf("promotion %.0f%% off", discount))
		assumptions = append(assumptions, fmt.Sprintf(
			"Promotion discount of %.1f%% with an assumed uplift factor of %.1f", discount, promotionUplift))
	}
	if input.CompetitorAction != "" {
		m := competitorMultipliers[input.CompetitorAction]
		multiplier *= m
		names = append(names, "competitor "+input.CompetitorAction)
		assumptions = append(assumptions, fmt.Sprintf(
			"Competitor %s shifts demand by a factor of %.2f", input.CompetitorAction, m))
	}
	if multiplier < 0 {
		multiplier = 0
	}

	projected := baseline * multiplier
	salesChange := projected - baseline
	salesChangePercent := 0.0
	if baseline > 0 {
		salesChangePercent = salesChange / baseline * 100
	}

	price, err := e.provider.ProductPrice(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	cost, err := e.provider.ProductCost(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	adjustedPrice := price
	if input.PriceChangePercent != nil {
		factor := decimal.NewFromFloat(1 + *input.PriceChangePercent/100)
		adjustedPrice = price.Mul(factor)
	}

	baselineQty := decimal.NewFromFloat(baseline)
	projectedQty := decimal.NewFromFloat(projected)
	revenueImpact := adjustedPrice.Mul(projectedQty).Sub(price.Mul(baselineQty))
	marginImpact := adjustedPrice.Sub(cost).Mul(projectedQty).Sub(price.Sub(cost).Mul(baselineQty))

	name := "baseline"
	if len(names) > 0 {
		name = strings.Join(names, ", ")
	}

	return &models.ScenarioSimulation{
		ScenarioName:       name,
		BaselineSales:      baseline,
		ProjectedSales:     projected,
		SalesChange:        salesChange,
		SalesChangePercent: salesChangePercent,
		RevenueImpact:      revenueImpact,
		MarginImpact:       marginImpact,
		Confidence:         scenarioConfidence,
		Assumptions:        assumptions,
	}, nil
}
