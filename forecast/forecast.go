package forecast

import (
	"fmt"
	"math"
	"time"

	"app/models"
)

// 95% confidence z-score.
const zScore95 = 1.96

// Factor thresholds.
const (
	trendFactorMinSlope    = 0.01
	seasonalFactorMinLevel = 0.2
	volatilityFactorMinCV  = 0.5
	volatilityImpactCap    = 0.8
)

// buildForecast turns a sales history into a day-by-day forecast:
// a 7-day moving-average base, a trend slope from the last 30 points,
// seasonal multipliers from the dominant detected pattern, and a
// confidence band that widens further into the future.
func buildForecast(productID, productName string, history []models.HistoricalSalesPoint, days int, generatedAt time.Time) (*models.DemandForecast, error) {
	if len(history) < minForecastHistory {
		return nil, &InsufficientDataError{ProductID: productID, Points: len(history), Required: minForecastHistory}
	}
	if days < 1 {
		return nil, fmt.Errorf("forecast horizon must be at least 1 day, got %d", days)
	}

	values := quantities(history)
	base := mean(tail(values, baseWindowPoints))

	reg, err := LinearRegression(tail(values, trendRegressionPoints))
	if err != nil {
		return nil, err
	}

	profile := detectSeasonality(history)
	sd := stdDev(values)
	cv := coefficientOfVariation(values)
	lastDate := history[len(history)-1].Date

	points := make([]models.ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		date := lastDate.AddDate(0, 0, i)

		raw := base + reg.Slope*float64(i)
		if raw < 0 {
			raw = 0
		}
		quantity := int(math.Round(raw * profile.multiplierFor(date)))
		if quantity < 0 {
			quantity = 0
		}

		width := sd * zScore95 * math.Sqrt(1+float64(i)/float64(days))
		points = append(points, models.ForecastPoint{
			Date:     date,
			Quantity: quantity,
			Low:      math.Max(0, float64(quantity)-width),
			High:     float64(quantity) + width,
		})
	}

	confidence := math.Min(100, float64(len(history))/float64(minSeasonalityHistory)*100)
	confidence *= 1 - math.Min(0.5, cv)

	return &models.DemandForecast{
		ProductID:   productID,
		ProductName: productName,
		Period:      periodLabel(days),
		Forecast:    points,
		Confidence:  clamp(confidence, 0, 100),
		Factors:     identifyFactors(reg.Slope, profile, cv),
		GeneratedAt: generatedAt,
	}, nil
}

// identifyFactors attaches qualitative explanations to a forecast.
// Impacts are advisory heuristics; nothing downstream computes with
// them.
func identifyFactors(slope float64, profile seasonalProfile, cv float64) []models.ForecastFactor {
	factors := []models.ForecastFactor{}

	if math.Abs(slope) > trendFactorMinSlope {
		impact := math.Min(1, math.Abs(slope)*10)
		direction := "upward"
		if slope < 0 {
			impact = -impact
			direction = "downward"
		}
		factors = append(factors, models.ForecastFactor{
			Name:        "Sales trend",
			Impact:      impact,
			Description: fmt.Sprintf("Sales show an %s trend of %.2f units per day", direction, slope),
		})
	}

	if profile.pattern != models.PatternNone && profile.strength > seasonalFactorMinLevel {
		factors = append(factors, models.ForecastFactor{
			Name:        "Seasonality",
			Impact:      profile.strength,
			Description: fmt.Sprintf("Demand follows a %s seasonal pattern", profile.pattern),
		})
	}

	if cv > volatilityFactorMinCV {
		factors = append(factors, models.ForecastFactor{
			Name:        "Demand volatility",
			Impact:      -math.Min(volatilityImpactCap, cv),
			Description: fmt.Sprintf("Historical demand is volatile (CV %.2f), reducing forecast reliability", cv),
		})
	}

	return factors
}

func periodLabel(days int) string {
	switch {
	case days <= 7:
		return models.PeriodDay
	case days <= 31:
		return models.PeriodWeek
	default:
		return models.PeriodMonth
	}
}

// tail returns the last n elements, or all of them when fewer exist.
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
