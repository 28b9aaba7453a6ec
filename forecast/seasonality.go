package forecast

import (
	"sort"
	"strconv"
	"time"

	"app/models"
)

// Seasonality needs at least 90 days of history; below that the
// detector degrades to "none" instead of erroring.
const minSeasonalityHistory = 90

// Peak/trough multiplier thresholds per grouping.
const (
	weeklyPeak    = 1.10
	weeklyTrough  = 0.90
	monthlyPeak   = 1.15
	monthlyTrough = 0.85
	yearlyPeak    = 1.20
	yearlyTrough  = 0.80
)

// Dominant-pattern strength minimums, checked in priority order
// yearly > monthly > weekly.
const (
	yearlyMinStrength  = 0.3
	monthlyMinStrength = 0.2
	weeklyMinStrength  = 0.15
)

// seasonalProfile is the detector's internal result: the dominant
// pattern plus per-bucket demand multipliers, used both to build the
// public SeasonalityPattern and to scale forecast points.
type seasonalProfile struct {
	pattern     string
	strength    float64
	multipliers map[int]float64
}

// multiplierFor returns the seasonal multiplier for a future date.
// A "none" profile, or a bucket never seen in history, is a no-op.
func (p seasonalProfile) multiplierFor(date time.Time) float64 {
	var key int
	switch p.pattern {
	case models.PatternWeekly:
		key = int(date.Weekday())
	case models.PatternMonthly:
		key = date.Day()
	case models.PatternYearly:
		key = int(date.Month())
	default:
		return 1
	}
	if m, ok := p.multipliers[key]; ok && m > 0 {
		return m
	}
	return 1
}

// detectSeasonality scores weekly, monthly and yearly groupings of the
// history and picks the dominant one. Yearly is only eligible with a
// full year of data.
func detectSeasonality(points []models.HistoricalSalesPoint) seasonalProfile {
	none := seasonalProfile{pattern: models.PatternNone}
	if len(points) < minSeasonalityHistory {
		return none
	}

	overall := historyMean(points)
	if overall == 0 {
		return none
	}

	weekly, weeklyStrength := bucketMultipliers(points, overall, func(d time.Time) int { return int(d.Weekday()) })
	monthly, monthlyStrength := bucketMultipliers(points, overall, func(d time.Time) int { return d.Day() })

	span := points[len(points)-1].Date.Sub(points[0].Date)
	yearlyEligible := span >= 365*24*time.Hour

	if yearlyEligible {
		yearly, yearlyStrength := bucketMultipliers(points, overall, func(d time.Time) int { return int(d.Month()) })
		if yearlyStrength > yearlyMinStrength {
			return seasonalProfile{pattern: models.PatternYearly, strength: yearlyStrength, multipliers: yearly}
		}
	}
	if monthlyStrength > monthlyMinStrength {
		return seasonalProfile{pattern: models.PatternMonthly, strength: monthlyStrength, multipliers: monthly}
	}
	if weeklyStrength > weeklyMinStrength {
		return seasonalProfile{pattern: models.PatternWeekly, strength: weeklyStrength, multipliers: weekly}
	}
	return none
}

// bucketMultipliers computes each bucket's mean quantity relative to
// the overall mean. Strength is min(1, stddev(bucket means) / overall).
func bucketMultipliers(points []models.HistoricalSalesPoint, overall float64, keyFn func(time.Time) int) (map[int]float64, float64) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range points {
		key := keyFn(p.Date)
		sums[key] += float64(p.Quantity)
		counts[key]++
	}

	multipliers := make(map[int]float64, len(sums))
	means := make([]float64, 0, len(sums))
	for key, sum := range sums {
		bucketMean := sum / float64(counts[key])
		multipliers[key] = bucketMean / overall
		means = append(means, bucketMean)
	}

	strength := clamp(stdDev(means)/overall, 0, 1)
	return multipliers, strength
}

// pattern renders the profile as the public SeasonalityPattern,
// flagging buckets past the peak/trough thresholds for its grouping.
func (p seasonalProfile) toPattern(productID string) models.SeasonalityPattern {
	result := models.SeasonalityPattern{
		ProductID: productID,
		Pattern:   p.pattern,
		Peaks:     []models.SeasonalPeriod{},
		Troughs:   []models.SeasonalPeriod{},
		Strength:  p.strength,
	}
	if p.pattern == models.PatternNone {
		return result
	}

	var peakAt, troughAt float64
	switch p.pattern {
	case models.PatternWeekly:
		peakAt, troughAt = weeklyPeak, weeklyTrough
	case models.PatternMonthly:
		peakAt, troughAt = monthlyPeak, monthlyTrough
	case models.PatternYearly:
		peakAt, troughAt = yearlyPeak, yearlyTrough
	}

	for key, mult := range p.multipliers {
		period := p.periodLabel(key)
		if mult > peakAt {
			result.Peaks = append(result.Peaks, models.SeasonalPeriod{Period: period, Multiplier: mult})
		} else if mult < troughAt {
			result.Troughs = append(result.Troughs, models.SeasonalPeriod{Period: period, Multiplier: mult})
		}
	}

	// Strongest effects first.
	sort.Slice(result.Peaks, func(i, j int) bool { return result.Peaks[i].Multiplier > result.Peaks[j].Multiplier })
	sort.Slice(result.Troughs, func(i, j int) bool { return result.Troughs[i].Multiplier < result.Troughs[j].Multiplier })

	return result
}

// periodLabel keys weekly patterns by weekday number (Sunday = 0),
// monthly by day of month, and yearly by month name.
func (p seasonalProfile) periodLabel(key int) string {
	if p.pattern == models.PatternYearly {
		return time.Month(key).String()
	}
	return strconv.Itoa(key)
}

func historyMean(points []models.HistoricalSalesPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += float64(p.Quantity)
	}
	return sum / float64(len(points))
}
