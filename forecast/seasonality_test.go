package forecast

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/models"
)

func TestDetectSeasonalityShortHistory(t *testing.T) {
	history := dailyHistory(testClock, 60, constant(10))
	profile := detectSeasonality(history)
	assert.Equal(t, models.PatternNone, profile.pattern)
	assert.Equal(t, 0.0, profile.strength)
}

func TestDetectSeasonalityConstantHistory(t *testing.T) {
	history := dailyHistory(testClock, 120, constant(10))
	profile := detectSeasonality(history)
	assert.Equal(t, models.PatternNone, profile.pattern)
}

func TestDetectSeasonalityMonthlySpike(t *testing.T) {
	// Demand spikes on the first of each month.
	history := dailyHistory(testClock, 120, constant(10))
	for i := range history {
		if history[i].Date.Day() == 1 {
			history[i].Quantity = 50
		}
	}

	profile := detectSeasonality(history)
	require.Equal(t, models.PatternMonthly, profile.pattern)
	assert.Greater(t, profile.strength, monthlyMinStrength)
	assert.Greater(t, profile.multipliers[1], 1.0)
}

func TestDetectSeasonalityYearlySpike(t *testing.T) {
	// December sells 4x; over a full year this dominates.
	history := dailyHistory(testClock, 400, constant(10))
	for i := range history {
		if history[i].Date.Month() == time.December {
			history[i].Quantity = 40
		}
	}

	profile := detectSeasonality(history)
	require.Equal(t, models.PatternYearly, profile.pattern)
	assert.Greater(t, profile.strength, yearlyMinStrength)

	pattern := profile.toPattern("p1")
	require.NotEmpty(t, pattern.Peaks)
	assert.Equal(t, "December", pattern.Peaks[0].Period)
	assert.Greater(t, pattern.Peaks[0].Multiplier, yearlyPeak)
}

func TestDetectSeasonalityYearlyNeedsFullYear(t *testing.T) {
	// Same December spike but only ~4 months of data: yearly is not
	// eligible without a full year of span.
	history := dailyHistory(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 120, constant(10))
	for i := range history {
		if history[i].Date.Month() == time.December {
			history[i].Quantity = 40
		}
	}

	profile := detectSeasonality(history)
	assert.NotEqual(t, models.PatternYearly, profile.pattern)
}

func TestDetectSeasonalityWeekendPattern(t *testing.T) {
	// Weekends sell 2x across 120 days: the weekly grouping must win
	// the dominant-pattern selection, not the monthly one.
	history := dailyHistory(testClock, 120, constant(10))
	for i := range history {
		wd := history[i].Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			history[i].Quantity = 20
		}
	}

	profile := detectSeasonality(history)
	require.Equal(t, models.PatternWeekly, profile.pattern)
	assert.Greater(t, profile.strength, weeklyMinStrength)

	pattern := profile.toPattern("p1")
	assert.Equal(t, models.PatternWeekly, pattern.Pattern)

	periods := make([]string, 0, len(pattern.Peaks))
	for _, peak := range pattern.Peaks {
		periods = append(periods, peak.Period)
		assert.Greater(t, peak.Multiplier, weeklyPeak)
	}
	assert.Contains(t, periods, strconv.Itoa(int(time.Saturday)))
	assert.Contains(t, periods, strconv.Itoa(int(time.Sunday)))
}

func TestBucketMultipliersWeekendPattern(t *testing.T) {
	// Weekends sell 3x across 20 full weeks.
	history := dailyHistory(testClock, 140, constant(10))
	for i := range history {
		wd := history[i].Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			history[i].Quantity = 30
		}
	}

	overall := historyMean(history)
	multipliers, strength := bucketMultipliers(history, overall, func(d time.Time) int { return int(d.Weekday()) })

	assert.Greater(t, strength, weeklyMinStrength)
	assert.Greater(t, multipliers[int(time.Saturday)], weeklyPeak)
	assert.Greater(t, multipliers[int(time.Sunday)], weeklyPeak)
	assert.Less(t, multipliers[int(time.Wednesday)], weeklyTrough)
}

func TestSeasonalProfileMultiplierFor(t *testing.T) {
	profile := seasonalProfile{
		pattern:     models.PatternWeekly,
		strength:    0.5,
		multipliers: map[int]float64{int(time.Saturday): 1.8},
	}

	saturday := time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, saturday.Weekday())
	require.Equal(t, time.Monday, monday.Weekday())

	assert.InDelta(t, 1.8, profile.multiplierFor(saturday), 1e-9)
	// Buckets never seen in history fall back to neutral.
	assert.InDelta(t, 1.0, profile.multiplierFor(monday), 1e-9)

	none := seasonalProfile{pattern: models.PatternNone}
	assert.InDelta(t, 1.0, none.multiplierFor(saturday), 1e-9)
}

func TestAnalyzeSeasonalityDegradesOnThinHistory(t *testing.T) {
	provider := newMockProvider()
	provider.history["p1"] = dailyHistory(testClock.AddDate(0, 0, -1), 30, constant(10))

	engine := newTestEngine(provider)
	pattern, err := engine.AnalyzeSeasonality(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, models.PatternNone, pattern.Pattern)
	assert.Equal(t, 0.0, pattern.Strength)
	assert.Empty(t, pattern.Peaks)
	assert.Empty(t, pattern.Troughs)
}
