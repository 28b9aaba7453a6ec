package forecast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainModelLinearHistory(t *testing.T) {
	provider := newMockProvider()
	// Steady growth of one unit per day: the model lags the holdout by a
	// small constant offset, so the error metrics are exactly computable.
	provider.history["p1"] = dailyHistory(testClock.AddDate(0, 0, -1), 60, func(i int) int { return 20 + i })

	engine := newTestEngine(provider)
	require.NoError(t, engine.TrainModel(context.Background(), "p1"))

	accuracy, err := engine.ModelAccuracy("p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", accuracy.ProductID)
	assert.Equal(t, 60, accuracy.TrainedOn)
	assert.True(t, accuracy.LastTrained.Equal(testClock))

	// Holdout is the last 12 days (68..79 actual vs 65..76 predicted).
	assert.InDelta(t, 3, accuracy.MAE, 1e-9)
	assert.InDelta(t, 3, accuracy.RMSE, 1e-9)
	assert.Less(t, accuracy.MAPE, 10.0)
	assert.Greater(t, accuracy.MAPE, 0.0)
	assert.GreaterOrEqual(t, accuracy.R2, 0.0)
	assert.LessOrEqual(t, accuracy.R2, 1.0)
}

func TestTrainModelOverwritesPreviousRun(t *testing.T) {
	provider := newMockProvider()
	provider.history["p1"] = dailyHistory(testClock.AddDate(0, 0, -1), 60, constant(10))

	engine := newTestEngine(provider)
	require.NoError(t, engine.TrainModel(context.Background(), "p1"))
	first, err := engine.ModelAccuracy("p1")
	require.NoError(t, err)

	// Perfect model on constant demand.
	assert.InDelta(t, 0, first.MAE, 1e-9)
	assert.InDelta(t, 0, first.MAPE, 1e-9)

	provider.history["p1"] = dailyHistory(testClock.AddDate(0, 0, -1), 90, func(i int) int { return 20 + i })
	require.NoError(t, engine.TrainModel(context.Background(), "p1"))
	second, err := engine.ModelAccuracy("p1")
	require.NoError(t, err)

	assert.Equal(t, 90, second.TrainedOn)
	assert.Greater(t, second.MAE, 0.0)
}

func TestTrainModelInsufficientHistory(t *testing.T) {
	provider := newMockProvider()
	provider.history["p1"] = dailyHistory(testClock.AddDate(0, 0, -1), 20, constant(10))

	engine := newTestEngine(provider)
	err := engine.TrainModel(context.Background(), "p1")
	assert.True(t, IsInsufficientData(err))
}

func TestModelAccuracyUntrained(t *testing.T) {
	engine := newTestEngine(newMockProvider())
	_, err := engine.ModelAccuracy("never-trained")
	assert.True(t, IsModelNotTrained(err))
}

func TestMeanAbsolutePercentageErrorSkipsZeroActuals(t *testing.T) {
	// Zero-sales days are skipped, not divided by.
	mape := meanAbsolutePercentageError([]float64{0, 100, 0, 50}, []float64{5, 90, 3, 55})
	assert.InDelta(t, 10, mape, 1e-9)

	assert.Equal(t, 0.0, meanAbsolutePercentageError([]float64{0, 0}, []float64{1, 2}))
}

func TestRSquaredConstantActuals(t *testing.T) {
	assert.Equal(t, 0.0, rSquared([]float64{5, 5, 5}, []float64{5, 5, 5}))
}
