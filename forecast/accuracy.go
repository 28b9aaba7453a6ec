package forecast

import (
	"context"
	"math"

	"app/models"
)

// Fraction of the history used for training; the chronological
// remainder is held out for scoring.
const trainSplitRatio = 0.8

// TrainModel measures forecast accuracy for a product by holding out
// the most recent 20% of its last-180-day history, forecasting it from
// the preceding 80%, and scoring MAE, MAPE, RMSE and R² against the
// held-out slice. The result overwrites any prior entry for the
// product. Requires at least 30 days of history.
func (e *Engine) TrainModel(ctx context.Context, productID string) error {
	unlock := e.lockProduct(productID)
	defer unlock()

	history, err := e.provider.HistoricalSales(ctx, productID, trainingWindowDays)
	if err != nil {
		return err
	}
	if len(history) < minTrendHistory {
		return &InsufficientDataError{ProductID: productID, Points: len(history), Required: minTrendHistory}
	}

	split := int(float64(len(history)) * trainSplitRatio)
	train, test := history[:split], history[split:]

	fc, err := buildForecast(productID, "", train, len(test), e.now())
	if err != nil {
		return err
	}

	predicted := make([]float64, len(test))
	actual := make([]float64, len(test))
	for i := range test {
		predicted[i] = float64(fc.Forecast[i].Quantity)
		actual[i] = float64(test[i].Quantity)
	}

	accuracy := models.ModelAccuracy{
		ProductID:   productID,
		MAPE:        meanAbsolutePercentageError(actual, predicted),
		RMSE:        rootMeanSquareError(actual, predicted),
		MAE:         meanAbsoluteError(actual, predicted),
		R2:          rSquared(actual, predicted),
		TrainedOn:   len(history),
		LastTrained: e.now(),
	}

	e.accMu.Lock()
	e.accuracy[productID] = accuracy
	e.accMu.Unlock()

	return nil
}

// ModelAccuracy returns the stored accuracy metrics for a product, or
// ModelNotTrainedError when TrainModel has not run for it.
func (e *Engine) ModelAccuracy(productID string) (*models.ModelAccuracy, error) {
	e.accMu.RLock()
	accuracy, ok := e.accuracy[productID]
	e.accMu.RUnlock()
	if !ok {
		return nil, &ModelNotTrainedError{ProductID: productID}
	}
	return &accuracy, nil
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// meanAbsolutePercentageError skips days with zero actual sales, where
// percentage error is undefined.
func meanAbsolutePercentageError(actual, predicted []float64) float64 {
	var sum float64
	var count int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / actual[i] * 100
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func rootMeanSquareError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// rSquared is clamped into [0, 1]; a constant held-out slice scores 0.
func rSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	m := mean(actual)
	var ssRes, ssTot float64
	for i := range actual {
		ssRes += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
		ssTot += (actual[i] - m) * (actual[i] - m)
	}
	if ssTot == 0 {
		return 0
	}
	return clamp(1-ssRes/ssTot, 0, 1)
}
