package forecast

import (
	"errors"
	"fmt"
)

// InsufficientDataError reports that a product's sales history is
// shorter than the minimum an operation needs (14 days for forecasts,
// 30 for trend detection and training).
type InsufficientDataError struct {
	ProductID string
	Points    int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient sales history for product %s: %d points, need at least %d",
		e.ProductID, e.Points, e.Required)
}

// ModelNotTrainedError reports that accuracy metrics were requested
// before TrainModel ran for the product.
type ModelNotTrainedError struct {
	ProductID string
}

func (e *ModelNotTrainedError) Error() string {
	return fmt.Sprintf("no trained model for product %s", e.ProductID)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}

// IsModelNotTrained reports whether err is a ModelNotTrainedError.
func IsModelNotTrained(err error) bool {
	var mnt *ModelNotTrainedError
	return errors.As(err, &mnt)
}
