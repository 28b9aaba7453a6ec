package forecast

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"app/models"
)

// SalesDataProvider is the engine's port to the surrounding sales and
// inventory system. Every call is fallible and latency-bearing; the
// production implementation hits Postgres, tests use an in-memory
// mock. Historical sales are returned in ascending date order, one
// point per calendar day with recorded sales.
type SalesDataProvider interface {
	HistoricalSales(ctx context.Context, productID string, days int) ([]models.HistoricalSalesPoint, error)
	CurrentStock(ctx context.Context, productID string) (int, error)
	SupplierLeadTime(ctx context.Context, productID string) (int, error)
	ProductCost(ctx context.Context, productID string) (decimal.Decimal, error)
	ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error)
	ProductName(ctx context.Context, productID string) (string, error)
	ProductSKU(ctx context.Context, productID string) (string, error)
	ProductsInCategory(ctx context.Context, categoryID string) ([]string, error)
	ProductsBySupplier(ctx context.Context, supplierID string) ([]string, error)
	AllProducts(ctx context.Context) ([]string, error)
}

// retryProvider decorates a SalesDataProvider with a per-call deadline
// and bounded retry with linear backoff. Context cancellation is never
// retried.
type retryProvider struct {
	inner    SalesDataProvider
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

// WithRetry wraps provider so that each call runs under timeout and is
// retried up to attempts times, waiting backoff, 2*backoff, ... between
// tries.
func WithRetry(provider SalesDataProvider, attempts int, backoff, timeout time.Duration) SalesDataProvider {
	if attempts < 1 {
		attempts = 1
	}
	return &retryProvider{inner: provider, attempts: attempts, backoff: backoff, timeout: timeout}
}

func retryCall[T any](r *retryProvider, ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}

		callCtx := ctx
		cancel := context.CancelFunc(func() {})
		if r.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		result, err := call(callCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}

func (r *retryProvider) HistoricalSales(ctx context.Context, productID string, days int) ([]models.HistoricalSalesPoint, error) {
	return retryCall(r, ctx, func(ctx context.Context) ([]models.HistoricalSalesPoint, error) {
		return r.inner.HistoricalSales(ctx, productID, days)
	})
}

func (r *retryProvider) CurrentStock(ctx context.Context, productID string) (int, error) {
	return retryCall(r, ctx, func(ctx context.Context) (int, error) {
		return r.inner.CurrentStock(ctx, productID)
	})
}

func (r *retryProvider) SupplierLeadTime(ctx context.Context, productID string) (int, error) {
	return retryCall(r, ctx, func(ctx context.Context) (int, error) {
		return r.inner.SupplierLeadTime(ctx, productID)
	})
}

func (r *retryProvider) ProductCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	return retryCall(r, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return r.inner.ProductCost(ctx, productID)
	})
}

func (r *retryProvider) ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	return retryCall(r, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return r.inner.ProductPrice(ctx, productID)
	})
}

func (r *retryProvider) ProductName(ctx context.Context, productID string) (string, error) {
	return retryCall(r, ctx, func(ctx context.Context) (string, error) {
		return r.inner.ProductName(ctx, productID)
	})
}

func (r *retryProvider) ProductSKU(ctx context.Context, productID string) (string, error) {
	return retryCall(r, ctx, func(ctx context.Context) (string, error) {
		return r.inner.ProductSKU(ctx, productID)
	})
}

func (r *retryProvider) ProductsInCategory(ctx context.Context, categoryID string) ([]string, error) {
	return retryCall(r, ctx, func(ctx context.Context) ([]string, error) {
		return r.inner.ProductsInCategory(ctx, categoryID)
	})
}

func (r *retryProvider) ProductsBySupplier(ctx context.Context, supplierID string) ([]string, error) {
	return retryCall(r, ctx, func(ctx context.Context) ([]string, error) {
		return r.inner.ProductsBySupplier(ctx, supplierID)
	})
}

func (r *retryProvider) AllProducts(ctx context.Context) ([]string, error) {
	return retryCall(r, ctx, func(ctx context.Context) ([]string, error) {
		return r.inner.AllProducts(ctx)
	})
}
