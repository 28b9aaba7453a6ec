package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyProvider fails CurrentStock a fixed number of times before
// succeeding.
type flakyProvider struct {
	*mockProvider
	failures int
	calls    int
}

func (f *flakyProvider) CurrentStock(ctx context.Context, productID string) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, errors.New("connection reset")
	}
	return f.mockProvider.CurrentStock(ctx, productID)
}

func TestWithRetryRecoversFromTransientFailures(t *testing.T) {
	inner := newMockProvider()
	inner.stock["p1"] = 42
	flaky := &flakyProvider{mockProvider: inner, failures: 2}

	provider := WithRetry(flaky, 3, time.Millisecond, time.Second)
	stock, err := provider.CurrentStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 42, stock)
	assert.Equal(t, 3, flaky.calls)
}

func TestWithRetryGivesUpAfterAttempts(t *testing.T) {
	flaky := &flakyProvider{mockProvider: newMockProvider(), failures: 10}

	provider := WithRetry(flaky, 3, time.Millisecond, time.Second)
	_, err := provider.CurrentStock(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, 3, flaky.calls)
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	flaky := &flakyProvider{mockProvider: newMockProvider(), failures: 10}

	provider := WithRetry(flaky, 5, 10*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.CurrentStock(ctx, "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// The first attempt runs, then the cancelled context halts retries.
	assert.LessOrEqual(t, flaky.calls, 1)
}

func TestWithRetryPassesThroughSuccess(t *testing.T) {
	inner := newMockProvider()
	inner.stock["p1"] = 7
	inner.names["p1"] = "Bread"

	provider := WithRetry(inner, 3, time.Millisecond, time.Second)

	stock, err := provider.CurrentStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	name, err := provider.ProductName(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Bread", name)
}
