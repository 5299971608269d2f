package errors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorUnwrapsToKind(t *testing.T) {
	err := NewProviderError("yahoo", "AAPL", ErrSymbolNotFound, stderrors.New("404"))

	assert.True(t, Is(err, ErrSymbolNotFound))
	assert.False(t, Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "yahoo")
	assert.Contains(t, err.Error(), "AAPL")
}

func TestProviderErrorRetryAfterOnRateLimit(t *testing.T) {
	err := NewProviderError("alpaca", "MSFT", ErrRateLimited, nil)
	assert.Equal(t, DefaultRetryAfter, err.RetryAfter)

	err = NewProviderError("alpaca", "MSFT", ErrTransport, nil)
	assert.Equal(t, time.Duration(0), err.RetryAfter)
}

func TestProviderErrorAs(t *testing.T) {
	var wrapped error = Wrap(NewProviderError("yahoo", "TSLA", ErrRateLimited, nil), "fetching quote")

	var pe *ProviderError
	require.True(t, As(wrapped, &pe))
	assert.Equal(t, "TSLA", pe.Symbol)
	assert.True(t, Is(wrapped, ErrRateLimited))
}

func TestValidationErrorMapsToInvalidParameter(t *testing.T) {
	err := NewValidationError("period", "7w", "unknown period token")

	assert.True(t, Is(err, ErrInvalidParameter))
	assert.Contains(t, err.Error(), "period")
	assert.Contains(t, err.Error(), "7w")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
}

func TestWrapfPreservesChain(t *testing.T) {
	err := Wrapf(ErrInsufficientData, "indicator %s needs %d bars", "rsi", 15)
	assert.True(t, Is(err, ErrInsufficientData))
	assert.Contains(t, err.Error(), "rsi")
}
