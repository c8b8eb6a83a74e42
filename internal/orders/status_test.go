package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusDelivered, StatusRefunded))

	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusRefunded, StatusPending))
	assert.False(t, CanTransition(StatusPending, StatusDelivered))
}

func TestReleasesStock(t *testing.T) {
	assert.True(t, ReleasesStock(StatusCancelled))
	assert.True(t, ReleasesStock(StatusRefunded))
	assert.False(t, ReleasesStock(StatusConfirmed))
}

func TestNewNumber(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	n := NewNumber(now)
	require.Regexp(t, `^ORD-20260301-[0-9A-F]{8}$`, n)
	assert.NotEqual(t, n, NewNumber(now))
}
