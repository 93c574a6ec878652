package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusReceived, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusReady.Terminal())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// Forward steps, including skips
		{StatusPending, StatusReceived, true},
		{StatusPending, StatusCompleted, true},
		{StatusReceived, StatusPreparing, true},
		{StatusReceived, StatusReady, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusCompleted, true},

		// Cancellation from any non-final state, including completed
		{StatusPending, StatusCancelled, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, true},

		// Backward moves are rejected
		{StatusReady, StatusReceived, false},
		{StatusPreparing, StatusPending, false},
		{StatusCompleted, StatusReady, false},

		// Cancelled is final
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},

		// Same status and unknown statuses
		{StatusPending, StatusPending, false},
		{StatusPending, Status("shipped"), false},
		{Status(""), StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
