package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowCapsAttempts(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("user@example.com"), "attempt %d should be allowed", i+1)
	}
	require.False(t, l.Allow("user@example.com"))

	// Other identifiers have their own budget.
	require.True(t, l.Allow("other@example.com"))
}

func TestWindowExpiryResetsBudget(t *testing.T) {
	l := New(2, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("user@example.com"))
	require.True(t, l.Allow("user@example.com"))
	require.False(t, l.Allow("user@example.com"))

	now = now.Add(2 * time.Minute)
	require.True(t, l.Allow("user@example.com"))
}

func TestIdentifierNormalization(t *testing.T) {
	l := New(1, time.Minute)

	require.True(t, l.Allow(" User@Example.com "))
	require.False(t, l.Allow("user@example.com"))
}
