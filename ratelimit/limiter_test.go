// api/ratelimit/limiter_test.go
package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/datagate/api/ratelimit"
)

func TestLimiter(t *testing.T) {
	t.Run("AllowsUpToLimit", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := ratelimit.NewWithClock(3, time.Minute, func() time.Time { return now })

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("key"))
		}
		assert.False(t, limiter.Allow("key"))
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := ratelimit.NewWithClock(1, time.Minute, func() time.Time { return now })

		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("WindowSlides", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := ratelimit.NewWithClock(2, time.Minute, func() time.Time { return now })

		assert.True(t, limiter.Allow("key"))
		now = now.Add(30 * time.Second)
		assert.True(t, limiter.Allow("key"))
		assert.False(t, limiter.Allow("key"))

		// The first hit falls out of the trailing window, the second stays.
		now = now.Add(31 * time.Second)
		assert.True(t, limiter.Allow("key"))
		assert.False(t, limiter.Allow("key"))
	})

	t.Run("DeniedRequestsNotRecorded", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := ratelimit.NewWithClock(2, time.Minute, func() time.Time { return now })

		assert.True(t, limiter.Allow("key"))
		assert.True(t, limiter.Allow("key"))
		for i := 0; i < 10; i++ {
			assert.False(t, limiter.Allow("key"))
		}

		// Hammering while throttled must not extend the penalty: once the
		// window passes, the full budget is back.
		now = now.Add(61 * time.Second)
		assert.True(t, limiter.Allow("key"))
		assert.True(t, limiter.Allow("key"))
	})

	t.Run("Reset", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := ratelimit.NewWithClock(1, time.Minute, func() time.Time { return now })

		assert.True(t, limiter.Allow("key"))
		assert.False(t, limiter.Allow("key"))
		limiter.Reset("key")
		assert.True(t, limiter.Allow("key"))
	})
}

func TestCredentialKey(t *testing.T) {
	a := ratelimit.CredentialKey("credential-a")
	b := ratelimit.CredentialKey("credential-b")

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ratelimit.CredentialKey("credential-a"))
}
