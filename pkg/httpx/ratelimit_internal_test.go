package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterIdleEviction(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1})
	t0 := time.Now()

	spent := rl.getLimiter("192.0.2.1:admin_user", t0)
	require.True(t, spent.AllowN(t0, 1))
	require.False(t, spent.AllowN(t0, 1))

	// Before the idle TTL nothing is swept.
	active := rl.getLimiter("192.0.2.2:regular_user", t0.Add(limiterIdleTTL-time.Minute))
	require.Len(t, rl.entries, 2)
	require.Same(t, spent, rl.getLimiter("192.0.2.1:admin_user", t0))

	// Past the TTL the sweep drops buckets idle for the full TTL only.
	later := t0.Add(limiterIdleTTL + time.Minute)
	rl.getLimiter("192.0.2.3:other_user", later)
	require.Len(t, rl.entries, 2)
	require.NotContains(t, rl.entries, "192.0.2.1:admin_user")
	require.Same(t, active, rl.getLimiter("192.0.2.2:regular_user", later))

	// An evicted key starts again with a full bucket.
	fresh := rl.getLimiter("192.0.2.1:admin_user", later)
	require.NotSame(t, spent, fresh)
	require.True(t, fresh.AllowN(later, 1))
}

func TestLimiterRefillsAtConfiguredRate(t *testing.T) {
	// Strict login profile: 5 per minute, one token every 12 seconds.
	rl := newRateLimiter(RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5})
	t0 := time.Now()
	l := rl.getLimiter("192.0.2.1:admin_user", t0)

	for range 5 {
		require.True(t, l.AllowN(t0, 1))
	}
	require.False(t, l.AllowN(t0, 1))
	require.False(t, l.AllowN(t0.Add(11*time.Second), 1))
	require.True(t, l.AllowN(t0.Add(13*time.Second), 1))
}
