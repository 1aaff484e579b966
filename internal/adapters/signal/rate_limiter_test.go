package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "limits are per connection")

	now = now.Add(1001 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_Forget(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	rl.Forget("a")
	assert.True(t, rl.Allow("a"))
}
