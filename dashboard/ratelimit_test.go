package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterStore_PerClientBuckets(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Minute)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	assert.True(t, store.Allow("10.0.0.1"))
	assert.False(t, store.Allow("10.0.0.1"))
	assert.True(t, store.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, store.Allow("10.0.0.1"))
}

func TestLimiterStore_ForgetsIdleClients(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Minute)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Allow("10.0.0.1")
	store.Allow("")
	assert.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Minute)
	store.Allow("10.0.0.3")
	assert.Equal(t, 1, store.Len())
}
