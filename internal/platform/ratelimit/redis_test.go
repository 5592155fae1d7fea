package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestAllow_DisabledLimitNeverTouchesRedis(t *testing.T) {
	// Nothing listens on this address; a zero limit must short-circuit.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	l := NewRedisLimiter(client, 0, time.Minute)
	allowed, err := l.Allow(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when limit is disabled")
	}
}

func TestAllow_UnreachableRedisReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()

	l := NewRedisLimiter(client, 5, time.Minute)
	if _, err := l.Allow(context.Background(), "10.0.0.1"); err == nil {
		t.Error("Expected an error from an unreachable redis")
	}
}

func TestAllow_CountsWithinWindow(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	fixed := time.Now()
	l.now = func() time.Time { return fixed }
	key := "test-" + uuid.NewString()

	for i := 1; i <= 3; i++ {
		allowed, err := l.Allow(context.Background(), key)
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if want := i <= 2; allowed != want {
			t.Errorf("request %d: allowed=%v, want %v", i, allowed, want)
		}
	}
}
