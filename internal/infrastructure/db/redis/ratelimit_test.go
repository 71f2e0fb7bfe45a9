package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T, limit int, window time.Duration) (*RateLimitStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimitStore(client, limit, window, zerolog.Nop()), mr
}

func TestRateLimitStore_AllowsUpToLimit(t *testing.T) {
	store, _ := newTestStore(t, 3, time.Minute)
	fixed := time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for i := 1; i <= 3; i++ {
		allowed, err := store.Allow("10.0.0.1")
		if err != nil || !allowed {
			t.Fatalf("request %d: expected allowed, got %v (err %v)", i, allowed, err)
		}
	}
	if allowed, _ := store.Allow("10.0.0.1"); allowed {
		t.Fatalf("expected request 4 to be denied")
	}
	if allowed, _ := store.Allow("10.0.0.2"); !allowed {
		t.Fatalf("other identifiers must have their own budget")
	}
}

func TestRateLimitStore_NewWindowResets(t *testing.T) {
	store, _ := newTestStore(t, 1, time.Minute)
	current := time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC)
	store.now = func() time.Time { return current }

	if allowed, _ := store.Allow("ip"); !allowed {
		t.Fatalf("first request must be allowed")
	}
	if allowed, _ := store.Allow("ip"); allowed {
		t.Fatalf("second request in the window must be denied")
	}

	current = current.Add(time.Minute)
	if allowed, _ := store.Allow("ip"); !allowed {
		t.Fatalf("first request of the next window must be allowed")
	}
}

func TestRateLimitStore_KeysExpire(t *testing.T) {
	store, mr := newTestStore(t, 5, time.Minute)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if _, err := store.Allow("ip"); err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	key := store.key("ip", fixed)
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within the window, got %s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists(key) {
		t.Fatalf("expected window key to expire")
	}
}

func TestRateLimitStore_FailsOpen(t *testing.T) {
	store, mr := newTestStore(t, 1, time.Minute)
	mr.Close()

	allowed, err := store.Allow("ip")
	if err != nil || !allowed {
		t.Fatalf("expected fail-open allow, got %v (err %v)", allowed, err)
	}
}
