package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"class-tutor-service/internal/domain"
)

type fakeRedis struct {
	data    map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
	getErr  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data:    make(map[string]string),
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.data[key] = value.(string)
	f.expires[key] = expiration
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return val, nil
}

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestGuideCacheRoundTrip(t *testing.T) {
	fr := newFakeRedis()
	cache := NewGuideCache(fr, time.Hour)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "job-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound on cold cache, got %v", err)
	}

	if err := cache.Store(ctx, "job-1", "# Guide"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ttl := fr.expires[guideKeyPrefix+"job-1"]; ttl != time.Hour {
		t.Fatalf("want ttl set on store, got %v", ttl)
	}

	got, err := cache.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "# Guide" {
		t.Fatalf("got %q", got)
	}
}

func TestRateLimiterFixedWindow(t *testing.T) {
	fr := newFakeRedis()
	rl := NewRateLimiter(fr)
	ctx := context.Background()
	key := SubmitKey("10.0.0.1")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("fourth call in window should be rejected")
	}
	if fr.expires[key] != time.Minute {
		t.Fatalf("window expiry not set: %v", fr.expires[key])
	}
}
