package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestCache(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "paper:"), mr
}

type cachedPaper struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	helper, mr := setupTestCache(t)
	ctx := context.Background()

	paper := cachedPaper{ID: "p-1", Status: "DRAFT"}
	if err := helper.Set(ctx, "id:p-1", paper, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got cachedPaper
	if err := helper.Get(ctx, "id:p-1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != paper {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Keys carry the helper prefix.
	if !mr.Exists("paper:id:p-1") {
		t.Error("expected prefixed key in redis")
	}

	if err := helper.Delete(ctx, "id:p-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := helper.Get(ctx, "id:p-1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	helper, mr := setupTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:p-1", cachedPaper{ID: "p-1"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var got cachedPaper
	if err := helper.Get(ctx, "id:p-1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := setupTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedPaper{ID: "p-1", Status: "APPROVED"}, nil
	}

	var got cachedPaper
	if err := helper.CacheOrExecute(ctx, "id:p-1", &got, time.Minute, fetch); err != nil {
		t.Fatalf("cache-aside failed: %v", err)
	}
	if calls != 1 || got.Status != "APPROVED" {
		t.Fatalf("fetch path wrong: calls=%d got=%+v", calls, got)
	}

	// The async populate needs a moment before the second read hits cache.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var cached cachedPaper
		if err := helper.Get(ctx, "id:p-1", &cached); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache never populated")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second cachedPaper
	if err := helper.CacheOrExecute(ctx, "id:p-1", &second, time.Minute, fetch); err != nil {
		t.Fatalf("cache-aside failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected cache hit, fetch ran %d times", calls)
	}

	failing := func() (interface{}, error) { return nil, errors.New("db down") }
	var missed cachedPaper
	if err := helper.CacheOrExecute(ctx, "id:p-2", &missed, time.Minute, failing); err == nil {
		t.Error("fetch errors must propagate")
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, mr := setupTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := helper.Set(ctx, fmt.Sprintf("school:s-1:%d", i), i, time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := helper.Set(ctx, "school:s-2:0", 0, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "school:s-1:*"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	if mr.Exists("paper:school:s-1:0") {
		t.Error("pattern keys should be gone")
	}
	if !mr.Exists("paper:school:s-2:0") {
		t.Error("unrelated keys must survive")
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "paper:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:p-1", cachedPaper{}, time.Minute); err != nil {
		t.Errorf("nil-client set should be a no-op, got %v", err)
	}
	var got cachedPaper
	if err := helper.Get(ctx, "id:p-1", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
	if err := helper.Delete(ctx, "id:p-1"); err != nil {
		t.Errorf("nil-client delete should be a no-op, got %v", err)
	}

	// Cache-aside still serves from the fetch function.
	calls := 0
	if err := helper.CacheOrExecute(ctx, "id:p-1", &got, time.Minute, func() (interface{}, error) {
		calls++
		return cachedPaper{ID: "p-1"}, nil
	}); err != nil {
		t.Fatalf("cache-aside without redis failed: %v", err)
	}
	if calls != 1 || got.ID != "p-1" {
		t.Errorf("fetch fallback wrong: calls=%d got=%+v", calls, got)
	}
}

func TestCacheManager_InvalidatePaper(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager := NewCacheManager(client)
	ctx := context.Background()

	if err := manager.Paper.Set(ctx, "id:p-1", cachedPaper{ID: "p-1"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := manager.Paper.Set(ctx, "qr:EXAM-abc", cachedPaper{ID: "p-1"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := manager.Counts.Set(ctx, "school:s-1", 3, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	manager.InvalidatePaper(ctx, "p-1", "EXAM-abc", "s-1")

	if mr.Exists("paper:id:p-1") || mr.Exists("paper:qr:EXAM-abc") || mr.Exists("counts:school:s-1") {
		t.Error("invalidate should drop the id, qr and counts keys")
	}

	if err := manager.HealthCheck(ctx); err != nil {
		t.Errorf("health check failed: %v", err)
	}
}
