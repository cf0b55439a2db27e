package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// CacheManager groups the cache helpers used by the repositories.
type CacheManager struct {
	Paper  *CacheHelper
	School *CacheHelper
	Counts *CacheHelper
}

// NewCacheManager creates cache manager with all cache helpers
func NewCacheManager(client *redis.Client) *CacheManager {
	if client == nil {
		return &CacheManager{
			Paper:  NewCacheHelper(nil, ""),
			School: NewCacheHelper(nil, ""),
			Counts: NewCacheHelper(nil, ""),
		}
	}

	return &CacheManager{
		Paper:  NewCacheHelper(client, PaperCacheConfig.Prefix),
		School: NewCacheHelper(client, SchoolCacheConfig.Prefix),
		Counts: NewCacheHelper(client, CountsCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.Paper.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.Paper.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// ClearAll clears all caches (use with caution)
func (cm *CacheManager) ClearAll(ctx context.Context) error {
	if cm.Paper.client == nil {
		return nil
	}

	return cm.Paper.client.FlushAll(ctx).Err()
}

// InvalidatePaper drops every cached view of a paper: by id, by QR token,
// and the school's count aggregates.
func (cm *CacheManager) InvalidatePaper(ctx context.Context, paperID, qrData, schoolID string) {
	SafeDelete(ctx, cm.Paper,
		fmt.Sprintf("id:%s", paperID),
		fmt.Sprintf("qr:%s", qrData))
	SafeDelete(ctx, cm.Counts, fmt.Sprintf("school:%s", schoolID))
}

// InvalidateSchool drops a cached school record (template reads)
func (cm *CacheManager) InvalidateSchool(ctx context.Context, schoolID string) {
	SafeDelete(ctx, cm.School, fmt.Sprintf("id:%s", schoolID))
}

// SafeDelete deletes cache keys, logging instead of propagating failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeInvalidatePattern invalidates a cache pattern, logging failures.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}
