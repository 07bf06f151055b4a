package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tangerinesoft/photo-service/internal/storage"
	"github.com/tangerinesoft/photo-service/internal/types/categories"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
	"github.com/tangerinesoft/photo-service/internal/types/settings"
)

// CacheService wraps the catalog with Redis read caching for the public
// gallery. Writes go straight to the catalog and drop the affected keys.
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

func NewCacheService(storage storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
	}
}

// Cache key patterns
const (
	Prefix           = "gallery:"
	PhotoListKey     = Prefix + "photos:list:%t:%s" // hidden included, category
	PhotoListPattern = Prefix + "photos:list:*"
	PhotoKey         = Prefix + "photo:%s" // photo:photoID
	PhotoPattern     = Prefix + "photo:*"
	CategoryListKey  = Prefix + "categories:%t" // hidden included
	CategoryPattern  = Prefix + "categories:*"
	SettingsKey      = Prefix + "settings"
)

// Cache durations
const (
	PhotoListCacheDuration = 45 * time.Second
	PhotoCacheDuration     = 10 * time.Minute
	CategoryCacheDuration  = 5 * time.Minute
	SettingsCacheDuration  = 10 * time.Minute
)

// cached serves key from Redis or loads it and stores the result. Redis
// failures fall back to load.
func cached[T any](ctx context.Context, c *CacheService, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	} else if err != redis.Nil {
		slog.Warn("Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err == nil {
		c.redis.Set(ctx, key, data, ttl)
	}
	return v, nil
}

// invalidate deletes the given keys and every key matching the patterns.
func (c *CacheService) invalidate(ctx context.Context, keys []string, patterns ...string) {
	for _, pattern := range patterns {
		iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			slog.Warn("Cache scan failed", slog.String("pattern", pattern), slog.String("error", err.Error()))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("Cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (c *CacheService) invalidatePhoto(ctx context.Context, id string) {
	c.invalidate(ctx, []string{fmt.Sprintf(PhotoKey, id)}, PhotoListPattern)
}

func (c *CacheService) CreatePhoto(ctx context.Context, photo *photos.Photo) error {
	if err := c.storage.CreatePhoto(ctx, photo); err != nil {
		return err
	}
	c.invalidate(ctx, nil, PhotoListPattern)
	return nil
}

func (c *CacheService) GetPhoto(ctx context.Context, id string) (photos.Photo, error) {
	return cached(ctx, c, fmt.Sprintf(PhotoKey, id), PhotoCacheDuration, func() (photos.Photo, error) {
		return c.storage.GetPhoto(ctx, id)
	})
}

func (c *CacheService) ListPhotos(ctx context.Context, filter photos.Filter) ([]photos.Photo, error) {
	key := fmt.Sprintf(PhotoListKey, filter.IncludeHidden, filter.Category)
	return cached(ctx, c, key, PhotoListCacheDuration, func() ([]photos.Photo, error) {
		return c.storage.ListPhotos(ctx, filter)
	})
}

func (c *CacheService) UpdatePhoto(ctx context.Context, id string, update photos.Update) (photos.Photo, error) {
	photo, err := c.storage.UpdatePhoto(ctx, id, update)
	if err != nil {
		return photo, err
	}
	c.invalidatePhoto(ctx, id)
	return photo, nil
}

func (c *CacheService) DeletePhoto(ctx context.Context, id string) error {
	if err := c.storage.DeletePhoto(ctx, id); err != nil {
		return err
	}
	c.invalidatePhoto(ctx, id)
	return nil
}

func (c *CacheService) ReorderPhotos(ctx context.Context, ids []string) error {
	if err := c.storage.ReorderPhotos(ctx, ids); err != nil {
		return err
	}
	c.invalidate(ctx, nil, PhotoListPattern, PhotoPattern)
	return nil
}

// IncrementPhotoCounter only drops the single photo entry. Listings may show
// counters up to PhotoListCacheDuration old.
func (c *CacheService) IncrementPhotoCounter(ctx context.Context, id string, counter photos.Counter) (int64, error) {
	v, err := c.storage.IncrementPhotoCounter(ctx, id, counter)
	if err != nil {
		return v, err
	}
	c.invalidate(ctx, []string{fmt.Sprintf(PhotoKey, id)})
	return v, nil
}

func (c *CacheService) CreateCategory(ctx context.Context, category *categories.Category) error {
	if err := c.storage.CreateCategory(ctx, category); err != nil {
		return err
	}
	c.invalidate(ctx, nil, CategoryPattern)
	return nil
}

func (c *CacheService) GetCategory(ctx context.Context, id string) (categories.Category, error) {
	return c.storage.GetCategory(ctx, id)
}

func (c *CacheService) GetCategoryByName(ctx context.Context, name string) (categories.Category, error) {
	return c.storage.GetCategoryByName(ctx, name)
}

func (c *CacheService) ListCategories(ctx context.Context, includeHidden bool) ([]categories.Category, error) {
	return cached(ctx, c, fmt.Sprintf(CategoryListKey, includeHidden), CategoryCacheDuration, func() ([]categories.Category, error) {
		return c.storage.ListCategories(ctx, includeHidden)
	})
}

func (c *CacheService) UpdateCategory(ctx context.Context, id string, update categories.UpdateRequest) (categories.Category, error) {
	cat, err := c.storage.UpdateCategory(ctx, id, update)
	if err != nil {
		return cat, err
	}
	c.invalidate(ctx, nil, CategoryPattern)
	return cat, nil
}

func (c *CacheService) DeleteCategory(ctx context.Context, id string) error {
	if err := c.storage.DeleteCategory(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, nil, CategoryPattern)
	return nil
}

func (c *CacheService) ReorderCategories(ctx context.Context, ids []string) error {
	if err := c.storage.ReorderCategories(ctx, ids); err != nil {
		return err
	}
	c.invalidate(ctx, nil, CategoryPattern)
	return nil
}

func (c *CacheService) NextCategorySortOrder(ctx context.Context) (int, error) {
	return c.storage.NextCategorySortOrder(ctx)
}

func (c *CacheService) GetSettings(ctx context.Context) (map[string]string, error) {
	return cached(ctx, c, SettingsKey, SettingsCacheDuration, func() (map[string]string, error) {
		return c.storage.GetSettings(ctx)
	})
}

func (c *CacheService) UpsertSettings(ctx context.Context, values map[string]string) error {
	if err := c.storage.UpsertSettings(ctx, values); err != nil {
		return err
	}
	c.invalidate(ctx, []string{SettingsKey})
	return nil
}

func (c *CacheService) IncrementSiteStat(ctx context.Context, key string) (int64, error) {
	return c.storage.IncrementSiteStat(ctx, key)
}

func (c *CacheService) GetStats(ctx context.Context) (settings.Stats, error) {
	return c.storage.GetStats(ctx)
}

var _ storage.Storage = (*CacheService)(nil)
