package cache

import (
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

// CacheStats represents cache statistics for the admin dashboard
type CacheStats struct {
	RedisConnected bool     `json:"redis_connected"`
	CacheKeys      []string `json:"cache_keys_sample"`
	KeyCount       int      `json:"gallery_keys"`
}

// GetCacheStats returns cache statistics
// @Summary      Cache statistics
// @Description  Reports Redis connectivity and a sample of cached gallery keys
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=CacheStats}
// @Router       /api/admin/cache [get]
func GetCacheStats(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		stats := CacheStats{RedisConnected: true, CacheKeys: []string{}}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			stats.RedisConnected = false
			response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache stats retrieved", stats))
			return
		}

		iter := redisClient.Scan(ctx, 0, Prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			stats.KeyCount++
			if len(stats.CacheKeys) < 10 {
				stats.CacheKeys = append(stats.CacheKeys, iter.Val())
			}
		}
		if err := iter.Err(); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache stats retrieved", stats))
	}
}

// ClearCache drops cached gallery keys
// @Summary      Clear cache
// @Description  Deletes cached gallery entries. type is one of photos, categories, settings or all.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type  query     string  false  "Cache type"  Enums(photos, categories, settings, all)
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /api/admin/cache [delete]
func ClearCache(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var patterns []string
		switch cacheType := r.URL.Query().Get("type"); cacheType {
		case "photos":
			patterns = []string{PhotoListPattern, PhotoPattern}
		case "categories":
			patterns = []string{CategoryPattern}
		case "settings":
			patterns = []string{SettingsKey}
		case "all", "":
			patterns = []string{Prefix + "*"}
		default:
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(fmt.Errorf("unknown cache type %q", cacheType)))
			return
		}

		var keys []string
		for _, pattern := range patterns {
			iter := redisClient.Scan(ctx, 0, pattern, 100).Iterator()
			for iter.Next(ctx) {
				keys = append(keys, iter.Val())
			}
			if err := iter.Err(); err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
				return
			}
		}

		var deleted int64
		if len(keys) > 0 {
			n, err := redisClient.Del(ctx, keys...).Result()
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
				return
			}
			deleted = n
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache cleared", map[string]any{
			"patterns":     patterns,
			"deleted_keys": deleted,
		}))
	}
}
