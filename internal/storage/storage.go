package storage

import (
	"context"
	"errors"

	"github.com/tangerinesoft/photo-service/internal/types/categories"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
	"github.com/tangerinesoft/photo-service/internal/types/settings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Storage is the relational catalog of photos, categories and site settings.
// It never holds image bytes.
type Storage interface {
	CreatePhoto(ctx context.Context, photo *photos.Photo) error
	GetPhoto(ctx context.Context, id string) (photos.Photo, error)
	ListPhotos(ctx context.Context, filter photos.Filter) ([]photos.Photo, error)
	UpdatePhoto(ctx context.Context, id string, update photos.Update) (photos.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
	ReorderPhotos(ctx context.Context, ids []string) error
	IncrementPhotoCounter(ctx context.Context, id string, counter photos.Counter) (int64, error)

	CreateCategory(ctx context.Context, category *categories.Category) error
	GetCategory(ctx context.Context, id string) (categories.Category, error)
	GetCategoryByName(ctx context.Context, name string) (categories.Category, error)
	ListCategories(ctx context.Context, includeHidden bool) ([]categories.Category, error)
	UpdateCategory(ctx context.Context, id string, update categories.UpdateRequest) (categories.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategories(ctx context.Context, ids []string) error
	NextCategorySortOrder(ctx context.Context) (int, error)

	GetSettings(ctx context.Context) (map[string]string, error)
	UpsertSettings(ctx context.Context, values map[string]string) error

	IncrementSiteStat(ctx context.Context, key string) (int64, error)
	GetStats(ctx context.Context) (settings.Stats, error)
}
