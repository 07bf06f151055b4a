package gallery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tangerinesoft/photo-service/internal/objectstore"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
)

func (s *Service) GetPhoto(ctx context.Context, id string) (photos.Photo, error) {
	return s.catalog.GetPhoto(ctx, id)
}

func (s *Service) ListPhotos(ctx context.Context, filter photos.Filter) ([]photos.Photo, error) {
	return s.catalog.ListPhotos(ctx, filter)
}

// UpdatePhoto changes catalog fields only. The stored object, its key and
// its URL are never touched.
func (s *Service) UpdatePhoto(ctx context.Context, id string, update photos.Update) (photos.Photo, error) {
	if err := s.validate.Struct(update); err != nil {
		return photos.Photo{}, err
	}
	if update.Category != nil {
		if _, err := s.ensureCategory(ctx, *update.Category); err != nil {
			return photos.Photo{}, err
		}
	}

	photo, err := s.catalog.UpdatePhoto(ctx, id, update)
	if err != nil {
		return photos.Photo{}, err
	}

	s.publisher.PublishPhotoUpdated(&photo)
	return photo, nil
}

// ReorderPhotos assigns each id its index as sort order. Unknown ids are
// skipped.
func (s *Service) ReorderPhotos(ctx context.Context, ids []string) error {
	return s.catalog.ReorderPhotos(ctx, ids)
}

// DeletePhoto removes the catalog entry. Removing the stored object is best
// effort: a missing object or a backend failure is logged and ignored.
func (s *Service) DeletePhoto(ctx context.Context, id string) error {
	photo, err := s.catalog.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	if err := s.catalog.DeletePhoto(ctx, id); err != nil {
		return err
	}

	// the row goes first so a listed photo always has its object
	if err := s.store.DeleteObject(ctx, photo.ObjectKey); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			level = slog.LevelInfo
		}
		slog.Log(ctx, level, "Failed to delete stored object",
			slog.String("id", photo.ID),
			slog.String("object_key", photo.ObjectKey),
			slog.String("error", err.Error()))
	}

	s.publisher.PublishPhotoDeleted(&photo)
	return nil
}

func (s *Service) RecordView(ctx context.Context, id string) (int64, error) {
	return s.catalog.IncrementPhotoCounter(ctx, id, photos.CounterViews)
}

func (s *Service) RecordDownload(ctx context.Context, id string) (int64, error) {
	return s.catalog.IncrementPhotoCounter(ctx, id, photos.CounterDownloads)
}
