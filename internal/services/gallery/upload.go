package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tangerinesoft/photo-service/internal/metadata"
	"github.com/tangerinesoft/photo-service/internal/storage"
	"github.com/tangerinesoft/photo-service/internal/types/categories"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
)

// Upload stores one image and records it in the catalog. The object is
// written before any catalog change, so a failed write leaves the catalog
// untouched.
func (s *Service) Upload(ctx context.Context, in photos.UploadInput) (*photos.Photo, error) {
	if len(in.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	if in.ContentType == "" {
		in.ContentType = DefaultContentType
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ext := Extension(in.Filename)
	id := uuid.New().String()
	objectKey := fmt.Sprintf("%s/%s.%s", in.Category, id, ext)

	exif := metadata.Extract(in.Data)

	if err := s.store.PutObject(ctx, objectKey, in.Data, in.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	if _, err := s.ensureCategory(ctx, in.Category); err != nil {
		return nil, err
	}

	photo := &photos.Photo{
		ID:               id,
		Filename:         id + "." + ext,
		OriginalFilename: in.Filename,
		ObjectKey:        objectKey,
		URL:              s.publicBase + "/" + objectKey,
		Category:         in.Category,
		Title:            in.Title,
		Description:      in.Description,
		SortOrder:        in.SortOrder,
		IsVisible:        true,
		FileSize:         int64(len(in.Data)),
		ContentType:      in.ContentType,
		Exif:             exif,
	}
	if err := s.catalog.CreatePhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}

	slog.Info("Photo uploaded",
		slog.String("id", photo.ID),
		slog.String("object_key", photo.ObjectKey),
		slog.Int64("size", photo.FileSize))

	s.publisher.PublishPhotoUploaded(photo)
	return photo, nil
}

// ensureCategory returns the category called name, creating it when absent.
// A concurrent creation of the same name is resolved by reading it back.
func (s *Service) ensureCategory(ctx context.Context, name string) (categories.Category, error) {
	cat, err := s.catalog.GetCategoryByName(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return cat, fmt.Errorf("failed to look up category: %w", err)
	}

	next, err := s.catalog.NextCategorySortOrder(ctx)
	if err != nil {
		return cat, fmt.Errorf("failed to create category: %w", err)
	}

	cat = categories.Category{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: TitleCase(name),
		SortOrder:   next,
		IsVisible:   true,
	}
	err = s.catalog.CreateCategory(ctx, &cat)
	switch {
	case err == nil:
		slog.Info("Category created", slog.String("name", name))
		return cat, nil
	case errors.Is(err, storage.ErrConflict):
		return s.catalog.GetCategoryByName(ctx, name)
	default:
		return cat, fmt.Errorf("failed to create category: %w", err)
	}
}
