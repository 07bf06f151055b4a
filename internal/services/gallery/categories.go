package gallery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tangerinesoft/photo-service/internal/types/categories"
)

func (s *Service) ListCategories(ctx context.Context, includeHidden bool) ([]categories.Category, error) {
	return s.catalog.ListCategories(ctx, includeHidden)
}

// CreateCategory appends a new category. The display name defaults to the
// title-cased name. Duplicate names yield storage.ErrConflict.
func (s *Service) CreateCategory(ctx context.Context, req categories.CreateRequest) (categories.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return categories.Category{}, err
	}

	next, err := s.catalog.NextCategorySortOrder(ctx)
	if err != nil {
		return categories.Category{}, fmt.Errorf("failed to create category: %w", err)
	}

	cat := categories.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		DisplayName: TitleCase(req.Name),
		SortOrder:   next,
		IsVisible:   true,
	}
	if req.DisplayName != nil && *req.DisplayName != "" {
		cat.DisplayName = *req.DisplayName
	}

	if err := s.catalog.CreateCategory(ctx, &cat); err != nil {
		return categories.Category{}, err
	}
	return cat, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req categories.UpdateRequest) (categories.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return categories.Category{}, err
	}
	return s.catalog.UpdateCategory(ctx, id, req)
}

// DeleteCategory removes the category row. Photos keep their category name.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.catalog.DeleteCategory(ctx, id)
}

func (s *Service) ReorderCategories(ctx context.Context, ids []string) error {
	return s.catalog.ReorderCategories(ctx, ids)
}
