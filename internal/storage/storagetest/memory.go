// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tangerinesoft/photo-service/internal/storage"
	"github.com/tangerinesoft/photo-service/internal/types/categories"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
	"github.com/tangerinesoft/photo-service/internal/types/settings"
)

// Memory mirrors the Postgres catalog semantics: unique photo object keys,
// unique category names and ErrNotFound for missing rows.
type Memory struct {
	mu         sync.Mutex
	photos     map[string]photos.Photo
	categories map[string]categories.Category
	settings   map[string]string
	stats      map[string]int64

	// Calls counts invocations by method name.
	Calls map[string]int
	// Err, when set for a method name, is returned by that method.
	Err map[string]error
	// BeforeCreateCategory runs before CreateCategory checks uniqueness.
	BeforeCreateCategory func(c *categories.Category)
}

func NewMemory() *Memory {
	return &Memory{
		photos:     map[string]photos.Photo{},
		categories: map[string]categories.Category{},
		settings:   map[string]string{},
		stats:      map[string]int64{},
		Calls:      map[string]int{},
		Err:        map[string]error{},
	}
}

func (m *Memory) call(name string) error {
	m.Calls[name]++
	return m.Err[name]
}

// Photos returns a snapshot of all stored photos.
func (m *Memory) Photos() []photos.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]photos.Photo, 0, len(m.photos))
	for _, p := range m.photos {
		out = append(out, p)
	}
	return out
}

// Categories returns a snapshot of all stored categories.
func (m *Memory) Categories() []categories.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]categories.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out
}

func (m *Memory) CreatePhoto(ctx context.Context, photo *photos.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("CreatePhoto"); err != nil {
		return err
	}
	for _, p := range m.photos {
		if p.ID == photo.ID || p.ObjectKey == photo.ObjectKey {
			return fmt.Errorf("%w: photos_object_key_key", storage.ErrConflict)
		}
	}
	now := time.Now().UTC()
	photo.CreatedAt, photo.UpdatedAt = now, now
	photo.ViewCount, photo.DownloadCount = 0, 0
	m.photos[photo.ID] = *photo
	return nil
}

func (m *Memory) GetPhoto(ctx context.Context, id string) (photos.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetPhoto"); err != nil {
		return photos.Photo{}, err
	}
	p, ok := m.photos[id]
	if !ok {
		return photos.Photo{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListPhotos(ctx context.Context, filter photos.Filter) ([]photos.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("ListPhotos"); err != nil {
		return nil, err
	}
	out := []photos.Photo{}
	for _, p := range m.photos {
		if !filter.IncludeHidden && !p.IsVisible {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdatePhoto(ctx context.Context, id string, update photos.Update) (photos.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("UpdatePhoto"); err != nil {
		return photos.Photo{}, err
	}
	p, ok := m.photos[id]
	if !ok {
		return photos.Photo{}, storage.ErrNotFound
	}
	if update.Title != nil {
		p.Title = update.Title
	}
	if update.Description != nil {
		p.Description = update.Description
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.SortOrder != nil {
		p.SortOrder = *update.SortOrder
	}
	if update.IsVisible != nil {
		p.IsVisible = *update.IsVisible
	}
	if !update.IsEmpty() {
		p.UpdatedAt = time.Now().UTC()
	}
	m.photos[id] = p
	return p, nil
}

func (m *Memory) DeletePhoto(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("DeletePhoto"); err != nil {
		return err
	}
	if _, ok := m.photos[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.photos, id)
	return nil
}

func (m *Memory) ReorderPhotos(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("ReorderPhotos"); err != nil {
		return err
	}
	for i, id := range ids {
		if p, ok := m.photos[id]; ok {
			p.SortOrder = i
			m.photos[id] = p
		}
	}
	return nil
}

func (m *Memory) IncrementPhotoCounter(ctx context.Context, id string, counter photos.Counter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("IncrementPhotoCounter"); err != nil {
		return 0, err
	}
	p, ok := m.photos[id]
	if !ok {
		return 0, storage.ErrNotFound
	}
	var v int64
	switch counter {
	case photos.CounterViews:
		p.ViewCount++
		v = p.ViewCount
	case photos.CounterDownloads:
		p.DownloadCount++
		v = p.DownloadCount
	default:
		return 0, fmt.Errorf("unknown counter %q", counter)
	}
	m.photos[id] = p
	return v, nil
}

func (m *Memory) CreateCategory(ctx context.Context, category *categories.Category) error {
	if m.BeforeCreateCategory != nil {
		m.BeforeCreateCategory(category)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("CreateCategory"); err != nil {
		return err
	}
	for _, c := range m.categories {
		if c.Name == category.Name {
			return fmt.Errorf("%w: categories_name_key", storage.ErrConflict)
		}
	}
	category.CreatedAt = time.Now().UTC()
	m.categories[category.ID] = *category
	return nil
}

// PutCategory inserts c without uniqueness checks or call accounting.
func (m *Memory) PutCategory(c categories.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

func (m *Memory) GetCategory(ctx context.Context, id string) (categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetCategory"); err != nil {
		return categories.Category{}, err
	}
	c, ok := m.categories[id]
	if !ok {
		return categories.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (m *Memory) GetCategoryByName(ctx context.Context, name string) (categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetCategoryByName"); err != nil {
		return categories.Category{}, err
	}
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return categories.Category{}, storage.ErrNotFound
}

func (m *Memory) ListCategories(ctx context.Context, includeHidden bool) ([]categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("ListCategories"); err != nil {
		return nil, err
	}
	out := []categories.Category{}
	for _, c := range m.categories {
		if includeHidden || c.IsVisible {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) UpdateCategory(ctx context.Context, id string, update categories.UpdateRequest) (categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("UpdateCategory"); err != nil {
		return categories.Category{}, err
	}
	c, ok := m.categories[id]
	if !ok {
		return categories.Category{}, storage.ErrNotFound
	}
	if update.Name != nil {
		for _, other := range m.categories {
			if other.ID != id && other.Name == *update.Name {
				return categories.Category{}, fmt.Errorf("%w: categories_name_key", storage.ErrConflict)
			}
		}
		c.Name = *update.Name
	}
	if update.DisplayName != nil {
		c.DisplayName = *update.DisplayName
	}
	if update.IsVisible != nil {
		c.IsVisible = *update.IsVisible
	}
	m.categories[id] = c
	return c, nil
}

func (m *Memory) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("DeleteCategory"); err != nil {
		return err
	}
	if _, ok := m.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) ReorderCategories(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("ReorderCategories"); err != nil {
		return err
	}
	for i, id := range ids {
		if c, ok := m.categories[id]; ok {
			c.SortOrder = i
			m.categories[id] = c
		}
	}
	return nil
}

func (m *Memory) NextCategorySortOrder(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("NextCategorySortOrder"); err != nil {
		return 0, err
	}
	next := 0
	for _, c := range m.categories {
		if c.SortOrder+1 > next {
			next = c.SortOrder + 1
		}
	}
	return next, nil
}

func (m *Memory) GetSettings(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetSettings"); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpsertSettings(ctx context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("UpsertSettings"); err != nil {
		return err
	}
	for k, v := range values {
		m.settings[k] = v
	}
	return nil
}

func (m *Memory) IncrementSiteStat(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("IncrementSiteStat"); err != nil {
		return 0, err
	}
	m.stats[key]++
	return m.stats[key], nil
}

func (m *Memory) GetStats(ctx context.Context) (settings.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetStats"); err != nil {
		return settings.Stats{}, err
	}
	st := settings.Stats{
		CategoryCount: int64(len(m.categories)),
		SiteVisits:    m.stats[settings.StatSiteVisits],
		TopPhotos:     []photos.Photo{},
	}
	for _, p := range m.photos {
		st.PhotoCount++
		if p.IsVisible {
			st.VisiblePhotoCount++
		}
		st.TotalViews += p.ViewCount
		st.TotalDownloads += p.DownloadCount
		st.StorageBytes += p.FileSize
		st.TopPhotos = append(st.TopPhotos, p)
	}
	sort.Slice(st.TopPhotos, func(i, j int) bool { return st.TopPhotos[i].ViewCount > st.TopPhotos[j].ViewCount })
	if len(st.TopPhotos) > 5 {
		st.TopPhotos = st.TopPhotos[:5]
	}
	return st, nil
}

var _ storage.Storage = (*Memory)(nil)
