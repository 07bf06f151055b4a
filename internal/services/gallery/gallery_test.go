package gallery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangerinesoft/photo-service/internal/objectstore/objectstoretest"
	"github.com/tangerinesoft/photo-service/internal/storage"
	"github.com/tangerinesoft/photo-service/internal/storage/storagetest"
	"github.com/tangerinesoft/photo-service/internal/types/categories"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
)

const publicBase = "http://localhost:9000/tangerine-photos"

type recorder struct {
	mu       sync.Mutex
	uploaded []string
	updated  []string
	deleted  []string
}

func (r *recorder) PublishPhotoUploaded(p *photos.Photo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploaded = append(r.uploaded, p.ID)
}

func (r *recorder) PublishPhotoUpdated(p *photos.Photo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, p.ID)
}

func (r *recorder) PublishPhotoDeleted(p *photos.Photo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, p.ID)
}

type fixture struct {
	svc     *Service
	catalog *storagetest.Memory
	store   *objectstoretest.Memory
	events  *recorder
}

func newFixture() *fixture {
	f := &fixture{
		catalog: storagetest.NewMemory(),
		store:   objectstoretest.NewMemory(),
		events:  &recorder{},
	}
	f.svc = New(f.catalog, f.store, f.events, publicBase+"/")
	return f
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

func TestUpload_StoresObjectAndRecordsPhoto(t *testing.T) {
	f := newFixture()
	data := pngBytes(t, 40, 30)

	photo, err := f.svc.Upload(context.Background(), photos.UploadInput{
		Data:        data,
		Filename:    "Golden.Hour.png",
		ContentType: "image/png",
		Category:    "street",
		Title:       strPtr("Golden hour"),
		SortOrder:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, "street/"+photo.ID+".png", photo.ObjectKey)
	assert.Equal(t, photo.ID+".png", photo.Filename)
	assert.Equal(t, "Golden.Hour.png", photo.OriginalFilename)
	assert.Equal(t, publicBase+"/"+photo.ObjectKey, photo.URL)
	assert.Equal(t, int64(len(data)), photo.FileSize)
	assert.Equal(t, 4, photo.SortOrder)
	assert.True(t, photo.IsVisible)
	assert.Zero(t, photo.ViewCount)
	require.NotNil(t, photo.Width)
	assert.Equal(t, 40, *photo.Width)
	assert.Equal(t, 30, *photo.Height)

	obj, ok := f.store.Get(photo.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, data, obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)

	stored, err := f.catalog.GetPhoto(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ObjectKey, stored.ObjectKey)

	cats := f.catalog.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "street", cats[0].Name)
	assert.Equal(t, "Street", cats[0].DisplayName)

	assert.Equal(t, []string{photo.ID}, f.events.uploaded)
}

func TestUpload_Defaults(t *testing.T) {
	f := newFixture()

	photo, err := f.svc.Upload(context.Background(), photos.UploadInput{
		Data:     []byte("definitely not an image"),
		Filename: "scan",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultCategory, photo.Category)
	assert.Equal(t, DefaultContentType, photo.ContentType)
	assert.Equal(t, DefaultCategory+"/"+photo.ID+".jpg", photo.ObjectKey)
	assert.True(t, photo.Exif.IsEmpty())
	assert.Equal(t, 1, f.store.Len())
}

func TestUpload_StoreFailureLeavesCatalogUntouched(t *testing.T) {
	f := newFixture()
	f.store.PutErr = errors.New("bucket unavailable")

	_, err := f.svc.Upload(context.Background(), photos.UploadInput{
		Data:     pngBytes(t, 2, 2),
		Filename: "a.png",
		Category: "macro",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.Contains(t, err.Error(), "bucket unavailable")

	assert.Zero(t, f.catalog.Calls["GetCategoryByName"])
	assert.Zero(t, f.catalog.Calls["CreateCategory"])
	assert.Zero(t, f.catalog.Calls["CreatePhoto"])
	assert.Empty(t, f.catalog.Photos())
	assert.Empty(t, f.catalog.Categories())
	assert.Empty(t, f.events.uploaded)
}

func TestUpload_RejectsInvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Upload(context.Background(), photos.UploadInput{Filename: "a.jpg"})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = f.svc.Upload(context.Background(), photos.UploadInput{
		Data:     []byte{1},
		Filename: "a.jpg",
		Category: "../etc",
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Zero(t, f.store.Len())
}

func TestUpload_CategoryCreatedOnce(t *testing.T) {
	f := newFixture()
	f.catalog.PutCategory(categories.Category{ID: "c0", Name: "landscape", SortOrder: 2, IsVisible: true})

	for i := 0; i < 3; i++ {
		_, err := f.svc.Upload(context.Background(), photos.UploadInput{
			Data:     []byte{byte(i)},
			Filename: "x.jpg",
			Category: "night sky",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.catalog.Calls["CreateCategory"])
	cat, err := f.catalog.GetCategoryByName(context.Background(), "night sky")
	require.NoError(t, err)
	assert.Equal(t, "Night Sky", cat.DisplayName)
	assert.Equal(t, 3, cat.SortOrder)
	assert.Len(t, f.catalog.Photos(), 3)
}

func TestUpload_ConcurrentCategoryCreation(t *testing.T) {
	f := newFixture()
	f.catalog.BeforeCreateCategory = func(c *categories.Category) {
		// Another request wins the race.
		f.catalog.PutCategory(categories.Category{ID: "winner", Name: c.Name, DisplayName: "Winner"})
	}

	photo, err := f.svc.Upload(context.Background(), photos.UploadInput{
		Data:     []byte{1, 2, 3},
		Filename: "x.jpg",
		Category: "portrait",
	})
	require.NoError(t, err)
	assert.Equal(t, "portrait", photo.Category)

	assert.Equal(t, 2, f.catalog.Calls["GetCategoryByName"])
	cats := f.catalog.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "winner", cats[0].ID)
}

func TestUpload_CatalogFailure(t *testing.T) {
	f := newFixture()
	f.catalog.Err["CreatePhoto"] = errors.New("db down")

	_, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageWrite)
	assert.Equal(t, 1, f.store.Len())
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":       "JPG",
		"archive.tar.gz":  "gz",
		"noext":           "jpg",
		"trailing.":       "jpg",
		"":                "jpg",
		".hidden":         "hidden",
		"my.photo.v2.png": "png",
		"a./../x":         "jpg",
		"shot.jp g":       "jpg",
		"x.abcdefghijk":   "jpg",
		"x.abcdefghij":    "abcdefghij",
		"raw.CR2":         "CR2",
	}
	for in, want := range tests {
		assert.Equal(t, want, Extension(in), "filename %q", in)
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"street":        "Street",
		"night sky":     "Night Sky",
		"black_white":   "Black_White",
		"b&w":           "B&W",
		"STREET":        "Street",
		"35mm film":     "35Mm Film",
		"uncategorized": "Uncategorized",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleCase(in), "input %q", in)
	}
}

func TestDeletePhoto(t *testing.T) {
	t.Run("removes object and row", func(t *testing.T) {
		f := newFixture()
		photo, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg"})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeletePhoto(context.Background(), photo.ID))

		_, ok := f.store.Get(photo.ObjectKey)
		assert.False(t, ok)
		_, err = f.catalog.GetPhoto(context.Background(), photo.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Equal(t, []string{photo.ID}, f.events.deleted)
	})

	t.Run("object already gone", func(t *testing.T) {
		f := newFixture()
		photo, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg"})
		require.NoError(t, err)
		require.NoError(t, f.store.DeleteObject(context.Background(), photo.ObjectKey))

		assert.NoError(t, f.svc.DeletePhoto(context.Background(), photo.ID))
		assert.Empty(t, f.catalog.Photos())
	})

	t.Run("store failure is ignored", func(t *testing.T) {
		f := newFixture()
		photo, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg"})
		require.NoError(t, err)
		f.store.DeleteErr = errors.New("timeout")

		assert.NoError(t, f.svc.DeletePhoto(context.Background(), photo.ID))
		assert.Empty(t, f.catalog.Photos())
	})

	t.Run("catalog failure keeps object", func(t *testing.T) {
		f := newFixture()
		photo, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg"})
		require.NoError(t, err)
		f.catalog.Err["DeletePhoto"] = errors.New("db down")

		assert.Error(t, f.svc.DeletePhoto(context.Background(), photo.ID))
		_, ok := f.store.Get(photo.ObjectKey)
		assert.True(t, ok)
		assert.Len(t, f.catalog.Photos(), 1)
		assert.Empty(t, f.events.deleted)
	})

	t.Run("missing photo", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.svc.DeletePhoto(context.Background(), "ghost"), storage.ErrNotFound)
	})
}

func TestUpdatePhoto(t *testing.T) {
	f := newFixture()
	photo, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg", Category: "street"})
	require.NoError(t, err)

	hidden := false
	got, err := f.svc.UpdatePhoto(context.Background(), photo.ID, photos.Update{
		Title:     strPtr("New title"),
		Category:  strPtr("travel"),
		IsVisible: &hidden,
	})
	require.NoError(t, err)

	assert.Equal(t, "travel", got.Category)
	assert.False(t, got.IsVisible)
	assert.Equal(t, photo.ObjectKey, got.ObjectKey)
	assert.Equal(t, photo.URL, got.URL)

	_, err = f.catalog.GetCategoryByName(context.Background(), "travel")
	assert.NoError(t, err)
	assert.Equal(t, []string{photo.ID}, f.events.updated)

	_, err = f.svc.UpdatePhoto(context.Background(), "ghost", photos.Update{Title: strPtr("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCounters(t *testing.T) {
	f := newFixture()
	photo, err := f.svc.Upload(context.Background(), photos.UploadInput{Data: []byte{1}, Filename: "a.jpg"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		n, err := f.svc.RecordView(context.Background(), photo.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}
	n, err := f.svc.RecordDownload(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.svc.RecordView(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	visits, err := f.svc.RecordVisit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), visits)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalViews)
	assert.Equal(t, int64(1), stats.TotalDownloads)
	assert.Equal(t, int64(1), stats.SiteVisits)
	require.Len(t, stats.TopPhotos, 1)
}

func TestCategories(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	street, err := f.svc.CreateCategory(ctx, categories.CreateRequest{Name: "street"})
	require.NoError(t, err)
	assert.Equal(t, "Street", street.DisplayName)
	assert.Equal(t, 0, street.SortOrder)

	film, err := f.svc.CreateCategory(ctx, categories.CreateRequest{Name: "film", DisplayName: strPtr("35mm Film")})
	require.NoError(t, err)
	assert.Equal(t, "35mm Film", film.DisplayName)
	assert.Equal(t, 1, film.SortOrder)

	_, err = f.svc.CreateCategory(ctx, categories.CreateRequest{Name: "street"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = f.svc.UpdateCategory(ctx, film.ID, categories.UpdateRequest{Name: strPtr("street")})
	assert.ErrorIs(t, err, storage.ErrConflict)

	require.NoError(t, f.svc.ReorderCategories(ctx, []string{film.ID, street.ID, "unknown"}))
	list, err := f.svc.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "film", list[0].Name)

	require.NoError(t, f.svc.DeleteCategory(ctx, film.ID))
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, film.ID), storage.ErrNotFound)
}

func TestSettings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	got, err := f.svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TANGERINE", got["site_title"])
	assert.Equal(t, "", got["contact_email"])

	require.NoError(t, f.svc.UpdateSettings(ctx, map[string]string{"site_title": "ORANGE", "custom": "x"}))

	got, err = f.svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORANGE", got["site_title"])
	assert.NotContains(t, got, "custom")
}
