package photos

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangerinesoft/photo-service/internal/config"
	"github.com/tangerinesoft/photo-service/internal/objectstore/objectstoretest"
	"github.com/tangerinesoft/photo-service/internal/services/gallery"
	"github.com/tangerinesoft/photo-service/internal/storage/storagetest"
	photoTypes "github.com/tangerinesoft/photo-service/internal/types/photos"
)

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

type fixture struct {
	mux     *http.ServeMux
	catalog *storagetest.Memory
	store   *objectstoretest.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog: storagetest.NewMemory(),
		store:   objectstoretest.NewMemory(),
	}
	svc := gallery.New(f.catalog, f.store, nil, "https://cdn.example.com")
	uploadCfg := config.Upload{
		MaxFileSize:      1 << 20,
		AllowedMimeTypes: []string{"image/jpeg", "image/png"},
		Timeout:          5 * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/photos", List(svc, false))
	mux.HandleFunc("GET /api/admin/photos", List(svc, true))
	mux.HandleFunc("GET /api/photos/{id}", Get(svc))
	mux.HandleFunc("POST /api/photos", Upload(svc, uploadCfg))
	mux.HandleFunc("PUT /api/photos/reorder", Reorder(svc))
	mux.HandleFunc("PUT /api/photos/{id}", Update(svc))
	mux.HandleFunc("DELETE /api/photos/{id}", Delete(svc))
	mux.HandleFunc("POST /api/photos/{id}/view", RecordView(svc))
	mux.HandleFunc("POST /api/photos/{id}/download", RecordDownload(svc))
	f.mux = mux
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 3))))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (f *fixture) upload(t *testing.T, category string) photoTypes.Photo {
	t.Helper()
	rec, env := f.do(t, uploadRequest(t, "shot.png", "image/png", pngBytes(t), map[string]string{"category": category}))
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	var p photoTypes.Photo
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	data := pngBytes(t)

	rec, env := f.do(t, uploadRequest(t, "sunset.png", "image/png", data, map[string]string{
		"category":   "street",
		"title":      "Sunset",
		"sort_order": "4",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)

	var p photoTypes.Photo
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "street", p.Category)
	assert.Equal(t, "sunset.png", p.OriginalFilename)
	assert.Equal(t, 4, p.SortOrder)
	require.NotNil(t, p.Title)
	assert.Equal(t, "Sunset", *p.Title)
	assert.Equal(t, "https://cdn.example.com/"+p.ObjectKey, p.URL)
	require.NotNil(t, p.Width)
	assert.Equal(t, 4, *p.Width)

	obj, ok := f.store.Get(p.ObjectKey)
	require.True(t, ok)
	assert.Len(t, obj.Data, len(data))
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture(t)

	t.Run("missing file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("category", "street"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec, _ := f.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		rec, env := f.do(t, uploadRequest(t, "notes.txt", "text/plain", []byte("hi"), nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Error, "unsupported content type")
	})

	t.Run("too large", func(t *testing.T) {
		big := make([]byte, (1<<20)+1)
		rec, _ := f.do(t, uploadRequest(t, "big.jpg", "image/jpeg", big, nil))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("empty file", func(t *testing.T) {
		rec, _ := f.do(t, uploadRequest(t, "empty.jpg", "image/jpeg", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad sort order", func(t *testing.T) {
		rec, _ := f.do(t, uploadRequest(t, "a.png", "image/png", pngBytes(t), map[string]string{"sort_order": "first"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid category", func(t *testing.T) {
		rec, _ := f.do(t, uploadRequest(t, "a.png", "image/png", pngBytes(t), map[string]string{"category": "a/b"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.catalog.Photos())
}

func TestUpload_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.PutErr = errors.New("bucket gone")

	rec, _ := f.do(t, uploadRequest(t, "a.png", "image/png", pngBytes(t), nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, f.catalog.Photos())
	assert.Empty(t, f.catalog.Categories())
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t)
	street := f.upload(t, "street")
	f.upload(t, "portrait")

	hidden := false
	_, err := f.catalog.UpdatePhoto(t.Context(), street.ID, photoTypes.Update{IsVisible: &hidden})
	require.NoError(t, err)

	var list []photoTypes.Photo
	_, env := f.do(t, httptest.NewRequest(http.MethodGet, "/api/photos", nil))
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	_, env = f.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/photos?category=street", nil))
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, street.ID, list[0].ID)

	rec, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/api/photos/"+street.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/photos/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	p := f.upload(t, "street")

	t.Run("form fields", func(t *testing.T) {
		form := url.Values{"title": {"Dusk"}, "is_visible": {"false"}, "category": {"night"}}
		req := httptest.NewRequest(http.MethodPut, "/api/photos/"+p.ID, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec, env := f.do(t, req)
		require.Equal(t, http.StatusOK, rec.Code, env.Error)

		var got photoTypes.Photo
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.NotNil(t, got.Title)
		assert.Equal(t, "Dusk", *got.Title)
		assert.False(t, got.IsVisible)
		assert.Equal(t, "night", got.Category)
		assert.Equal(t, p.ObjectKey, got.ObjectKey)
		assert.Equal(t, p.URL, got.URL)
		assert.Nil(t, got.Description)
	})

	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/photos/"+p.ID, strings.NewReader(`{"sort_order": 9}`))
		req.Header.Set("Content-Type", "application/json")

		rec, env := f.do(t, req)
		require.Equal(t, http.StatusOK, rec.Code, env.Error)
		var got photoTypes.Photo
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 9, got.SortOrder)
	})

	t.Run("bad boolean", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/photos/"+p.ID, strings.NewReader("is_visible=maybe"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec, _ := f.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing photo", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/photos/missing", strings.NewReader("title=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec, _ := f.do(t, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReorder(t *testing.T) {
	f := newFixture(t)
	a := f.upload(t, "street")
	b := f.upload(t, "street")

	body, _ := json.Marshal(photoTypes.ReorderRequest{IDs: []string{b.ID, a.ID}})
	rec, _ := f.do(t, httptest.NewRequest(http.MethodPut, "/api/photos/reorder", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := f.catalog.GetPhoto(t.Context(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SortOrder)
	got, err = f.catalog.GetPhoto(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SortOrder)

	rec, _ = f.do(t, httptest.NewRequest(http.MethodPut, "/api/photos/reorder", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	p := f.upload(t, "street")

	rec, _ := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/photos/"+p.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.catalog.Photos())

	rec, _ = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/photos/"+p.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	f := newFixture(t)
	p := f.upload(t, "street")

	for range 2 {
		rec, _ := f.do(t, httptest.NewRequest(http.MethodPost, "/api/photos/"+p.ID+"/view", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	_, env := f.do(t, httptest.NewRequest(http.MethodPost, "/api/photos/"+p.ID+"/download", nil))

	var counts map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, int64(1), counts["download_count"])

	got, err := f.catalog.GetPhoto(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)

	rec, _ := f.do(t, httptest.NewRequest(http.MethodPost, "/api/photos/missing/view", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
