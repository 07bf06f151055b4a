package site

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangerinesoft/photo-service/internal/objectstore/objectstoretest"
	"github.com/tangerinesoft/photo-service/internal/services/gallery"
	"github.com/tangerinesoft/photo-service/internal/storage/storagetest"
	"github.com/tangerinesoft/photo-service/internal/types/settings"
)

func newService() (*gallery.Service, *storagetest.Memory) {
	catalog := storagetest.NewMemory()
	return gallery.New(catalog, objectstoretest.NewMemory(), nil, "https://cdn.example.com"), catalog
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health()(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"tangerine-photo-api"}`, rec.Body.String())
}

func TestSettings(t *testing.T) {
	svc, _ := newService()

	rec := httptest.NewRecorder()
	UpdateSettings(svc)(rec, httptest.NewRequest(http.MethodPut, "/api/settings",
		strings.NewReader(`{"site_title": "Orange", "contact_email": "a@b.c"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	Settings(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Orange", env.Data["site_title"])
	assert.Equal(t, "a@b.c", env.Data["contact_email"])
	assert.Contains(t, env.Data, "douyin_url")

	rec = httptest.NewRecorder()
	UpdateSettings(svc)(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`["nope"]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisitAndStats(t *testing.T) {
	svc, catalog := newService()

	for range 3 {
		rec := httptest.NewRecorder()
		RecordVisit(svc)(rec, httptest.NewRequest(http.MethodPost, "/api/stats/visit", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	Stats(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data settings.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, int64(3), env.Data.SiteVisits)

	catalog.Err["GetStats"] = errors.New("db down")
	rec = httptest.NewRecorder()
	Stats(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
