package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tangerinesoft/photo-service/internal/services/gallery"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

const serviceName = "tangerine-photo-api"

// Health reports liveness.
// @Summary Health check
// @Tags site
// @Produce json
// @Success 200 {object} map[string]string "Service is up"
// @Router /api/health [get]
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
		})
	}
}

// Settings returns the public site settings.
// @Summary Site settings
// @Tags site
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string} "Settings"
// @Router /api/settings [get]
func Settings(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := svc.Settings(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Settings retrieved", values))
	}
}

// UpdateSettings upserts the given keys.
// @Summary Update site settings
// @Tags site
// @Accept json
// @Produce json
// @Param request body map[string]string true "Settings to change"
// @Success 200 {object} response.Response{data=map[string]string} "Settings updated"
// @Failure 400 {object} response.Response "Bad request"
// @Security BearerAuth
// @Router /api/settings [put]
func UpdateSettings(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var values map[string]string
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		if err := svc.UpdateSettings(r.Context(), values); err != nil {
			response.Error(w, err)
			return
		}

		updated, err := svc.Settings(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Settings updated", updated))
	}
}

// RecordVisit counts one gallery visit.
// @Summary Record site visit
// @Tags site
// @Produce json
// @Success 200 {object} response.Response "New visit count"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Router /api/stats/visit [post]
func RecordVisit(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.RecordVisit(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Visit recorded", map[string]int64{"site_visits": n}))
	}
}

// Stats returns the admin dashboard summary.
// @Summary Admin statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=settings.Stats} "Statistics"
// @Security BearerAuth
// @Router /api/admin/stats [get]
func Stats(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Stats retrieved", stats))
	}
}
