package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tangerinesoft/photo-service/internal/config"
	"github.com/tangerinesoft/photo-service/internal/services/gallery"
	photoTypes "github.com/tangerinesoft/photo-service/internal/types/photos"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

var validate = validator.New()

// List returns photos ordered for display.
// @Summary List photos
// @Description Public listing returns visible photos only
// @Tags photos
// @Produce json
// @Param category query string false "Category name"
// @Success 200 {object} response.Response{data=[]photos.Photo} "Photos"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /api/photos [get]
func List(svc *gallery.Service, includeHidden bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := photoTypes.Filter{
			Category:      r.URL.Query().Get("category"),
			IncludeHidden: includeHidden,
		}

		list, err := svc.ListPhotos(r.Context(), filter)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Photos retrieved", list))
	}
}

// Get returns one photo.
// @Summary Get photo
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Response{data=photos.Photo} "Photo"
// @Failure 404 {object} response.Response "Photo not found"
// @Router /api/photos/{id} [get]
func Get(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo, err := svc.GetPhoto(r.Context(), r.PathValue("id"))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Photo retrieved", photo))
	}
}

// Upload ingests one image from a multipart form.
// @Summary Upload photo
// @Description Stores the image, extracts its metadata and records it in the catalog
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param category formData string false "Category name" default(uncategorized)
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param sort_order formData int false "Sort order"
// @Success 201 {object} response.Response{data=photos.Photo} "Photo uploaded"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 413 {object} response.Response "File too large"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/photos [post]
func Upload(svc *gallery.Service, cfg config.Upload) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileSize+multipartMemory)

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(errors.New("file too large")))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("file is required")))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType != "" && !allowedType(contentType, cfg.AllowedMimeTypes) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				fmt.Errorf("unsupported content type %q", contentType)))
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize+1))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if int64(len(data)) > cfg.MaxFileSize {
			response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(
				fmt.Errorf("file exceeds %d bytes", cfg.MaxFileSize)))
			return
		}

		in := photoTypes.UploadInput{
			Data:        data,
			Filename:    header.Filename,
			ContentType: contentType,
			Category:    r.FormValue("category"),
			Title:       optional(r.FormValue("title")),
			Description: optional(r.FormValue("description")),
		}
		if v := r.FormValue("sort_order"); v != "" {
			in.SortOrder, err = strconv.Atoi(v)
			if err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("sort_order must be an integer")))
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
		defer cancel()

		photo, err := svc.Upload(ctx, in)
		if err != nil {
			if errors.Is(err, gallery.ErrEmptyFile) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
			slog.Error("Photo upload failed",
				slog.String("filename", header.Filename),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Photo uploaded successfully", photo))
	}
}

// Update changes catalog fields of a photo. The object and its URL never change.
// @Summary Update photo
// @Tags photos
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param id path string true "Photo ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param category formData string false "Category name"
// @Param sort_order formData int false "Sort order"
// @Param is_visible formData bool false "Visible in the public gallery"
// @Success 200 {object} response.Response{data=photos.Photo} "Photo updated"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 404 {object} response.Response "Photo not found"
// @Security BearerAuth
// @Router /api/photos/{id} [put]
func Update(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := decodeUpdate(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		photo, err := svc.UpdatePhoto(r.Context(), r.PathValue("id"), update)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Photo updated", photo))
	}
}

// Reorder assigns sort positions from the order of the given ids.
// @Summary Reorder photos
// @Tags photos
// @Accept json
// @Produce json
// @Param request body photos.ReorderRequest true "Photo ids in display order"
// @Success 200 {object} response.Response "Photos reordered"
// @Failure 400 {object} response.Response "Bad request"
// @Security BearerAuth
// @Router /api/photos/reorder [put]
func Reorder(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req photoTypes.ReorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, err)
			return
		}

		if err := svc.ReorderPhotos(r.Context(), req.IDs); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Photos reordered", nil))
	}
}

// Delete removes a photo from the catalog and its object from storage.
// @Summary Delete photo
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Response "Photo deleted"
// @Failure 404 {object} response.Response "Photo not found"
// @Security BearerAuth
// @Router /api/photos/{id} [delete]
func Delete(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePhoto(r.Context(), r.PathValue("id")); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Photo deleted", nil))
	}
}

// RecordView counts one view of a photo.
// @Summary Record photo view
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Response "New view count"
// @Failure 404 {object} response.Response "Photo not found"
// @Router /api/photos/{id}/view [post]
func RecordView(svc *gallery.Service) http.HandlerFunc {
	return counter(svc.RecordView, "view_count")
}

// RecordDownload counts one download of a photo.
// @Summary Record photo download
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Response "New download count"
// @Failure 404 {object} response.Response "Photo not found"
// @Router /api/photos/{id}/download [post]
func RecordDownload(svc *gallery.Service) http.HandlerFunc {
	return counter(svc.RecordDownload, "download_count")
}

func counter(record func(context.Context, string) (int64, error), field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := record(r.Context(), r.PathValue("id"))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Recorded", map[string]int64{field: n}))
	}
}

func allowedType(contentType string, allowed []string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(allowed, strings.ToLower(mediaType))
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// decodeUpdate accepts a JSON body or form fields. Absent form fields are
// left untouched.
func decodeUpdate(r *http.Request) (photoTypes.Update, error) {
	var update photoTypes.Update

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			return update, errors.New("invalid request body")
		}
		return update, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return update, err
	}

	form := r.PostForm
	if v, ok := formValue(form, "title"); ok {
		update.Title = &v
	}
	if v, ok := formValue(form, "description"); ok {
		update.Description = &v
	}
	if v, ok := formValue(form, "category"); ok {
		update.Category = &v
	}
	if v, ok := formValue(form, "sort_order"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return update, errors.New("sort_order must be an integer")
		}
		update.SortOrder = &n
	}
	if v, ok := formValue(form, "is_visible"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return update, errors.New("is_visible must be a boolean")
		}
		update.IsVisible = &b
	}
	return update, nil
}

func formValue(form map[string][]string, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
