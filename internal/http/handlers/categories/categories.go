package categories

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tangerinesoft/photo-service/internal/services/gallery"
	categoryTypes "github.com/tangerinesoft/photo-service/internal/types/categories"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

var validate = validator.New()

// List returns categories in display order.
// @Summary List categories
// @Description Public listing returns visible categories only
// @Tags categories
// @Produce json
// @Success 200 {object} response.Response{data=[]categories.Category} "Categories"
// @Router /api/categories [get]
func List(svc *gallery.Service, includeHidden bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListCategories(r.Context(), includeHidden)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Categories retrieved", list))
	}
}

// Create adds a category at the end of the display order.
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body categories.CreateRequest true "Category"
// @Success 201 {object} response.Response{data=categories.Category} "Category created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 409 {object} response.Response "Name already taken"
// @Security BearerAuth
// @Router /api/categories [post]
func Create(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryTypes.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		cat, err := svc.CreateCategory(r.Context(), req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Category created", cat))
	}
}

// Update changes the name, display name or visibility of a category.
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body categories.UpdateRequest true "Fields to change"
// @Success 200 {object} response.Response{data=categories.Category} "Category updated"
// @Failure 404 {object} response.Response "Category not found"
// @Failure 409 {object} response.Response "Name already taken"
// @Security BearerAuth
// @Router /api/categories/{id} [put]
func Update(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryTypes.UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		cat, err := svc.UpdateCategory(r.Context(), r.PathValue("id"), req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Category updated", cat))
	}
}

// Reorder assigns sort positions from the order of the given ids.
// @Summary Reorder categories
// @Tags categories
// @Accept json
// @Produce json
// @Param request body categories.ReorderRequest true "Category ids in display order"
// @Success 200 {object} response.Response "Categories reordered"
// @Security BearerAuth
// @Router /api/categories/reorder [put]
func Reorder(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryTypes.ReorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, err)
			return
		}

		if err := svc.ReorderCategories(r.Context(), req.IDs); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Categories reordered", nil))
	}
}

// Delete removes a category. Photos keep their category name.
// @Summary Delete category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Response "Category deleted"
// @Failure 404 {object} response.Response "Category not found"
// @Security BearerAuth
// @Router /api/categories/{id} [delete]
func Delete(svc *gallery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Category deleted", nil))
	}
}
