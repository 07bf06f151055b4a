package categories

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	SortOrder   int       `json:"sort_order"`
	IsVisible   bool      `json:"is_visible"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100,excludesall=/\\"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
}

type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100,excludesall=/\\"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	IsVisible   *bool   `json:"is_visible"`
}

// ReorderRequest lists ids in their new display order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,dive,required"`
}
