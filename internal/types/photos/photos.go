package photos

import "time"

// Exif is the best-effort metadata extracted from an uploaded image.
// Every field is optional.
type Exif struct {
	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
	CameraMake   *string  `json:"camera_make,omitempty"`
	CameraModel  *string  `json:"camera_model,omitempty"`
	ISO          *int     `json:"iso,omitempty"`
	Aperture     *float64 `json:"aperture,omitempty"`
	ShutterSpeed *string  `json:"shutter_speed,omitempty"`
	FocalLength  *float64 `json:"focal_length,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (e Exif) IsEmpty() bool {
	return e == Exif{}
}

// Photo is a catalog entry referencing one stored object.
type Photo struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	ObjectKey        string    `json:"object_key"`
	URL              string    `json:"url"`
	Category         string    `json:"category"`
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	SortOrder        int       `json:"sort_order"`
	IsVisible        bool      `json:"is_visible"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	Exif                       // flattened into the photo JSON
	ViewCount        int64     `json:"view_count"`
	DownloadCount    int64     `json:"download_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Filter narrows a photo listing.
type Filter struct {
	Category      string
	IncludeHidden bool
}

// Update carries the mutable catalog fields of a photo. Nil fields are left untouched.
type Update struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100,excludesall=/\\"`
	SortOrder   *int    `json:"sort_order"`
	IsVisible   *bool   `json:"is_visible"`
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.SortOrder == nil && u.IsVisible == nil
}

// UploadInput is everything the ingestion pipeline needs for one image.
type UploadInput struct {
	Data        []byte
	Filename    string
	ContentType string
	Category    string  `validate:"required,max=100,excludesall=/\\"`
	Title       *string `validate:"omitempty,max=255"`
	Description *string
	SortOrder   int
}

// ReorderRequest lists ids in their new display order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,dive,required"`
}

// Counter names an incrementable photo counter.
type Counter string

const (
	CounterViews     Counter = "view_count"
	CounterDownloads Counter = "download_count"
)
