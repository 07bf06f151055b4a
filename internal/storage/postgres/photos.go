package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tangerinesoft/photo-service/internal/types/photos"
)

const photoColumns = `id, filename, original_filename, object_key, url, category, title, description,
	sort_order, is_visible, file_size, content_type, width, height, camera_make, camera_model,
	iso, aperture, shutter_speed, focal_length, view_count, download_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (photos.Photo, error) {
	var p photos.Photo
	err := row.Scan(
		&p.ID, &p.Filename, &p.OriginalFilename, &p.ObjectKey, &p.URL, &p.Category, &p.Title, &p.Description,
		&p.SortOrder, &p.IsVisible, &p.FileSize, &p.ContentType, &p.Width, &p.Height, &p.CameraMake, &p.CameraModel,
		&p.ISO, &p.Aperture, &p.ShutterSpeed, &p.FocalLength, &p.ViewCount, &p.DownloadCount, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanPhotos(rows *sql.Rows) ([]photos.Photo, error) {
	defer rows.Close()

	result := []photos.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (p *Postgres) CreatePhoto(ctx context.Context, photo *photos.Photo) error {
	query := `
	INSERT INTO photos (id, filename, original_filename, object_key, url, category, title, description,
		sort_order, is_visible, file_size, content_type, width, height, camera_make, camera_model,
		iso, aperture, shutter_speed, focal_length, view_count, download_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, 0, 0)
	RETURNING created_at, updated_at
	`

	err := p.Db.QueryRowContext(ctx, query,
		photo.ID, photo.Filename, photo.OriginalFilename, photo.ObjectKey, photo.URL, photo.Category,
		photo.Title, photo.Description, photo.SortOrder, photo.IsVisible, photo.FileSize, photo.ContentType,
		photo.Width, photo.Height, photo.CameraMake, photo.CameraModel, photo.ISO, photo.Aperture,
		photo.ShutterSpeed, photo.FocalLength,
	).Scan(&photo.CreatedAt, &photo.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	photo.ViewCount = 0
	photo.DownloadCount = 0
	return nil
}

func (p *Postgres) GetPhoto(ctx context.Context, id string) (photos.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	photo, err := scanPhoto(p.Db.QueryRowContext(ctx, query, id))
	if err != nil {
		return photos.Photo{}, mapError(err)
	}
	return photo, nil
}

func (p *Postgres) ListPhotos(ctx context.Context, filter photos.Filter) ([]photos.Photo, error) {
	var (
		where []string
		args  []any
	)
	if !filter.IncludeHidden {
		where = append(where, "is_visible = TRUE")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + photoColumns + ` FROM photos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY sort_order ASC, created_at DESC`

	rows, err := p.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return scanPhotos(rows)
}

func (p *Postgres) UpdatePhoto(ctx context.Context, id string, update photos.Update) (photos.Photo, error) {
	if update.IsEmpty() {
		return p.GetPhoto(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.SortOrder != nil {
		add("sort_order", *update.SortOrder)
	}
	if update.IsVisible != nil {
		add("is_visible", *update.IsVisible)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE photos SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), photoColumns)

	photo, err := scanPhoto(p.Db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return photos.Photo{}, mapError(err)
	}
	return photo, nil
}

func (p *Postgres) DeletePhoto(ctx context.Context, id string) error {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

func (p *Postgres) ReorderPhotos(ctx context.Context, ids []string) error {
	return p.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE photos SET sort_order = $1, updated_at = NOW() WHERE id = $2`, i, id); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func (p *Postgres) IncrementPhotoCounter(ctx context.Context, id string, counter photos.Counter) (int64, error) {
	switch counter {
	case photos.CounterViews, photos.CounterDownloads:
	default:
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	query := fmt.Sprintf(`UPDATE photos SET %[1]s = %[1]s + 1 WHERE id = $1 RETURNING %[1]s`, counter)

	var value int64
	if err := p.Db.QueryRowContext(ctx, query, id).Scan(&value); err != nil {
		return 0, mapError(err)
	}
	return value, nil
}
