package postgres

import (
	"context"
	"database/sql"

	"github.com/tangerinesoft/photo-service/internal/types/settings"
)

func (p *Postgres) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := p.Db.QueryContext(ctx, `SELECT key, COALESCE(value, '') FROM site_settings`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, mapError(err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return values, nil
}

func (p *Postgres) UpsertSettings(ctx context.Context, values map[string]string) error {
	query := `
	INSERT INTO site_settings (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	return p.withTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx, query, k, v); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func (p *Postgres) IncrementSiteStat(ctx context.Context, key string) (int64, error) {
	query := `
	INSERT INTO site_stats (key, value) VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET value = site_stats.value + 1, updated_at = NOW()
	RETURNING value
	`

	var value int64
	if err := p.Db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		return 0, mapError(err)
	}
	return value, nil
}

func (p *Postgres) GetStats(ctx context.Context) (settings.Stats, error) {
	var stats settings.Stats

	err := p.Db.QueryRowContext(ctx, `
	SELECT COUNT(*),
		COUNT(*) FILTER (WHERE is_visible),
		COALESCE(SUM(view_count), 0),
		COALESCE(SUM(download_count), 0),
		COALESCE(SUM(file_size), 0)
	FROM photos
	`).Scan(&stats.PhotoCount, &stats.VisiblePhotoCount, &stats.TotalViews, &stats.TotalDownloads, &stats.StorageBytes)
	if err != nil {
		return stats, mapError(err)
	}

	if err := p.Db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&stats.CategoryCount); err != nil {
		return stats, mapError(err)
	}

	err = p.Db.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT value FROM site_stats WHERE key = $1), 0)`, settings.StatSiteVisits,
	).Scan(&stats.SiteVisits)
	if err != nil {
		return stats, mapError(err)
	}

	rows, err := p.Db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos ORDER BY view_count DESC, created_at DESC LIMIT 5`)
	if err != nil {
		return stats, mapError(err)
	}
	stats.TopPhotos, err = scanPhotos(rows)
	if err != nil {
		return stats, err
	}

	return stats, nil
}
