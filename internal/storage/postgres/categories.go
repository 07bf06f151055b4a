package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tangerinesoft/photo-service/internal/types/categories"
)

const categoryColumns = `id, name, display_name, sort_order, is_visible, created_at`

func scanCategory(row rowScanner) (categories.Category, error) {
	var c categories.Category
	err := row.Scan(&c.ID, &c.Name, &c.DisplayName, &c.SortOrder, &c.IsVisible, &c.CreatedAt)
	return c, err
}

func (p *Postgres) CreateCategory(ctx context.Context, category *categories.Category) error {
	query := `
	INSERT INTO categories (id, name, display_name, sort_order, is_visible)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`

	err := p.Db.QueryRowContext(ctx, query,
		category.ID, category.Name, category.DisplayName, category.SortOrder, category.IsVisible,
	).Scan(&category.CreatedAt)
	return mapError(err)
}

func (p *Postgres) GetCategory(ctx context.Context, id string) (categories.Category, error) {
	c, err := scanCategory(p.Db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return categories.Category{}, mapError(err)
	}
	return c, nil
}

func (p *Postgres) GetCategoryByName(ctx context.Context, name string) (categories.Category, error) {
	c, err := scanCategory(p.Db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name))
	if err != nil {
		return categories.Category{}, mapError(err)
	}
	return c, nil
}

func (p *Postgres) ListCategories(ctx context.Context, includeHidden bool) ([]categories.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if !includeHidden {
		query += ` WHERE is_visible = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := p.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := []categories.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (p *Postgres) UpdateCategory(ctx context.Context, id string, update categories.UpdateRequest) (categories.Category, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.IsVisible != nil {
		add("is_visible", *update.IsVisible)
	}
	if len(sets) == 0 {
		return p.GetCategory(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), categoryColumns)

	c, err := scanCategory(p.Db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return categories.Category{}, mapError(err)
	}
	return c, nil
}

func (p *Postgres) DeleteCategory(ctx context.Context, id string) error {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

func (p *Postgres) ReorderCategories(ctx context.Context, ids []string) error {
	return p.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE categories SET sort_order = $1 WHERE id = $2`, i, id); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func (p *Postgres) NextCategorySortOrder(ctx context.Context) (int, error) {
	var next int
	err := p.Db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories`).Scan(&next)
	if err != nil {
		return 0, mapError(err)
	}
	return next, nil
}
