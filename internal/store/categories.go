package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"packlist/internal/model"
)

func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_order FROM categories ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory appends a category at the end of the global order.
// A duplicate name maps to a ConflictError (the name column is UNIQUE).
func (s *Store) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	var maxOrder sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories`).Scan(&maxOrder); err != nil {
		return model.Category{}, err
	}
	next := int64(0)
	if maxOrder.Valid {
		next = maxOrder.Int64 + 1
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name, sort_order) VALUES (?, ?)`,
		strings.TrimSpace(name), next)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Category{}, ConflictError{Message: "Category already exists"}
		}
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return s.getCategoryRow(ctx, id)
}

// CategoryPatch carries the partial-update fields of PATCH /categories/:id.
type CategoryPatch struct {
	Name      *string
	SortOrder *int
}

func (p CategoryPatch) empty() bool {
	return p.Name == nil && p.SortOrder == nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (model.Category, error) {
	if _, err := s.getCategoryRow(ctx, id); err != nil {
		return model.Category{}, err
	}
	if patch.empty() {
		return model.Category{}, ValidationError{Message: "No fields to update"}
	}

	fields := []string{}
	args := []any{}
	if patch.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.SortOrder != nil {
		fields = append(fields, "sort_order = ?")
		args = append(args, *patch.SortOrder)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE categories SET %s WHERE id = ?`, strings.Join(fields, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return model.Category{}, err
	}
	return s.getCategoryRow(ctx, id)
}

// DeleteCategory refuses to delete a category that items still reference;
// the ConflictError carries the referencing count so the caller can say
// "reassign N items first".
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE category_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ConflictError{
			Message:   "Cannot delete category with existing items. Reassign items first.",
			ItemCount: n,
		}
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound("category", id)
	}
	return nil
}

func (s *Store) getCategoryRow(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name, sort_order FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, errNotFound("category", id)
	}
	return c, err
}
