package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"packlist/internal/model"
)

// Lists returns summaries for all lists with the given archived state,
// most recently updated first.
func (s *Store) Lists(ctx context.Context, archived bool) ([]model.ListSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name, l.is_template, l.is_archived, l.created_at, l.updated_at,
			COUNT(i.id) AS total_items,
			COALESCE(SUM(CASE WHEN i.is_checked = 1 THEN 1 ELSE 0 END), 0) AS checked_items
		FROM lists l
		LEFT JOIN items i ON i.list_id = l.id
		WHERE l.is_archived = ?
		GROUP BY l.id
		ORDER BY l.updated_at DESC`, boolToInt(archived))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ListSummary{}
	for rows.Next() {
		var l model.ListSummary
		var tmpl, arch int
		if err := rows.Scan(&l.ID, &l.Name, &tmpl, &arch, &l.CreatedAt, &l.UpdatedAt, &l.TotalItems, &l.CheckedItems); err != nil {
			return nil, err
		}
		l.IsTemplate = model.Flag(tmpl != 0)
		l.IsArchived = model.Flag(arch != 0)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CreateList(ctx context.Context, name string, isTemplate bool) (model.List, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO lists (name, is_template) VALUES (?, ?)`,
		strings.TrimSpace(name), boolToInt(isTemplate))
	if err != nil {
		return model.List{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.List{}, err
	}
	return s.getListRow(ctx, id)
}

// GetList returns one list with its items, sorted by
// (category sort_order, item sort_order).
func (s *Store) GetList(ctx context.Context, id int64) (model.List, error) {
	l, err := s.getListRow(ctx, id)
	if err != nil {
		return model.List{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.list_id, i.category_id, c.name, i.text, i.is_checked, i.sort_order
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.list_id = ?
		ORDER BY c.sort_order, i.sort_order`, id)
	if err != nil {
		return model.List{}, err
	}
	defer rows.Close()

	l.Items = []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return model.List{}, err
		}
		l.Items = append(l.Items, it)
	}
	return l, rows.Err()
}

// ListPatch carries the partial-update fields of PATCH /lists/:id.
// Nil means "leave unchanged".
type ListPatch struct {
	Name       *string
	IsArchived *bool
	IsTemplate *bool
}

func (p ListPatch) empty() bool {
	return p.Name == nil && p.IsArchived == nil && p.IsTemplate == nil
}

func (s *Store) UpdateList(ctx context.Context, id int64, patch ListPatch) (model.List, error) {
	if _, err := s.getListRow(ctx, id); err != nil {
		return model.List{}, err
	}
	if patch.empty() {
		return model.List{}, ValidationError{Message: "No fields to update"}
	}

	fields := []string{}
	args := []any{}
	if patch.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.IsArchived != nil {
		fields = append(fields, "is_archived = ?")
		args = append(args, boolToInt(*patch.IsArchived))
	}
	if patch.IsTemplate != nil {
		fields = append(fields, "is_template = ?")
		args = append(args, boolToInt(*patch.IsTemplate))
	}
	fields = append(fields, "updated_at = datetime('now')")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE lists SET %s WHERE id = ?`, strings.Join(fields, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return model.List{}, err
	}
	return s.getListRow(ctx, id)
}

// DeleteList deletes the list row; items go with it via the declared
// ON DELETE CASCADE (foreign_keys=ON is set at open time).
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound("list", id)
	}
	return nil
}

// DuplicateList copies a list's metadata and all its items verbatim in one
// transaction. An empty name defaults to "<source> (copy)".
func (s *Store) DuplicateList(ctx context.Context, id int64, name string, isTemplate bool) (model.List, error) {
	src, err := s.getListRow(ctx, id)
	if err != nil {
		return model.List{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = src.Name + " (copy)"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.List{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO lists (name, is_template) VALUES (?, ?)`, name, boolToInt(isTemplate))
	if err != nil {
		return model.List{}, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return model.List{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO items (list_id, category_id, text, sort_order)
		SELECT ?, category_id, text, sort_order FROM items WHERE list_id = ?`, newID, id); err != nil {
		return model.List{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.List{}, err
	}
	return s.getListRow(ctx, newID)
}

// CreateFromTemplates builds one new non-template list from the deduplicated
// union of the given templates' items. Dedup key is (category_id,
// case-insensitive text); the kept sort_order is the minimum seen for that
// key across all templates.
func (s *Store) CreateFromTemplates(ctx context.Context, name string, templateIDs []int64) (model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(templateIDs) == 0 {
		return model.List{}, ValidationError{Message: "Name and template_ids[] required"}
	}

	placeholders := strings.Repeat("?,", len(templateIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(templateIDs))
	for i, id := range templateIDs {
		args[i] = id
	}

	var n int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM lists WHERE id IN (%s) AND is_template = 1`, placeholders)
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return model.List{}, err
	}
	if n != len(templateIDs) {
		return model.List{}, ValidationError{Message: "One or more template_ids are invalid"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.List{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO lists (name, is_template) VALUES (?, 0)`, name)
	if err != nil {
		return model.List{}, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return model.List{}, err
	}

	merge := fmt.Sprintf(`
		INSERT INTO items (list_id, category_id, text, sort_order)
		SELECT ?, category_id, text, MIN(sort_order) AS sort_order
		FROM items
		WHERE list_id IN (%s)
		GROUP BY category_id, LOWER(text)
		ORDER BY category_id, sort_order`, placeholders)
	mergeArgs := append([]any{newID}, args...)
	if _, err := tx.ExecContext(ctx, merge, mergeArgs...); err != nil {
		return model.List{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.List{}, err
	}
	return s.getListRow(ctx, newID)
}

func (s *Store) getListRow(ctx context.Context, id int64) (model.List, error) {
	var l model.List
	var tmpl, arch int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_template, is_archived, created_at, updated_at FROM lists WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &tmpl, &arch, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.List{}, errNotFound("list", id)
	}
	if err != nil {
		return model.List{}, err
	}
	l.IsTemplate = model.Flag(tmpl != 0)
	l.IsArchived = model.Flag(arch != 0)
	return l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
