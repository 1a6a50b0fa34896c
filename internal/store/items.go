package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"packlist/internal/model"
)

// CreateItem appends a new unchecked item at the end of the (list, category)
// sequence: sort_order = current max + 1.
func (s *Store) CreateItem(ctx context.Context, listID int64, text string, categoryID int64) (model.Item, error) {
	if _, err := s.getListRow(ctx, listID); err != nil {
		return model.Item{}, err
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, categoryID).Scan(&exists); err != nil {
		return model.Item{}, err
	}
	if exists == 0 {
		return model.Item{}, errNotFound("category", categoryID)
	}

	var maxOrder sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM items WHERE list_id = ? AND category_id = ?`,
		listID, categoryID).Scan(&maxOrder); err != nil {
		return model.Item{}, err
	}
	next := int64(0)
	if maxOrder.Valid {
		next = maxOrder.Int64 + 1
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (list_id, category_id, text, sort_order) VALUES (?, ?, ?, ?)`,
		listID, categoryID, strings.TrimSpace(text), next)
	if err != nil {
		return model.Item{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, err
	}
	if err := touchList(ctx, s.db, listID); err != nil {
		return model.Item{}, err
	}
	return s.GetItem(ctx, id)
}

func (s *Store) GetItem(ctx context.Context, id int64) (model.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.list_id, i.category_id, c.name, i.text, i.is_checked, i.sort_order
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, errNotFound("item", id)
	}
	return it, err
}

// ItemPatch carries the partial-update fields of PATCH /items/:id.
type ItemPatch struct {
	Text       *string
	IsChecked  *bool
	CategoryID *int64
	SortOrder  *int
}

func (p ItemPatch) empty() bool {
	return p.Text == nil && p.IsChecked == nil && p.CategoryID == nil && p.SortOrder == nil
}

func (s *Store) UpdateItem(ctx context.Context, id int64, patch ItemPatch) (model.Item, error) {
	cur, err := s.GetItem(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	if patch.empty() {
		return model.Item{}, ValidationError{Message: "No fields to update"}
	}

	fields := []string{}
	args := []any{}
	if patch.Text != nil {
		fields = append(fields, "text = ?")
		args = append(args, strings.TrimSpace(*patch.Text))
	}
	if patch.IsChecked != nil {
		fields = append(fields, "is_checked = ?")
		args = append(args, boolToInt(*patch.IsChecked))
	}
	if patch.CategoryID != nil {
		fields = append(fields, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.SortOrder != nil {
		fields = append(fields, "sort_order = ?")
		args = append(args, *patch.SortOrder)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE items SET %s WHERE id = ?`, strings.Join(fields, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return model.Item{}, err
	}
	if err := touchList(ctx, s.db, cur.ListID); err != nil {
		return model.Item{}, err
	}
	return s.GetItem(ctx, id)
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	cur, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return err
	}
	return touchList(ctx, s.db, cur.ListID)
}

// ReorderItems atomically rewrites category_id/sort_order for a batch of
// items. Every write is scoped to the given list: entries whose id belongs
// to another list (or to no item) are silently ignored, not errored — the
// client computed the batch from a snapshot that may be slightly stale.
// All-or-nothing: any failed write rolls the whole batch back.
func (s *Store) ReorderItems(ctx context.Context, listID int64, batch []model.ItemPosition) error {
	if len(batch) == 0 {
		return ValidationError{Message: "items[] required"}
	}
	if _, err := s.getListRow(ctx, listID); err != nil {
		return err
	}
	for _, pos := range batch {
		if pos.ID <= 0 || pos.CategoryID <= 0 || pos.SortOrder < 0 {
			return ValidationError{Message: "items[] entries require id, category_id and sort_order"}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, pos := range batch {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET category_id = ?, sort_order = ? WHERE id = ? AND list_id = ?`,
			pos.CategoryID, pos.SortOrder, pos.ID, listID); err != nil {
			return err
		}
	}
	if err := touchList(ctx, tx, listID); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var it model.Item
	var checked int
	if err := row.Scan(&it.ID, &it.ListID, &it.CategoryID, &it.CategoryName, &it.Text, &checked, &it.SortOrder); err != nil {
		return model.Item{}, err
	}
	it.IsChecked = model.Flag(checked != 0)
	return it, nil
}
