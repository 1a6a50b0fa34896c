package store

import (
	"context"
	"strings"

	"packlist/internal/model"
)

const suggestionLimit = 10

// Suggestions returns autocomplete candidates for q: prefix match against
// historical item text, grouped case-insensitively per category and ranked
// by frequency. When excludeListID > 0, terms already present on that list
// are removed (and the list's own items don't count toward frequency).
//
// Queries shorter than 2 characters return no results; the lookup honors
// ctx so a superseded in-flight request can be aborted.
func (s *Store) Suggestions(ctx context.Context, q string, excludeListID int64) ([]model.Suggestion, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return []model.Suggestion{}, nil
	}
	pattern := q + "%"

	var query string
	var args []any
	if excludeListID > 0 {
		query = `
			SELECT i.text, i.category_id, c.name, COUNT(*) AS frequency
			FROM items i
			JOIN categories c ON c.id = i.category_id
			WHERE i.text LIKE ?
				AND i.list_id != ?
				AND LOWER(i.text) NOT IN (SELECT LOWER(text) FROM items WHERE list_id = ?)
			GROUP BY LOWER(i.text), i.category_id
			ORDER BY frequency DESC
			LIMIT ?`
		args = []any{pattern, excludeListID, excludeListID, suggestionLimit}
	} else {
		query = `
			SELECT i.text, i.category_id, c.name, COUNT(*) AS frequency
			FROM items i
			JOIN categories c ON c.id = i.category_id
			WHERE i.text LIKE ?
			GROUP BY LOWER(i.text), i.category_id
			ORDER BY frequency DESC
			LIMIT ?`
		args = []any{pattern, suggestionLimit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Suggestion{}
	for rows.Next() {
		var sg model.Suggestion
		if err := rows.Scan(&sg.Text, &sg.CategoryID, &sg.CategoryName, &sg.Frequency); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}
