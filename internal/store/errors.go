package store

import "fmt"

// NotFoundError reports an unknown list/item/category id. Handlers map it to
// 404 (or 400 for referenced-entity validation, e.g. an item's category).
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

func errNotFound(kind string, id int64) error {
	return NotFoundError{Kind: kind, ID: id}
}

// ConflictError reports a mutation blocked by existing state: a duplicate
// category name, or deleting a category that items still reference
// (ItemCount carries the referencing count in that case).
type ConflictError struct {
	Message   string
	ItemCount int
}

func (e ConflictError) Error() string { return e.Message }

// ValidationError reports caller input the store refuses to act on, e.g.
// template ids that are not templates. No mutation has happened.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }
