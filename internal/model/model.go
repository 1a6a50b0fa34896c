package model

// Category is a global grouping label shared by every list (not list-scoped).
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// Item is a single packable entry. SortOrder is meaningful only relative to
// the other unchecked items of the same (list, category) pair.
type Item struct {
	ID         int64 `json:"id"`
	ListID     int64 `json:"list_id"`
	CategoryID int64 `json:"category_id"`
	// CategoryName is denormalized onto the wire by the server (JOIN against
	// categories); it is never written back.
	CategoryName string `json:"category_name,omitempty"`
	Text         string `json:"text"`
	IsChecked    Flag   `json:"is_checked"`
	SortOrder    int    `json:"sort_order"`
}

// List is a named collection of items, optionally flagged as a reusable
// template. UpdatedAt moves on any item/child change.
type List struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsTemplate Flag   `json:"is_template"`
	IsArchived Flag   `json:"is_archived"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`

	// Items is populated on single-list reads, sorted by
	// (category sort_order, item sort_order).
	Items []Item `json:"items,omitempty"`
}

// ListSummary is the home-page projection: list metadata plus item counts.
type ListSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	IsTemplate   Flag   `json:"is_template"`
	IsArchived   Flag   `json:"is_archived"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	TotalItems   int    `json:"total_items"`
	CheckedItems int    `json:"checked_items"`
}

// Suggestion is a derived, non-persisted projection computed from historical
// items across other lists.
type Suggestion struct {
	Text         string `json:"text"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Frequency    int    `json:"frequency"`
}

// ItemPosition is one entry of a reorder batch: the authoritative
// (category, sort_order) assignment for a single item.
type ItemPosition struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"category_id"`
	SortOrder  int   `json:"sort_order"`
}
