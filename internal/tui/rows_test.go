package tui

import (
	"testing"
	"time"

	"packlist/internal/model"
)

func TestBuildListRows(t *testing.T) {
	cats := []model.Category{
		{ID: 1, Name: "Clothes", SortOrder: 0},
		{ID: 2, Name: "Tech", SortOrder: 1},
	}
	items := []model.Item{
		{ID: 10, CategoryID: 1, Text: "B", SortOrder: 1},
		{ID: 11, CategoryID: 1, Text: "A", SortOrder: 0},
		{ID: 20, CategoryID: 1, Text: "C", SortOrder: 2, IsChecked: true},
	}

	rows := buildListRows(cats, items)

	want := []rowExpectation{
		{listRowCategory, "Clothes"},
		{listRowItem, "A"},
		{listRowItem, "B"},
		{listRowEmptyCategory, "Tech"},
		{listRowPackedHeader, ""},
		{listRowPackedCategory, "Clothes"},
		{listRowPackedItem, "C"},
	}
	checkRows(t, rows, want)
}

func TestBuildListRowsPackedGroupedByCategory(t *testing.T) {
	cats := []model.Category{
		{ID: 1, Name: "Clothes", SortOrder: 0},
		{ID: 2, Name: "Tech", SortOrder: 1},
	}
	// Checked items land under their own category sub-headers in category
	// order, not in one flat run.
	items := []model.Item{
		{ID: 30, CategoryID: 2, Text: "Charger", SortOrder: 0, IsChecked: true},
		{ID: 31, CategoryID: 1, Text: "Socks", SortOrder: 1, IsChecked: true},
		{ID: 32, CategoryID: 1, Text: "Hat", SortOrder: 0, IsChecked: true},
	}

	rows := buildListRows(cats, items)

	want := []rowExpectation{
		{listRowEmptyCategory, "Clothes"},
		{listRowEmptyCategory, "Tech"},
		{listRowPackedHeader, ""},
		{listRowPackedCategory, "Clothes"},
		{listRowPackedItem, "Hat"},
		{listRowPackedItem, "Socks"},
		{listRowPackedCategory, "Tech"},
		{listRowPackedItem, "Charger"},
	}
	checkRows(t, rows, want)
}

type rowExpectation struct {
	kind listRowKind
	text string
}

func checkRows(t *testing.T, rows []listRow, want []rowExpectation) {
	t.Helper()
	if len(rows) != len(want) {
		t.Fatalf("row count = %d; want %d (%+v)", len(rows), len(want), rows)
	}
	for i, w := range want {
		if rows[i].kind != w.kind {
			t.Fatalf("row %d kind = %v; want %v", i, rows[i].kind, w.kind)
		}
		got := rows[i].item.Text
		switch w.kind {
		case listRowCategory, listRowEmptyCategory, listRowPackedCategory:
			got = rows[i].category.Name
		}
		if w.text != "" && got != w.text {
			t.Fatalf("row %d text = %q; want %q", i, got, w.text)
		}
	}
}

func TestBuildListRowsNoPackedSection(t *testing.T) {
	cats := []model.Category{{ID: 1, Name: "Clothes"}}
	rows := buildListRows(cats, []model.Item{{ID: 10, CategoryID: 1, Text: "A"}})
	for _, r := range rows {
		if r.kind == listRowPackedHeader {
			t.Fatalf("packed header rendered with nothing packed")
		}
	}
}

func TestBuildHomeRows(t *testing.T) {
	summaries := []model.ListSummary{
		{ID: 1, Name: "Trip"},
		{ID: 2, Name: "Beach kit", IsTemplate: true},
	}
	rows := buildHomeRows(summaries, false)

	kinds := make([]homeRowKind, len(rows))
	for i, r := range rows {
		kinds[i] = r.kind
	}
	want := []homeRowKind{homeRowHeader, homeRowList, homeRowHeader, homeRowList}
	if len(kinds) != len(want) {
		t.Fatalf("rows = %+v", rows)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("row %d kind = %v; want %v", i, kinds[i], want[i])
		}
	}
	if rows[1].summary.ID != 1 || rows[3].summary.ID != 2 {
		t.Fatalf("sections misordered: %+v", rows)
	}
}

func TestBuildHomeRowsEmptySections(t *testing.T) {
	rows := buildHomeRows(nil, false)
	var empties int
	for _, r := range rows {
		if r.kind == homeRowEmpty {
			empties++
		}
	}
	if empties != 2 {
		t.Fatalf("empty placeholders = %d; want 2", empties)
	}
}

func TestCloseInputCancelsSuggestionFetch(t *testing.T) {
	var cancelled bool
	m := listModel{mode: listAddItem, suggestCancel: func() { cancelled = true }}

	m.closeInput()

	if !cancelled {
		t.Fatalf("in-flight suggestion lookup not cancelled")
	}
	if m.suggestCancel != nil {
		t.Fatalf("stale cancel func retained")
	}
}

func TestRelTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		raw  string
		want string
	}{
		{"2026-03-10 11:59:40", "just now"},
		{"2026-03-10 11:30:00", "30m ago"},
		{"2026-03-10 06:00:00", "6h ago"},
		{"2026-03-05 12:00:00", "5d ago"},
		{"2025-01-01 00:00:00", "Jan 1, 2025"},
		{"not a timestamp", "not a timestamp"},
	}
	for _, tc := range cases {
		if got := relTime(tc.raw, now); got != tc.want {
			t.Fatalf("relTime(%q) = %q; want %q", tc.raw, got, tc.want)
		}
	}
}
