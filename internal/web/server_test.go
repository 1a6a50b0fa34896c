package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"packlist/internal/model"
	"packlist/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "packlist.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	srv, err := NewServer(st)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = st.Close()
	})
	return ts, st
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestListRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/lists", map[string]any{"name": "Trip"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created model.List
	decodeInto(t, resp, &created)
	if created.Name != "Trip" || created.ID == 0 {
		t.Fatalf("unexpected list: %+v", created)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/lists", map[string]any{"name": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank name status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/lists", nil)
	var summaries []model.ListSummary
	decodeInto(t, resp, &summaries)
	if len(summaries) != 1 || summaries[0].TotalItems != 0 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}

	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/lists/%d", ts.URL, created.ID),
		map[string]any{"is_archived": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d", resp.StatusCode)
	}
	var patched model.List
	decodeInto(t, resp, &patched)
	if !patched.IsArchived.Bool() {
		t.Fatalf("archive flag not set: %+v", patched)
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/lists/%d", ts.URL, created.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/lists/%d", ts.URL, created.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", resp.StatusCode)
	}
	var payload map[string]string
	decodeInto(t, resp, &payload)
	if payload["error"] != "List not found" {
		t.Fatalf("error payload = %+v", payload)
	}
}

func TestItemRoutes(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	l, _ := st.CreateList(ctx, "Trip", false)
	cats, _ := st.Categories(ctx)

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/lists/%d/items", ts.URL, l.ID),
		map[string]any{"text": "Socks", "category_id": cats[0].ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item status = %d", resp.StatusCode)
	}
	var it model.Item
	decodeInto(t, resp, &it)
	if it.Text != "Socks" || it.CategoryName != "Clothes" || it.SortOrder != 0 {
		t.Fatalf("unexpected item: %+v", it)
	}

	// Unknown category is a 400, not a 404: the list is the route resource.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/lists/%d/items", ts.URL, l.ID),
		map[string]any{"text": "x", "category_id": 9999})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad category status = %d", resp.StatusCode)
	}
	var payload map[string]string
	decodeInto(t, resp, &payload)
	if payload["error"] != "Invalid category_id" {
		t.Fatalf("error payload = %+v", payload)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/lists/9999/items",
		map[string]any{"text": "x", "category_id": cats[0].ID})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown list status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/items/%d", ts.URL, it.ID),
		map[string]any{"is_checked": 1})
	var checked model.Item
	decodeInto(t, resp, &checked)
	if !checked.IsChecked.Bool() {
		t.Fatalf("check failed: %+v", checked)
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/items/%d", ts.URL, it.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete item status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReorderRoute(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	l, _ := st.CreateList(ctx, "Trip", false)
	cats, _ := st.Categories(ctx)
	clothes, tech := cats[0].ID, cats[1].ID
	a, _ := st.CreateItem(ctx, l.ID, "A", clothes)
	b, _ := st.CreateItem(ctx, l.ID, "B", clothes)

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/lists/%d/items/reorder", ts.URL, l.ID),
		map[string]any{"items": []model.ItemPosition{
			{ID: a.ID, CategoryID: tech, SortOrder: 0},
			{ID: b.ID, CategoryID: clothes, SortOrder: 0},
		}})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reorder status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	moved, _ := st.GetItem(ctx, a.ID)
	if moved.CategoryID != tech {
		t.Fatalf("reorder not applied: %+v", moved)
	}

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/lists/%d/items/reorder", ts.URL, l.ID),
		map[string]any{"items": []model.ItemPosition{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty batch status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/lists/9999/items/reorder",
		map[string]any{"items": []model.ItemPosition{{ID: a.ID, CategoryID: clothes, SortOrder: 0}}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown list status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Entry with no category_id: a validation error, not a foreign key
	// failure inside the transaction.
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/lists/%d/items/reorder", ts.URL, l.ID),
		map[string]any{"items": []map[string]any{{"id": a.ID, "sort_order": 0}}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed entry status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCategoryRoutes(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/categories", map[string]any{"name": "Documents"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var c model.Category
	decodeInto(t, resp, &c)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/categories", map[string]any{"name": "Documents"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	l, _ := st.CreateList(ctx, "Trip", false)
	if _, err := st.CreateItem(ctx, l.ID, "Passport", c.ID); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", ts.URL, c.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("referenced delete status = %d", resp.StatusCode)
	}
	var conflict struct {
		Error     string `json:"error"`
		ItemCount int    `json:"item_count"`
	}
	decodeInto(t, resp, &conflict)
	if conflict.ItemCount != 1 {
		t.Fatalf("conflict payload = %+v", conflict)
	}
}

func TestSuggestionsRoute(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	l, _ := st.CreateList(ctx, "Old", false)
	cats, _ := st.Categories(ctx)
	if _, err := st.CreateItem(ctx, l.ID, "Socks", cats[0].ID); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/suggestions?q=So", nil)
	var sugg []model.Suggestion
	decodeInto(t, resp, &sugg)
	if len(sugg) != 1 || sugg[0].Text != "Socks" {
		t.Fatalf("unexpected suggestions: %+v", sugg)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/suggestions?q=S", nil)
	decodeInto(t, resp, &sugg)
	if len(sugg) != 0 {
		t.Fatalf("short query must return nothing: %+v", sugg)
	}
}

func TestFromTemplatesRoute(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	tpl, _ := st.CreateList(ctx, "Beach", true)
	cats, _ := st.Categories(ctx)
	if _, err := st.CreateItem(ctx, tpl.ID, "Towel", cats[0].ID); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/lists/from-templates",
		map[string]any{"name": "Summer", "template_ids": []int64{tpl.ID}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("from-templates status = %d", resp.StatusCode)
	}
	var l model.List
	decodeInto(t, resp, &l)
	full, _ := st.GetList(ctx, l.ID)
	if len(full.Items) != 1 || full.Items[0].Text != "Towel" {
		t.Fatalf("items not copied: %+v", full.Items)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/lists/from-templates",
		map[string]any{"name": "Summer"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing ids status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}
