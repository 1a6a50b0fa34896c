// Package client is the HTTP side of the terminal UI: a thin typed wrapper
// over the JSON API with one method per route.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"packlist/internal/model"
)

// APIError is a non-2xx response decoded from the server's error payload.
type APIError struct {
	Status    int
	Message   string
	ItemCount int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

type Client struct {
	base string
	hc   *http.Client
}

func New(base string) *Client {
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Lists(ctx context.Context, archived bool) ([]model.ListSummary, error) {
	path := "/api/lists"
	if archived {
		path += "?archived=true"
	}
	var out []model.ListSummary
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateList(ctx context.Context, name string, isTemplate bool) (model.List, error) {
	body := map[string]any{"name": name, "is_template": flag(isTemplate)}
	var out model.List
	err := c.do(ctx, http.MethodPost, "/api/lists", body, &out)
	return out, err
}

func (c *Client) CreateFromTemplates(ctx context.Context, name string, templateIDs []int64) (model.List, error) {
	body := map[string]any{"name": name, "template_ids": templateIDs}
	var out model.List
	err := c.do(ctx, http.MethodPost, "/api/lists/from-templates", body, &out)
	return out, err
}

func (c *Client) GetList(ctx context.Context, id int64) (model.List, error) {
	var out model.List
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/lists/%d", id), nil, &out)
	return out, err
}

// ListPatch carries only the fields to change; nil fields are omitted from
// the request body.
type ListPatch struct {
	Name       *string     `json:"name,omitempty"`
	IsArchived *model.Flag `json:"is_archived,omitempty"`
	IsTemplate *model.Flag `json:"is_template,omitempty"`
}

func (c *Client) UpdateList(ctx context.Context, id int64, patch ListPatch) (model.List, error) {
	var out model.List
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/lists/%d", id), patch, &out)
	return out, err
}

func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/lists/%d", id), nil, nil)
}

func (c *Client) DuplicateList(ctx context.Context, id int64, name string, isTemplate bool) (model.List, error) {
	body := map[string]any{"is_template": flag(isTemplate)}
	if name != "" {
		body["name"] = name
	}
	var out model.List
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/lists/%d/duplicate", id), body, &out)
	return out, err
}

func (c *Client) CreateItem(ctx context.Context, listID int64, text string, categoryID int64) (model.Item, error) {
	body := map[string]any{"text": text, "category_id": categoryID}
	var out model.Item
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/lists/%d/items", listID), body, &out)
	return out, err
}

type ItemPatch struct {
	Text       *string     `json:"text,omitempty"`
	IsChecked  *model.Flag `json:"is_checked,omitempty"`
	CategoryID *int64      `json:"category_id,omitempty"`
	SortOrder  *int        `json:"sort_order,omitempty"`
}

func (c *Client) UpdateItem(ctx context.Context, id int64, patch ItemPatch) (model.Item, error) {
	var out model.Item
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/items/%d", id), patch, &out)
	return out, err
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", id), nil, nil)
}

func (c *Client) ReorderItems(ctx context.Context, listID int64, items []model.ItemPosition) error {
	body := map[string]any{"items": items}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/lists/%d/items/reorder", listID), body, nil)
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	var out model.Category
	err := c.do(ctx, http.MethodPost, "/api/categories", map[string]any{"name": name}, &out)
	return out, err
}

type CategoryPatch struct {
	Name      *string `json:"name,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (model.Category, error) {
	var out model.Category
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/categories/%d", id), patch, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil, nil)
}

// Suggestions is the autocomplete backend. Callers cancel the ctx when the
// input changes before the response lands.
func (c *Client) Suggestions(ctx context.Context, q string, excludeListID int64) ([]model.Suggestion, error) {
	vals := url.Values{"q": {q}}
	if excludeListID > 0 {
		vals.Set("exclude_list_id", strconv.FormatInt(excludeListID, 10))
	}
	var out []model.Suggestion
	err := c.do(ctx, http.MethodGet, "/api/suggestions?"+vals.Encode(), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error     string `json:"error"`
		ItemCount int    `json:"item_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.ItemCount = payload.ItemCount
	}
	return apiErr
}

func flag(b bool) model.Flag { return model.Flag(b) }
