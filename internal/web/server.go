package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"packlist/internal/model"
	"packlist/internal/store"
)

// Server exposes the packing-list store as a JSON API. Handlers are thin:
// request decode, store call, error-to-status mapping.
type Server struct {
	st *store.Store
}

func NewServer(st *store.Store) (*Server, error) {
	if st == nil {
		return nil, errors.New("web: nil store")
	}
	return &Server{st: st}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/lists", s.handleLists)
	mux.HandleFunc("POST /api/lists", s.handleListCreate)
	mux.HandleFunc("POST /api/lists/from-templates", s.handleListFromTemplates)
	mux.HandleFunc("GET /api/lists/{listId}", s.handleListGet)
	mux.HandleFunc("PATCH /api/lists/{listId}", s.handleListUpdate)
	mux.HandleFunc("DELETE /api/lists/{listId}", s.handleListDelete)
	mux.HandleFunc("POST /api/lists/{listId}/duplicate", s.handleListDuplicate)
	mux.HandleFunc("POST /api/lists/{listId}/items", s.handleItemCreate)
	mux.HandleFunc("PUT /api/lists/{listId}/items/reorder", s.handleItemsReorder)

	mux.HandleFunc("PATCH /api/items/{itemId}", s.handleItemUpdate)
	mux.HandleFunc("DELETE /api/items/{itemId}", s.handleItemDelete)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/categories", s.handleCategoryCreate)
	mux.HandleFunc("PATCH /api/categories/{categoryId}", s.handleCategoryUpdate)
	mux.HandleFunc("DELETE /api/categories/{categoryId}", s.handleCategoryDelete)

	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// -- lists

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	archived := r.URL.Query().Get("archived") == "true"
	lists, err := s.st.Lists(r.Context(), archived)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleListCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string     `json:"name"`
		IsTemplate model.Flag `json:"is_template"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	l, err := s.st.CreateList(r.Context(), strings.TrimSpace(req.Name), req.IsTemplate.Bool())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListFromTemplates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		TemplateIDs []int64 `json:"template_ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || len(req.TemplateIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Name and template_ids are required")
		return
	}
	l, err := s.st.CreateFromTemplates(r.Context(), strings.TrimSpace(req.Name), req.TemplateIDs)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "listId")
	if !ok {
		return
	}
	l, err := s.st.GetList(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleListUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "listId")
	if !ok {
		return
	}
	var req struct {
		Name       *string     `json:"name"`
		IsArchived *model.Flag `json:"is_archived"`
		IsTemplate *model.Flag `json:"is_template"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	patch := store.ListPatch{Name: req.Name}
	if req.IsArchived != nil {
		v := req.IsArchived.Bool()
		patch.IsArchived = &v
	}
	if req.IsTemplate != nil {
		v := req.IsTemplate.Bool()
		patch.IsTemplate = &v
	}
	l, err := s.st.UpdateList(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleListDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "listId")
	if !ok {
		return
	}
	if err := s.st.DeleteList(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDuplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "listId")
	if !ok {
		return
	}
	var req struct {
		Name       string     `json:"name"`
		IsTemplate model.Flag `json:"is_template"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	l, err := s.st.DuplicateList(r.Context(), id, strings.TrimSpace(req.Name), req.IsTemplate.Bool())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// -- items

func (s *Server) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(w, r, "listId")
	if !ok {
		return
	}
	var req struct {
		Text       string `json:"text"`
		CategoryID int64  `json:"category_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.CategoryID == 0 {
		writeError(w, http.StatusBadRequest, "category_id is required")
		return
	}
	it, err := s.st.CreateItem(r.Context(), listID, strings.TrimSpace(req.Text), req.CategoryID)
	if err != nil {
		// An unknown category on item create is bad input, not a missing
		// resource: the route's resource is the list.
		var nf store.NotFoundError
		if errors.As(err, &nf) && nf.Kind == "category" {
			writeError(w, http.StatusBadRequest, "Invalid category_id")
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	var req struct {
		Text       *string     `json:"text"`
		IsChecked  *model.Flag `json:"is_checked"`
		CategoryID *int64      `json:"category_id"`
		SortOrder  *int        `json:"sort_order"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	patch := store.ItemPatch{Text: req.Text, CategoryID: req.CategoryID, SortOrder: req.SortOrder}
	if req.IsChecked != nil {
		v := req.IsChecked.Bool()
		patch.IsChecked = &v
	}
	it, err := s.st.UpdateItem(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	if err := s.st.DeleteItem(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItemsReorder(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(w, r, "listId")
	if !ok {
		return
	}
	var req struct {
		Items []model.ItemPosition `json:"items"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.st.ReorderItems(r.Context(), listID, req.Items); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- categories

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.st.Categories(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	c, err := s.st.CreateCategory(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}
	var req struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.st.UpdateCategory(r.Context(), id, store.CategoryPatch{Name: req.Name, SortOrder: req.SortOrder})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}
	if err := s.st.DeleteCategory(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- suggestions

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var exclude int64
	if raw := r.URL.Query().Get("exclude_list_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid exclude_list_id")
			return
		}
		exclude = id
	}
	sugg, err := s.st.Suggestions(r.Context(), q, exclude)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sugg)
}

// -- plumbing

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// decodeBody fills dst from the request body. An empty body is treated as
// an empty object so optional-field routes (e.g. duplicate) work bare.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store error types onto statuses. Unknown errors are
// 500s with the message withheld from the payload.
func writeStoreError(w http.ResponseWriter, err error) {
	var nf store.NotFoundError
	if errors.As(err, &nf) {
		msg := fmt.Sprintf("%s not found", titleKind(nf.Kind))
		writeError(w, http.StatusNotFound, msg)
		return
	}
	var ve store.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Message)
		return
	}
	var ce store.ConflictError
	if errors.As(err, &ce) {
		payload := map[string]any{"error": ce.Message}
		if ce.ItemCount > 0 {
			payload["item_count"] = ce.ItemCount
		}
		writeJSON(w, http.StatusConflict, payload)
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func titleKind(kind string) string {
	if kind == "" {
		return "Resource"
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
