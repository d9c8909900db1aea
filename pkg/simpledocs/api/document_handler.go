package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// DocumentHandler exposes the document lifecycle over HTTP.
type DocumentHandler struct {
	service simpledocs.Service
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(service simpledocs.Service) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Routes returns the routes for documents.
func (h *DocumentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateDocument)
	r.Get("/", h.ListDocuments)
	r.Get("/{id}", h.GetDocument)
	r.Patch("/{id}", h.UpdateDocument)
	r.Delete("/{id}", h.DeleteDocument)
	r.Post("/{id}/restore", h.RestoreDocument)
	r.Get("/{id}/upload-url", h.UploadURL)
	r.Get("/{id}/download-url", h.DownloadURL)

	return r
}

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Name      string   `json:"name"`
	MediaType string   `json:"media_type"`
	SizeBytes int64    `json:"size_bytes,omitempty"`
	Checksum  string   `json:"checksum,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// CreateDocumentResponse is the response body for document creation.
type CreateDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Version    int    `json:"version"`
	StorageKey string `json:"storage_key"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Name *string   `json:"name,omitempty"`
	Tags *[]string `json:"tags,omitempty"`
}

// CreateDocument creates a document, or returns the existing one when
// the checksum already exists for this owner.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, simpledocs.NewError(simpledocs.KindBadRequest, "malformed request body"))
		return
	}

	result, err := h.service.CreateDocument(r.Context(), auth, simpledocs.CreateDocumentRequest{
		Name:      req.Name,
		MediaType: req.MediaType,
		SizeBytes: req.SizeBytes,
		Checksum:  req.Checksum,
		Tags:      req.Tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.Existing {
		render.Status(r, http.StatusOK)
	} else {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, CreateDocumentResponse{
		DocumentID: result.DocumentID,
		Version:    result.Version,
		StorageKey: result.StorageKey,
	})
}

// GetDocument returns a document by ID. Deleted documents read as absent
// unless include_deleted=true.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	doc, err := h.service.GetDocument(r.Context(), auth, chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"document": doc})
}

// ListDocuments lists documents in self or tenant scope with optional
// free-text and tag filters.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	var tags []string
	if raw := q.Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	page, err := h.service.ListDocuments(r.Context(), auth, simpledocs.ListDocumentsRequest{
		Scope:          simpledocs.ListScope(q.Get("scope")),
		Query:          q.Get("q"),
		Tags:           tags,
		Limit:          limit,
		Cursor:         q.Get("cursor"),
		IncludeDeleted: q.Get("include_deleted") == "true",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, page)
}

// UpdateDocument applies a metadata patch (name and tags only).
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, simpledocs.NewError(simpledocs.KindBadRequest, "malformed request body"))
		return
	}

	doc, err := h.service.UpdateDocument(r.Context(), auth, chi.URLParam(r, "id"), simpledocs.UpdateDocumentRequest{
		Name: req.Name,
		Tags: req.Tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"document": doc})
}

// DeleteDocument soft-deletes a document. Idempotent.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.SoftDeleteDocument(r.Context(), auth, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"success": true})
}

// RestoreDocument brings a soft-deleted document back.
func (h *DocumentHandler) RestoreDocument(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.service.RestoreDocument(r.Context(), auth, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"document": doc})
}

// UploadURL returns a time-limited upload URL for the document's bytes.
func (h *DocumentHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, err := h.service.UploadURL(r.Context(), auth, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"url": url})
}

// DownloadURL returns a time-limited download URL for the document's bytes.
func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, err := h.service.DownloadURL(r.Context(), auth, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"url": url})
}

// WhoAmI echoes the caller's resolved authorization context.
func WhoAmI(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"identity": auth.Identity,
		"tenant":   auth.Tenant,
		"roles":    auth.Roles.Slice(),
		"email":    auth.Email,
	})
}
