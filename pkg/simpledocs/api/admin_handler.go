package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// AdminHandler exposes the administration surface: user listing, role
// management and audit queries. Role checks live in the service; the
// handler only translates HTTP.
type AdminHandler struct {
	service simpledocs.Service
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service simpledocs.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes returns the routes for administration.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/users", h.ListUsers)
	r.Patch("/users/{id}/roles", h.UpdateRoles)
	r.Get("/audits", h.QueryAudit)

	return r
}

// UpdateRolesRequest is the request body for replacing a user's roles.
type UpdateRolesRequest struct {
	Roles  []string `json:"roles"`
	Tenant string   `json:"tenant,omitempty"`
}

// ListUsers lists known users with their roles.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	page, err := h.service.ListUsers(r.Context(), auth, simpledocs.ListUsersRequest{
		Limit:  limit,
		Cursor: q.Get("cursor"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, page)
}

// UpdateRoles replaces a user's role set and revokes their sessions.
func (h *AdminHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req UpdateRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, simpledocs.NewError(simpledocs.KindBadRequest, "malformed request body"))
		return
	}

	roles := make([]simpledocs.Role, 0, len(req.Roles))
	for _, tag := range req.Roles {
		roles = append(roles, simpledocs.Role(tag))
	}

	if err := h.service.UpdateRoles(r.Context(), auth, simpledocs.UpdateRolesRequest{
		Identity: chi.URLParam(r, "id"),
		Roles:    roles,
		Tenant:   req.Tenant,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"success": true})
}

// QueryAudit returns audit records filtered by time range, actor and
// action.
func (h *AdminHandler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	auth, err := AuthFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()

	query := simpledocs.AuditQuery{
		Actor:  q.Get("actor"),
		Action: q.Get("action"),
		Cursor: q.Get("cursor"),
	}
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	if raw := q.Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, simpledocs.NewError(simpledocs.KindBadRequest, "start must be RFC 3339"))
			return
		}
		query.Start = t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, simpledocs.NewError(simpledocs.KindBadRequest, "end must be RFC 3339"))
			return
		}
		query.End = t
	}

	page, err := h.service.QueryAudit(r.Context(), auth, query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, page)
}
