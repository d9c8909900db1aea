package simpledocs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxNameLength    = 255

	// Checksum recorded when the caller supplies none. Creation dedup
	// then collapses all checksum-less uploads of one owner, matching the
	// reference system.
	noChecksum = "no-checksum"

	// Bound on concurrent per-user role lookups during admin listings.
	roleFetchConcurrency = 8
)

// service implements Service.
type service struct {
	repo      DocumentRepository
	audit     AuditTrail
	broker    SignedURLBroker
	directory IdentityDirectory
	logger    *slog.Logger
}

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithRepository sets the document repository.
func WithRepository(repo DocumentRepository) Option {
	return func(s *service) { s.repo = repo }
}

// WithAuditTrail sets the audit trail.
func WithAuditTrail(trail AuditTrail) Option {
	return func(s *service) { s.audit = trail }
}

// WithURLBroker sets the signed-URL broker for upload/download access.
func WithURLBroker(broker SignedURLBroker) Option {
	return func(s *service) { s.broker = broker }
}

// WithDirectory sets the identity directory used by the admin surface.
func WithDirectory(dir IdentityDirectory) Option {
	return func(s *service) { s.directory = dir }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// New creates a service instance with the given options. A repository
// and an audit trail are required; broker and directory are optional and
// only needed for the transfer and admin surfaces.
func New(options ...Option) (Service, error) {
	s := &service{logger: slog.Default()}
	for _, option := range options {
		option(s)
	}
	if s.repo == nil {
		return nil, fmt.Errorf("document repository is required")
	}
	if s.audit == nil {
		return nil, fmt.Errorf("audit trail is required")
	}
	return s, nil
}

// loadWithAccess is the single code path through which every by-ID
// document access goes: resolve the document, apply deleted-item
// visibility, then the access policy. Call sites must not load documents
// any other way, so the policy cannot be bypassed.
//
// The caller's own composite key is tried first; the by-ID lookup covers
// Admin and Tenant-Operator access to documents they do not own. A
// document invisible because it is deleted reads as NotFound before any
// access decision is made.
func (s *service) loadWithAccess(ctx context.Context, auth AuthContext, id string, includeDeleted bool) (*Document, error) {
	doc, err := s.repo.Get(ctx, auth.Tenant, auth.Identity, id)
	if errors.Is(err, ErrDocumentNotFound) {
		doc, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, NewError(KindNotFound, "document not found")
		}
		return nil, WrapError(KindInternal, "load document", err)
	}
	if doc.Deleted() && !includeDeleted {
		return nil, NewError(KindNotFound, "document not found")
	}
	if err := AssertAccess(auth, doc.OwnerTenant, doc.OwnerIdentity); err != nil {
		return nil, err
	}
	return doc, nil
}

// appendAudit records a successful state change. Failures are logged and
// swallowed: auditing is downstream of the state change and must not
// convert success into failure.
func (s *service) appendAudit(ctx context.Context, auth AuthContext, action AuditAction, resource AuditResource, details map[string]any) {
	rec := &AuditRecord{
		OccurredAt: time.Now().UTC(),
		Actor:      ActorSnapshot(auth),
		Action:     action,
		Resource:   resource,
		Result:     AuditSuccess,
		Details:    details,
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Error("audit append failed",
			"action", string(action),
			"resource_type", resource.Type,
			"resource_id", resource.ID,
			"error", err)
	}
}

func (s *service) CreateDocument(ctx context.Context, auth AuthContext, req CreateDocumentRequest) (*CreateDocumentResult, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	// Creation is always self-scoped; the Admin override still applies.
	if err := AssertAccess(auth, auth.Tenant, auth.Identity); err != nil {
		return nil, err
	}

	checksum := req.Checksum
	if checksum == "" {
		checksum = noChecksum
	}

	existing, err := s.repo.FindByChecksum(ctx, auth.Tenant, auth.Identity, checksum)
	if err == nil {
		return &CreateDocumentResult{
			DocumentID: existing.ID,
			Version:    existing.Version,
			StorageKey: existing.StorageKey,
			Existing:   true,
		}, nil
	}
	if !errors.Is(err, ErrDocumentNotFound) {
		return nil, WrapError(KindInternal, "checksum lookup", err)
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:            uuid.NewString(),
		OwnerTenant:   auth.Tenant,
		OwnerIdentity: auth.Identity,
		Name:          req.Name,
		MediaType:     req.MediaType,
		SizeBytes:     req.SizeBytes,
		Tags:          req.Tags,
		Checksum:      checksum,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	doc.StorageKey = StorageKey(doc.OwnerTenant, doc.OwnerIdentity, doc.ID, doc.Version, doc.Name)

	if err := s.repo.Put(ctx, doc); err != nil {
		return nil, WrapError(KindInternal, "store document", err)
	}

	s.appendAudit(ctx, auth, ActionDocumentCreate,
		AuditResource{Type: "document", ID: doc.ID},
		map[string]any{"name": doc.Name, "size": doc.SizeBytes})

	return &CreateDocumentResult{
		DocumentID: doc.ID,
		Version:    doc.Version,
		StorageKey: doc.StorageKey,
	}, nil
}

func (s *service) GetDocument(ctx context.Context, auth AuthContext, id string, includeDeleted bool) (*Document, error) {
	if id == "" {
		return nil, NewError(KindNotFound, "document not found")
	}
	return s.loadWithAccess(ctx, auth, id, includeDeleted)
}

func (s *service) UpdateDocument(ctx context.Context, auth AuthContext, id string, req UpdateDocumentRequest) (*Document, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	// A deleted document cannot be updated; it must be restored first.
	doc, err := s.loadWithAccess(ctx, auth, id, false)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, doc.OwnerTenant, doc.OwnerIdentity, doc.ID, DocumentPatch{
		Name: req.Name,
		Tags: req.Tags,
	})
	if err != nil {
		return nil, WrapError(KindInternal, "update document", err)
	}

	details := map[string]any{}
	if req.Name != nil {
		details["name"] = *req.Name
	}
	if req.Tags != nil {
		details["tags"] = *req.Tags
	}
	s.appendAudit(ctx, auth, ActionDocumentUpdate,
		AuditResource{Type: "document", ID: doc.ID}, details)

	return updated, nil
}

func (s *service) SoftDeleteDocument(ctx context.Context, auth AuthContext, id string) error {
	doc, err := s.loadWithAccess(ctx, auth, id, true)
	if err != nil {
		return err
	}

	// Repeated delete is a no-op success: no write, no second audit record.
	if doc.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	deletedAt := &now
	if _, err := s.repo.Update(ctx, doc.OwnerTenant, doc.OwnerIdentity, doc.ID, DocumentPatch{
		DeletedAt: &deletedAt,
	}); err != nil {
		return WrapError(KindInternal, "delete document", err)
	}

	s.appendAudit(ctx, auth, ActionDocumentDelete,
		AuditResource{Type: "document", ID: doc.ID},
		map[string]any{"name": doc.Name})
	return nil
}

func (s *service) RestoreDocument(ctx context.Context, auth AuthContext, id string) (*Document, error) {
	doc, err := s.loadWithAccess(ctx, auth, id, true)
	if err != nil {
		return nil, err
	}

	// Restore is only valid from the deleted state. This is a hard
	// precondition, not an idempotent no-op.
	if !doc.Deleted() {
		return nil, NewError(KindBadRequest, "document is not deleted")
	}

	var cleared *time.Time
	restored, err := s.repo.Update(ctx, doc.OwnerTenant, doc.OwnerIdentity, doc.ID, DocumentPatch{
		DeletedAt: &cleared,
	})
	if err != nil {
		return nil, WrapError(KindInternal, "restore document", err)
	}

	s.appendAudit(ctx, auth, ActionDocumentRestore,
		AuditResource{Type: "document", ID: doc.ID},
		map[string]any{"name": doc.Name})
	return restored, nil
}

func (s *service) ListDocuments(ctx context.Context, auth AuthContext, req ListDocumentsRequest) (*DocumentPage, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	opts := ListOptions{Limit: limit, Cursor: req.Cursor, IncludeDeleted: req.IncludeDeleted}

	var (
		page *DocumentPage
		err  error
	)
	switch req.Scope {
	case ScopeTenant:
		if err := RequireRole(auth, RoleTenantOperator, RoleAdmin); err != nil {
			return nil, err
		}
		if auth.Tenant == "" {
			return nil, NewError(KindBadRequest, "caller has no tenant assigned")
		}
		page, err = s.repo.ListByTenant(ctx, auth.Tenant, opts)
	case ScopeSelf, "":
		page, err = s.repo.ListByOwner(ctx, auth.Identity, opts)
	default:
		return nil, NewValidationError("invalid scope", map[string]any{"scope": string(req.Scope)})
	}
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			return nil, NewError(KindBadRequest, "invalid cursor")
		}
		return nil, WrapError(KindInternal, "list documents", err)
	}

	page.Items = filterDocuments(page.Items, req.Query, req.Tags)
	return page, nil
}

func (s *service) UploadURL(ctx context.Context, auth AuthContext, id string) (string, error) {
	if s.broker == nil {
		return "", NewError(KindInternal, "no signed-url broker configured")
	}
	doc, err := s.loadWithAccess(ctx, auth, id, false)
	if err != nil {
		return "", err
	}
	url, err := s.broker.UploadURL(ctx, doc.StorageKey, doc.MediaType)
	if err != nil {
		return "", WrapError(KindInternal, "sign upload url", err)
	}
	return url, nil
}

func (s *service) DownloadURL(ctx context.Context, auth AuthContext, id string) (string, error) {
	if s.broker == nil {
		return "", NewError(KindInternal, "no signed-url broker configured")
	}
	doc, err := s.loadWithAccess(ctx, auth, id, false)
	if err != nil {
		return "", err
	}
	url, err := s.broker.DownloadURL(ctx, doc.StorageKey)
	if err != nil {
		return "", WrapError(KindInternal, "sign download url", err)
	}
	return url, nil
}

// ListUsers pages the identity directory and enriches each entry with its
// role set. Role lookups run with bounded parallelism and no ordering
// guarantee among them; a failed lookup degrades that entry to an empty
// role set instead of failing the page.
func (s *service) ListUsers(ctx context.Context, auth AuthContext, req ListUsersRequest) (*UserPage, error) {
	if err := RequireRole(auth, RoleAdmin); err != nil {
		return nil, err
	}
	if s.directory == nil {
		return nil, NewError(KindInternal, "no identity directory configured")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	page, err := s.directory.ListUsers(ctx, limit, req.Cursor)
	if err != nil {
		return nil, WrapError(KindInternal, "list users", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(roleFetchConcurrency)
	for _, user := range page.Items {
		user := user
		g.Go(func() error {
			roles, err := s.directory.RolesOf(gctx, user.Identity)
			if err != nil {
				s.logger.Warn("role lookup failed", "identity", user.Identity, "error", err)
				user.Roles = []Role{}
				return nil
			}
			user.Roles = roles
			return nil
		})
	}
	// Per-item errors are degraded above, never returned.
	_ = g.Wait()

	return page, nil
}

func (s *service) UpdateRoles(ctx context.Context, auth AuthContext, req UpdateRolesRequest) error {
	if err := RequireRole(auth, RoleAdmin); err != nil {
		return err
	}
	if s.directory == nil {
		return NewError(KindInternal, "no identity directory configured")
	}
	if req.Identity == "" {
		return NewError(KindNotFound, "user not found")
	}
	if err := validateRoles(req.Roles); err != nil {
		return err
	}

	oldRoles, err := s.directory.SetRoles(ctx, req.Identity, req.Roles, req.Tenant)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return NewError(KindNotFound, "user not found")
		}
		return WrapError(KindInternal, "update roles", err)
	}

	// New claims only take effect once existing sessions are revoked.
	if err := s.directory.SignOut(ctx, req.Identity); err != nil {
		s.logger.Error("session revocation failed", "identity", req.Identity, "error", err)
	}

	s.appendAudit(ctx, auth, ActionRoleChange,
		AuditResource{Type: "user", ID: req.Identity},
		map[string]any{
			"old_roles": oldRoles,
			"new_roles": req.Roles,
			"tenant":    req.Tenant,
		})
	return nil
}

func (s *service) QueryAudit(ctx context.Context, auth AuthContext, q AuditQuery) (*AuditPage, error) {
	if err := RequireRole(auth, RoleAdmin); err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	page, err := s.audit.Query(ctx, q)
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			return nil, NewError(KindBadRequest, "invalid cursor")
		}
		return nil, WrapError(KindInternal, "query audit trail", err)
	}
	return page, nil
}

// Validation

func validateCreate(req CreateDocumentRequest) error {
	details := map[string]any{}
	if req.Name == "" {
		details["name"] = "required"
	} else if len(req.Name) > maxNameLength {
		details["name"] = fmt.Sprintf("longer than %d characters", maxNameLength)
	}
	if req.MediaType == "" {
		details["media_type"] = "required"
	}
	if req.SizeBytes < 0 {
		details["size_bytes"] = "must not be negative"
	}
	if len(details) > 0 {
		return NewValidationError("validation failed", details)
	}
	return nil
}

func validateUpdate(req UpdateDocumentRequest) error {
	details := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			details["name"] = "must not be empty"
		} else if len(*req.Name) > maxNameLength {
			details["name"] = fmt.Sprintf("longer than %d characters", maxNameLength)
		}
	}
	if len(details) > 0 {
		return NewValidationError("validation failed", details)
	}
	return nil
}

func validateRoles(roles []Role) error {
	if len(roles) == 0 {
		return NewValidationError("validation failed", map[string]any{"roles": "at least one role required"})
	}
	for _, r := range roles {
		switch r {
		case RoleAdmin, RoleTenantOperator, RoleMember:
		default:
			return NewValidationError("validation failed", map[string]any{"roles": fmt.Sprintf("unknown role %q", r)})
		}
	}
	return nil
}

// filterDocuments applies the in-memory free-text and tag filters to a
// fetched page. The free-text query matches name and tags
// case-insensitively; the tag filter requires a non-empty intersection.
func filterDocuments(docs []*Document, query string, tags []string) []*Document {
	if query == "" && len(tags) == 0 {
		return docs
	}
	query = strings.ToLower(query)
	out := make([]*Document, 0, len(docs))
	for _, doc := range docs {
		if query != "" && !matchesQuery(doc, query) {
			continue
		}
		if len(tags) > 0 && !intersects(doc.Tags, tags) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func matchesQuery(doc *Document, query string) bool {
	if strings.Contains(strings.ToLower(doc.Name), query) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
