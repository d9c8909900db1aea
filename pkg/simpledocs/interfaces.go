package simpledocs

import (
	"context"
	"time"
)

// DocumentRepository is the persistence interface for document metadata.
//
// Documents are addressed by the composite key (tenant, owner, id). Both
// list operations return newest-first pages with opaque continuation
// cursors and exclude soft-deleted documents unless IncludeDeleted is set.
type DocumentRepository interface {
	// Get returns the document at the composite key, deleted or not.
	// Visibility filtering of deleted documents is the service's job.
	Get(ctx context.Context, tenant, owner, id string) (*Document, error)

	// Put inserts a new document. Used only at creation.
	Put(ctx context.Context, doc *Document) error

	// Update applies a partial update and stamps UpdatedAt. The composite
	// key fields, ID and Version can never be overwritten through it.
	// The write is unconditional: concurrent updates race and the last
	// writer wins.
	Update(ctx context.Context, tenant, owner, id string, patch DocumentPatch) (*Document, error)

	// FindByChecksum returns the non-deleted document with the given
	// checksum in the (tenant, owner) scope, or ErrDocumentNotFound.
	// A deleted document's checksum does not block re-creation.
	FindByChecksum(ctx context.Context, tenant, owner, checksum string) (*Document, error)

	// FindByID locates a document by ID alone, with no known owner. Used
	// by the Admin access path.
	FindByID(ctx context.Context, id string) (*Document, error)

	// ListByOwner pages all documents owned by the identity.
	ListByOwner(ctx context.Context, owner string, opts ListOptions) (*DocumentPage, error)

	// ListByTenant pages all documents belonging to the tenant.
	ListByTenant(ctx context.Context, tenant string, opts ListOptions) (*DocumentPage, error)
}

// DocumentPatch is the set of fields Update may change. Nil fields are
// left untouched. DeletedAt uses a double pointer so the patch can
// distinguish "leave alone" (nil) from "clear" (pointer to nil) from
// "set" (pointer to a timestamp).
type DocumentPatch struct {
	Name      *string
	Tags      *[]string
	DeletedAt **time.Time
}

// ListOptions controls repository list pagination and deleted-item
// visibility.
type ListOptions struct {
	Limit          int
	Cursor         string
	IncludeDeleted bool
}

// AuditTrail records every state-changing action. Records are immutable
// once appended and are never deleted.
type AuditTrail interface {
	// Append stores one record and assigns its ordering key. Exactly one
	// record per call.
	Append(ctx context.Context, rec *AuditRecord) error

	// Query pages records newest-first, filtered by the query.
	Query(ctx context.Context, q AuditQuery) (*AuditPage, error)
}

// AuditQuery filters an audit trail listing. Zero values mean
// "unfiltered". Action matches by substring.
type AuditQuery struct {
	Start  time.Time
	End    time.Time
	Actor  string
	Action string
	Limit  int
	Cursor string
}

// SignedURLBroker produces time-limited URLs for the object-storage data
// plane. The data plane itself is out of scope; the broker only signs.
type SignedURLBroker interface {
	// UploadURL returns a URL a client may PUT the document bytes to.
	UploadURL(ctx context.Context, storageKey, mediaType string) (string, error)

	// DownloadURL returns a URL a client may GET the document bytes from.
	DownloadURL(ctx context.Context, storageKey string) (string, error)
}

// IdentityDirectory is the user-administration collaborator (the
// identity provider's management surface). Only the operations the admin
// endpoints need are modeled.
type IdentityDirectory interface {
	// ListUsers pages directory entries. Entries come back without roles;
	// callers enrich via RolesOf.
	ListUsers(ctx context.Context, limit int, cursor string) (*UserPage, error)

	// RolesOf returns the role set currently assigned to the identity.
	RolesOf(ctx context.Context, identity string) ([]Role, error)

	// SetRoles replaces the identity's role set and returns the previous
	// one. Tenant is reassigned when non-empty.
	SetRoles(ctx context.Context, identity string, roles []Role, tenant string) ([]Role, error)

	// SignOut revokes all of the identity's sessions so new role claims
	// take effect.
	SignOut(ctx context.Context, identity string) error
}
