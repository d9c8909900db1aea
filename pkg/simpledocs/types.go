package simpledocs

import (
	"time"
)

// Role is a coarse access tier attached to an authenticated identity.
type Role string

// Role constants (typed).
const (
	// RoleAdmin overrides all tenant and ownership checks.
	RoleAdmin Role = "Admin"
	// RoleTenantOperator grants access to every document inside the
	// operator's own tenant.
	RoleTenantOperator Role = "Tenant-Operator"
	// RoleMember grants access only to documents the identity owns.
	RoleMember Role = "Member"
)

// RoleSet is an unordered set of roles held by one identity.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Slice returns the roles in a stable (lexicographic) order, for
// serialization and audit snapshots.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// AuthContext is the typed authorization context derived from verified
// request claims. It is built per request and never persisted.
type AuthContext struct {
	// Identity is the stable subject identifier. Non-empty whenever
	// resolution succeeded.
	Identity string `json:"identity"`
	// Tenant is the tenant the identity belongs to. Empty for identities
	// that have not been assigned one yet.
	Tenant string `json:"tenant,omitempty"`
	// Roles is the normalized role set from the token's role claim.
	Roles RoleSet `json:"roles"`
	// Email is display-only and never used for authorization.
	Email string `json:"email,omitempty"`
}

// Document is the unit of management: metadata about one stored object.
type Document struct {
	ID            string     `json:"document_id"`
	OwnerTenant   string     `json:"owner_tenant"`
	OwnerIdentity string     `json:"owner_identity"`
	Name          string     `json:"name"`
	MediaType     string     `json:"media_type"`
	SizeBytes     int64      `json:"size_bytes"`
	Tags          []string   `json:"tags,omitempty"`
	Checksum      string     `json:"checksum,omitempty"`
	StorageKey    string     `json:"storage_key"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the document is soft-deleted.
func (d *Document) Deleted() bool {
	return d.DeletedAt != nil
}

// AuditActor is the by-value snapshot of the caller recorded on each
// audit record. Later role changes must not rewrite history.
type AuditActor struct {
	Identity string `json:"identity"`
	Tenant   string `json:"tenant,omitempty"`
	Roles    []Role `json:"roles"`
}

// ActorSnapshot captures the AuthContext for an audit record.
func ActorSnapshot(ctx AuthContext) AuditActor {
	return AuditActor{
		Identity: ctx.Identity,
		Tenant:   ctx.Tenant,
		Roles:    ctx.Roles.Slice(),
	}
}

// AuditAction tags the operation an audit record describes.
type AuditAction string

// Audit action constants.
const (
	ActionDocumentCreate  AuditAction = "document.create"
	ActionDocumentUpdate  AuditAction = "document.update"
	ActionDocumentDelete  AuditAction = "document.delete"
	ActionDocumentRestore AuditAction = "document.restore"
	ActionRoleChange      AuditAction = "user.role_change"
	ActionUserCreate      AuditAction = "user.create"
	ActionUserSignOut     AuditAction = "user.signout"
)

// AuditResult marks whether the audited action succeeded.
type AuditResult string

// Audit result constants.
const (
	AuditSuccess AuditResult = "success"
	AuditFailure AuditResult = "error"
)

// AuditResource identifies the entity an audit record is about.
type AuditResource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// AuditRecord is one immutable entry in the append-only audit trail.
type AuditRecord struct {
	// Key is the unique ordering key assigned at append time. It sorts
	// by OccurredAt with a random tiebreak.
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Actor      AuditActor     `json:"actor"`
	Action     AuditAction    `json:"action"`
	Resource   AuditResource  `json:"resource"`
	Result     AuditResult    `json:"result"`
	Details    map[string]any `json:"details,omitempty"`
}

// User is a directory entry surfaced by the admin listing. Roles are
// enriched from a separate per-user lookup and degrade to empty on
// failure.
type User struct {
	Identity  string    `json:"identity"`
	Email     string    `json:"email,omitempty"`
	Tenant    string    `json:"tenant,omitempty"`
	Status    string    `json:"status,omitempty"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// DocumentPage is one page of a cursor-paginated document listing.
type DocumentPage struct {
	Items      []*Document `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// UserPage is one page of a cursor-paginated user listing.
type UserPage struct {
	Items      []*User `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// AuditPage is one page of audit records, newest first.
type AuditPage struct {
	Items      []*AuditRecord `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
