package simpledocs

// Request/response DTOs for the lifecycle service.

// CreateDocumentRequest contains parameters for creating a document.
// Checksum drives content-addressed idempotency within the caller's
// (tenant, identity) scope.
type CreateDocumentRequest struct {
	Name      string
	MediaType string
	SizeBytes int64
	Checksum  string
	Tags      []string
}

// CreateDocumentResult is the trimmed creation response. Existing is true
// when an equal-checksum document was returned instead of a new one.
type CreateDocumentResult struct {
	DocumentID string
	Version    int
	StorageKey string
	Existing   bool
}

// UpdateDocumentRequest contains the metadata fields a caller may change
// after creation. Content is immutable; only name and tags move.
type UpdateDocumentRequest struct {
	Name *string
	Tags *[]string
}

// ListScope selects whose documents a listing covers.
type ListScope string

// List scopes.
const (
	// ScopeSelf lists documents owned by the calling identity.
	ScopeSelf ListScope = "self"
	// ScopeTenant lists all documents in the caller's tenant. Requires
	// Tenant-Operator or Admin.
	ScopeTenant ListScope = "tenant"
)

// ListDocumentsRequest contains parameters for listing documents.
type ListDocumentsRequest struct {
	Scope          ListScope
	Query          string
	Tags           []string
	Limit          int
	Cursor         string
	IncludeDeleted bool
}

// UpdateRolesRequest contains parameters for the admin role update.
type UpdateRolesRequest struct {
	Identity string
	Roles    []Role
	Tenant   string
}

// ListUsersRequest contains parameters for the admin user listing.
type ListUsersRequest struct {
	Limit  int
	Cursor string
}
