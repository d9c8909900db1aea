package simpledocs

import (
	"context"
)

// Service is the document lifecycle and administration surface consumed
// by the HTTP layer. Every method takes the caller's AuthContext and
// applies the access policy before touching state; every successful
// state-changing method appends exactly one audit record.
type Service interface {
	// Document lifecycle
	CreateDocument(ctx context.Context, auth AuthContext, req CreateDocumentRequest) (*CreateDocumentResult, error)
	GetDocument(ctx context.Context, auth AuthContext, id string, includeDeleted bool) (*Document, error)
	UpdateDocument(ctx context.Context, auth AuthContext, id string, req UpdateDocumentRequest) (*Document, error)
	SoftDeleteDocument(ctx context.Context, auth AuthContext, id string) error
	RestoreDocument(ctx context.Context, auth AuthContext, id string) (*Document, error)
	ListDocuments(ctx context.Context, auth AuthContext, req ListDocumentsRequest) (*DocumentPage, error)

	// Transfer brokering
	UploadURL(ctx context.Context, auth AuthContext, id string) (string, error)
	DownloadURL(ctx context.Context, auth AuthContext, id string) (string, error)

	// Administration
	ListUsers(ctx context.Context, auth AuthContext, req ListUsersRequest) (*UserPage, error)
	UpdateRoles(ctx context.Context, auth AuthContext, req UpdateRolesRequest) error
	QueryAudit(ctx context.Context, auth AuthContext, q AuditQuery) (*AuditPage, error)
}
