package simpledocs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsys/simple-docs/pkg/simpledocs"
	"github.com/docsys/simple-docs/pkg/simpledocs/repo/memory"
	memorystorage "github.com/docsys/simple-docs/pkg/simpledocs/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simpledocs.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simpledocs.Option{},
			expectError: true,
		},
		{
			name: "repository alone is not enough",
			options: []simpledocs.Option{
				simpledocs.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "repository and audit trail should succeed",
			options: []simpledocs.Option{
				simpledocs.WithRepository(memory.New()),
				simpledocs.WithAuditTrail(memory.NewAuditTrail()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simpledocs.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

type testFixture struct {
	svc       simpledocs.Service
	audit     *memory.AuditTrail
	directory *memory.Directory
}

func setupTestService(t *testing.T) *testFixture {
	t.Helper()

	audit := memory.NewAuditTrail()
	directory := memory.NewDirectory()

	svc, err := simpledocs.New(
		simpledocs.WithRepository(memory.New()),
		simpledocs.WithAuditTrail(audit),
		simpledocs.WithURLBroker(memorystorage.New()),
		simpledocs.WithDirectory(directory),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return &testFixture{svc: svc, audit: audit, directory: directory}
}

func mustCreate(t *testing.T, svc simpledocs.Service, auth simpledocs.AuthContext, req simpledocs.CreateDocumentRequest) *simpledocs.CreateDocumentResult {
	t.Helper()
	result, err := svc.CreateDocument(context.Background(), auth, req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	result := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name:      "report.pdf",
		MediaType: "application/pdf",
		SizeBytes: 1024,
		Checksum:  "abc123",
		Tags:      []string{"finance"},
	})

	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, 1, result.Version)
	assert.Equal(t, "tenant/t1/user/u1/"+result.DocumentID+"/v1/report.pdf", result.StorageKey)
	assert.False(t, result.Existing)
	assert.Equal(t, 1, f.audit.Len())

	doc, err := f.svc.GetDocument(ctx, owner, result.DocumentID, false)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, "t1", doc.OwnerTenant)
	assert.Equal(t, "u1", doc.OwnerIdentity)
	assert.Equal(t, []string{"finance"}, doc.Tags)
}

func TestCreateDocumentValidation(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	tests := []struct {
		name string
		req  simpledocs.CreateDocumentRequest
	}{
		{"missing name", simpledocs.CreateDocumentRequest{MediaType: "text/plain"}},
		{"missing media type", simpledocs.CreateDocumentRequest{Name: "a.txt"}},
		{"negative size", simpledocs.CreateDocumentRequest{Name: "a.txt", MediaType: "text/plain", SizeBytes: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateDocument(ctx, owner, tt.req)
			require.Error(t, err)
			assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
		})
	}
	// Nothing reached the audit trail.
	assert.Equal(t, 0, f.audit.Len())
}

func TestCreateDocumentChecksumIdempotency(t *testing.T) {
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	first := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "same",
	})
	second := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "b.txt", MediaType: "text/plain", Checksum: "same",
	})

	assert.True(t, second.Existing)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, first.StorageKey, second.StorageKey)
	// The short-circuited create leaves no second audit record.
	assert.Equal(t, 1, f.audit.Len())

	// Another owner with the same checksum gets its own document.
	other := authWith("u2", "t1", simpledocs.RoleMember)
	third := mustCreate(t, f.svc, other, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "same",
	})
	assert.False(t, third.Existing)
	assert.NotEqual(t, first.DocumentID, third.DocumentID)
}

func TestCreateDocumentWithoutChecksumCollapses(t *testing.T) {
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	first := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain",
	})
	second := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "b.txt", MediaType: "text/plain",
	})

	// Checksum-less uploads share the placeholder checksum and dedupe
	// against each other.
	assert.True(t, second.Existing)
	assert.Equal(t, first.DocumentID, second.DocumentID)
}

func TestCreateDocumentDedupIgnoresDeleted(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	first := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})
	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, first.DocumentID))

	second := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})
	assert.False(t, second.Existing)
	assert.NotEqual(t, first.DocumentID, second.DocumentID)
}

func TestGetDocumentAccessMatrix(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})

	tests := []struct {
		name       string
		auth       simpledocs.AuthContext
		expectKind simpledocs.Kind
		allowed    bool
	}{
		{name: "owner reads own document", auth: owner, allowed: true},
		{
			name:       "member of same tenant is denied",
			auth:       authWith("u2", "t1", simpledocs.RoleMember),
			expectKind: simpledocs.KindForbidden,
		},
		{
			name:    "operator of same tenant reads it",
			auth:    authWith("op", "t1", simpledocs.RoleTenantOperator),
			allowed: true,
		},
		{
			name:       "operator of another tenant is denied",
			auth:       authWith("op2", "t2", simpledocs.RoleTenantOperator),
			expectKind: simpledocs.KindForbidden,
		},
		{
			name:    "admin from anywhere reads it",
			auth:    authWith("root", "", simpledocs.RoleAdmin),
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := f.svc.GetDocument(ctx, tt.auth, created.DocumentID, false)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, created.DocumentID, doc.ID)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.expectKind, simpledocs.KindOf(err))
			}
		})
	}
}

func TestGetDocumentUnknownID(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	_, err := f.svc.GetDocument(ctx, owner, "no-such-id", false)
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindNotFound, simpledocs.KindOf(err))

	_, err = f.svc.GetDocument(ctx, owner, "", false)
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindNotFound, simpledocs.KindOf(err))
}

func TestUpdateDocument(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1", Tags: []string{"x"},
	})

	newName := "renamed.txt"
	updated, err := f.svc.UpdateDocument(ctx, owner, created.DocumentID, simpledocs.UpdateDocumentRequest{
		Name: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", updated.Name)
	assert.Equal(t, []string{"x"}, updated.Tags, "untouched fields survive the patch")
	// Content identity never moves on metadata updates.
	assert.Equal(t, created.StorageKey, updated.StorageKey)
	assert.Equal(t, 1, updated.Version)

	newTags := []string{"y", "z"}
	updated, err = f.svc.UpdateDocument(ctx, owner, created.DocumentID, simpledocs.UpdateDocumentRequest{
		Tags: &newTags,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", updated.Name)
	assert.Equal(t, []string{"y", "z"}, updated.Tags)

	// create + two updates
	assert.Equal(t, 3, f.audit.Len())
}

func TestUpdateDocumentValidation(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})

	empty := ""
	_, err := f.svc.UpdateDocument(ctx, owner, created.DocumentID, simpledocs.UpdateDocumentRequest{
		Name: &empty,
	})
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
}

func TestUpdateDeletedDocumentFails(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})
	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, created.DocumentID))

	name := "b.txt"
	_, err := f.svc.UpdateDocument(ctx, owner, created.DocumentID, simpledocs.UpdateDocumentRequest{
		Name: &name,
	})
	require.Error(t, err)
	// Deleted documents read as absent for mutation purposes.
	assert.Equal(t, simpledocs.KindNotFound, simpledocs.KindOf(err))
}

func TestSoftDeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})

	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, created.DocumentID))

	// The document reads as absent by default.
	_, err := f.svc.GetDocument(ctx, owner, created.DocumentID, false)
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindNotFound, simpledocs.KindOf(err))

	// But it is still there for explicit deleted-inclusive reads.
	doc, err := f.svc.GetDocument(ctx, owner, created.DocumentID, true)
	require.NoError(t, err)
	assert.True(t, doc.Deleted())

	restored, err := f.svc.RestoreDocument(ctx, owner, created.DocumentID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted())

	// Fully visible again.
	doc, err = f.svc.GetDocument(ctx, owner, created.DocumentID, false)
	require.NoError(t, err)
	assert.Equal(t, created.DocumentID, doc.ID)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})

	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, created.DocumentID))
	auditLen := f.audit.Len()

	// Second delete succeeds without a second audit record.
	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, created.DocumentID))
	assert.Equal(t, auditLen, f.audit.Len())
}

func TestRestoreRequiresDeletedState(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})

	_, err := f.svc.RestoreDocument(ctx, owner, created.DocumentID)
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	u1 := authWith("u1", "t1", simpledocs.RoleMember)
	u2 := authWith("u2", "t1", simpledocs.RoleMember)

	mustCreate(t, f.svc, u1, simpledocs.CreateDocumentRequest{
		Name: "invoice.pdf", MediaType: "application/pdf", Checksum: "c1", Tags: []string{"finance"},
	})
	mustCreate(t, f.svc, u1, simpledocs.CreateDocumentRequest{
		Name: "notes.txt", MediaType: "text/plain", Checksum: "c2", Tags: []string{"personal"},
	})
	mustCreate(t, f.svc, u2, simpledocs.CreateDocumentRequest{
		Name: "summary.pdf", MediaType: "application/pdf", Checksum: "c3",
	})

	t.Run("self scope is the default", func(t *testing.T) {
		page, err := f.svc.ListDocuments(ctx, u1, simpledocs.ListDocumentsRequest{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		for _, doc := range page.Items {
			assert.Equal(t, "u1", doc.OwnerIdentity)
		}
	})

	t.Run("free text filter", func(t *testing.T) {
		page, err := f.svc.ListDocuments(ctx, u1, simpledocs.ListDocumentsRequest{Query: "INVOICE"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "invoice.pdf", page.Items[0].Name)
	})

	t.Run("tag filter", func(t *testing.T) {
		page, err := f.svc.ListDocuments(ctx, u1, simpledocs.ListDocumentsRequest{Tags: []string{"personal"}})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "notes.txt", page.Items[0].Name)
	})

	t.Run("tenant scope requires operator", func(t *testing.T) {
		_, err := f.svc.ListDocuments(ctx, u1, simpledocs.ListDocumentsRequest{Scope: simpledocs.ScopeTenant})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindForbidden, simpledocs.KindOf(err))
	})

	t.Run("tenant scope for operator spans owners", func(t *testing.T) {
		op := authWith("op", "t1", simpledocs.RoleTenantOperator)
		page, err := f.svc.ListDocuments(ctx, op, simpledocs.ListDocumentsRequest{Scope: simpledocs.ScopeTenant})
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
	})

	t.Run("operator without tenant is rejected", func(t *testing.T) {
		op := authWith("op", "", simpledocs.RoleTenantOperator)
		_, err := f.svc.ListDocuments(ctx, op, simpledocs.ListDocumentsRequest{Scope: simpledocs.ScopeTenant})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
	})

	t.Run("unknown scope is rejected", func(t *testing.T) {
		_, err := f.svc.ListDocuments(ctx, u1, simpledocs.ListDocumentsRequest{Scope: "everything"})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
	})

	t.Run("invalid cursor is rejected", func(t *testing.T) {
		_, err := f.svc.ListDocuments(ctx, u1, simpledocs.ListDocumentsRequest{Cursor: "!!not-base64!!"})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
	})
}

func TestListDocumentsExcludesDeletedByDefault(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	kept := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "kept.txt", MediaType: "text/plain", Checksum: "c1",
	})
	gone := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "gone.txt", MediaType: "text/plain", Checksum: "c2",
	})
	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, gone.DocumentID))

	page, err := f.svc.ListDocuments(ctx, owner, simpledocs.ListDocumentsRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, kept.DocumentID, page.Items[0].ID)

	page, err = f.svc.ListDocuments(ctx, owner, simpledocs.ListDocumentsRequest{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestListDocumentsPagination(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	for i := 0; i < 5; i++ {
		mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
			Name:      "doc.txt",
			MediaType: "text/plain",
			Checksum:  string(rune('a' + i)),
		})
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := f.svc.ListDocuments(ctx, owner, simpledocs.ListDocumentsRequest{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, doc := range page.Items {
			assert.False(t, seen[doc.ID], "document repeated across pages")
			seen[doc.ID] = true
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestSignedURLs(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})

	upload, err := f.svc.UploadURL(ctx, owner, created.DocumentID)
	require.NoError(t, err)
	assert.Contains(t, upload, created.StorageKey)

	download, err := f.svc.DownloadURL(ctx, owner, created.DocumentID)
	require.NoError(t, err)
	assert.Contains(t, download, created.StorageKey)

	// Another member cannot obtain URLs for someone else's document.
	stranger := authWith("u2", "t1", simpledocs.RoleMember)
	_, err = f.svc.DownloadURL(ctx, stranger, created.DocumentID)
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindForbidden, simpledocs.KindOf(err))
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	admin := authWith("root", "", simpledocs.RoleAdmin)

	f.directory.AddUser(&simpledocs.User{
		Identity: "u1", Tenant: "t1", Roles: []simpledocs.Role{simpledocs.RoleMember},
	})
	f.directory.AddUser(&simpledocs.User{
		Identity: "u2", Tenant: "t1", Roles: []simpledocs.Role{simpledocs.RoleTenantOperator},
	})

	page, err := f.svc.ListUsers(ctx, admin, simpledocs.ListUsersRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	byIdentity := map[string][]simpledocs.Role{}
	for _, user := range page.Items {
		byIdentity[user.Identity] = user.Roles
	}
	assert.Equal(t, []simpledocs.Role{simpledocs.RoleMember}, byIdentity["u1"])
	assert.Equal(t, []simpledocs.Role{simpledocs.RoleTenantOperator}, byIdentity["u2"])

	// Non-admins are rejected before the directory is touched.
	op := authWith("op", "t1", simpledocs.RoleTenantOperator)
	_, err = f.svc.ListUsers(ctx, op, simpledocs.ListUsersRequest{})
	require.Error(t, err)
	assert.Equal(t, simpledocs.KindForbidden, simpledocs.KindOf(err))
}

func TestUpdateRoles(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	admin := authWith("root", "", simpledocs.RoleAdmin)

	f.directory.AddUser(&simpledocs.User{
		Identity: "u1", Tenant: "t1", Roles: []simpledocs.Role{simpledocs.RoleMember},
	})

	err := f.svc.UpdateRoles(ctx, admin, simpledocs.UpdateRolesRequest{
		Identity: "u1",
		Roles:    []simpledocs.Role{simpledocs.RoleTenantOperator},
	})
	require.NoError(t, err)

	roles, err := f.directory.RolesOf(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []simpledocs.Role{simpledocs.RoleTenantOperator}, roles)

	// Sessions are revoked so the new claims take effect.
	assert.Equal(t, 1, f.directory.SignOutCount("u1"))
	// The change landed in the audit trail.
	assert.Equal(t, 1, f.audit.Len())

	t.Run("unknown user", func(t *testing.T) {
		err := f.svc.UpdateRoles(ctx, admin, simpledocs.UpdateRolesRequest{
			Identity: "ghost",
			Roles:    []simpledocs.Role{simpledocs.RoleMember},
		})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindNotFound, simpledocs.KindOf(err))
	})

	t.Run("empty role set", func(t *testing.T) {
		err := f.svc.UpdateRoles(ctx, admin, simpledocs.UpdateRolesRequest{Identity: "u1"})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
	})

	t.Run("unknown role tag", func(t *testing.T) {
		err := f.svc.UpdateRoles(ctx, admin, simpledocs.UpdateRolesRequest{
			Identity: "u1",
			Roles:    []simpledocs.Role{"Wizard"},
		})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindBadRequest, simpledocs.KindOf(err))
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		op := authWith("op", "t1", simpledocs.RoleTenantOperator)
		err := f.svc.UpdateRoles(ctx, op, simpledocs.UpdateRolesRequest{
			Identity: "u1",
			Roles:    []simpledocs.Role{simpledocs.RoleMember},
		})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindForbidden, simpledocs.KindOf(err))
	})
}

func TestQueryAudit(t *testing.T) {
	ctx := context.Background()
	f := setupTestService(t)
	admin := authWith("root", "", simpledocs.RoleAdmin)
	owner := authWith("u1", "t1", simpledocs.RoleMember)

	created := mustCreate(t, f.svc, owner, simpledocs.CreateDocumentRequest{
		Name: "a.txt", MediaType: "text/plain", Checksum: "c1",
	})
	// Audit keys order by millisecond; keep the two records apart.
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, f.svc.SoftDeleteDocument(ctx, owner, created.DocumentID))

	page, err := f.svc.QueryAudit(ctx, admin, simpledocs.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	// Newest first.
	assert.Equal(t, simpledocs.ActionDocumentDelete, page.Items[0].Action)
	assert.Equal(t, simpledocs.ActionDocumentCreate, page.Items[1].Action)
	// Actor snapshots carry the caller, not the admin querying.
	assert.Equal(t, "u1", page.Items[0].Actor.Identity)

	t.Run("action filter", func(t *testing.T) {
		page, err := f.svc.QueryAudit(ctx, admin, simpledocs.AuditQuery{Action: "delete"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, simpledocs.ActionDocumentDelete, page.Items[0].Action)
	})

	t.Run("actor filter", func(t *testing.T) {
		page, err := f.svc.QueryAudit(ctx, admin, simpledocs.AuditQuery{Actor: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, err := f.svc.QueryAudit(ctx, owner, simpledocs.AuditQuery{})
		require.Error(t, err)
		assert.Equal(t, simpledocs.KindForbidden, simpledocs.KindOf(err))
	})
}
