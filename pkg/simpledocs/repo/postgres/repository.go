package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// DBTX is satisfied by both a pgx connection pool and a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simpledocs.DocumentRepository using PostgreSQL.
//
// Unlike the in-memory repository, lookups by document ID alone are
// served by the documents_id_idx index rather than a scan.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL document repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL document repository from a pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("document already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const documentColumns = `id, owner_tenant, owner_identity, name, media_type, size_bytes,
	       tags, checksum, storage_key, version, created_at, updated_at, deleted_at`

func scanDocument(row pgx.Row) (*simpledocs.Document, error) {
	var doc simpledocs.Document
	err := row.Scan(
		&doc.ID, &doc.OwnerTenant, &doc.OwnerIdentity, &doc.Name,
		&doc.MediaType, &doc.SizeBytes, &doc.Tags, &doc.Checksum,
		&doc.StorageKey, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt,
		&doc.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) Get(ctx context.Context, tenant, owner, id string) (*simpledocs.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_tenant = $1 AND owner_identity = $2 AND id = $3`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, tenant, owner, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpledocs.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("get document", err)
	}
	return doc, nil
}

func (r *Repository) Put(ctx context.Context, doc *simpledocs.Document) error {
	query := `
		INSERT INTO documents (
			id, owner_tenant, owner_identity, name, media_type, size_bytes,
			tags, checksum, storage_key, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.OwnerTenant, doc.OwnerIdentity, doc.Name,
		doc.MediaType, doc.SizeBytes, doc.Tags, doc.Checksum,
		doc.StorageKey, doc.Version, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("put document", err)
	}
	return nil
}

// Update applies a partial update. The key columns, id and version are
// never part of the SET list. The write is unconditional; there is no
// version check, so concurrent updates are last-writer-wins.
func (r *Repository) Update(ctx context.Context, tenant, owner, id string, patch simpledocs.DocumentPatch) (*simpledocs.Document, error) {
	set := []string{"updated_at = $4"}
	args := []interface{}{tenant, owner, id, time.Now().UTC()}

	if patch.Name != nil {
		args = append(args, *patch.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Tags != nil {
		args = append(args, *patch.Tags)
		set = append(set, fmt.Sprintf("tags = $%d", len(args)))
	}
	if patch.DeletedAt != nil {
		args = append(args, *patch.DeletedAt)
		set = append(set, fmt.Sprintf("deleted_at = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE documents SET %s
		WHERE owner_tenant = $1 AND owner_identity = $2 AND id = $3
		RETURNING `+documentColumns, strings.Join(set, ", "))

	doc, err := scanDocument(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpledocs.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("update document", err)
	}
	return doc, nil
}

func (r *Repository) FindByChecksum(ctx context.Context, tenant, owner, checksum string) (*simpledocs.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_tenant = $1 AND owner_identity = $2 AND checksum = $3
		  AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, tenant, owner, checksum))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpledocs.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("find document by checksum", err)
	}
	return doc, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*simpledocs.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpledocs.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("find document by id", err)
	}
	return doc, nil
}

func (r *Repository) ListByOwner(ctx context.Context, owner string, opts simpledocs.ListOptions) (*simpledocs.DocumentPage, error) {
	return r.list(ctx, "owner_identity", owner, opts)
}

func (r *Repository) ListByTenant(ctx context.Context, tenant string, opts simpledocs.ListOptions) (*simpledocs.DocumentPage, error) {
	return r.list(ctx, "owner_tenant", tenant, opts)
}

func (r *Repository) list(ctx context.Context, column, value string, opts simpledocs.ListOptions) (*simpledocs.DocumentPage, error) {
	conds := []string{fmt.Sprintf("%s = $1", column)}
	args := []interface{}{value}

	if !opts.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if opts.Cursor != "" {
		createdAt, id, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		args = append(args, createdAt)
		args = append(args, id)
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, strings.Join(conds, " AND "), len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list documents", err)
	}
	defer rows.Close()

	var items []*simpledocs.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, r.handlePostgresError("list documents", err)
		}
		items = append(items, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list documents", err)
	}

	page := &simpledocs.DocumentPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		last := page.Items[limit-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// Cursors are an opaque encoding of the last row's (created_at, id) sort key.

func encodeCursor(createdAt time.Time, id string) string {
	raw := fmt.Sprintf("%d|%s", createdAt.UnixNano(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", simpledocs.ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", simpledocs.ErrInvalidCursor
	}
	var nanos int64
	if _, err := fmt.Sscanf(parts[0], "%d", &nanos); err != nil {
		return time.Time{}, "", simpledocs.ErrInvalidCursor
	}
	return time.Unix(0, nanos).UTC(), parts[1], nil
}
