package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// AuditTrail implements simpledocs.AuditTrail using PostgreSQL. The
// audit_records table is insert-only; no update or delete statement
// exists in this package.
type AuditTrail struct {
	db DBTX
}

// NewAuditTrail creates a new PostgreSQL audit trail.
func NewAuditTrail(db DBTX) *AuditTrail {
	return &AuditTrail{db: db}
}

// NewAuditTrailWithPool creates a new PostgreSQL audit trail from a pool.
func NewAuditTrailWithPool(pool *pgxpool.Pool) *AuditTrail {
	return &AuditTrail{db: pool}
}

func (t *AuditTrail) Append(ctx context.Context, rec *simpledocs.AuditRecord) error {
	rec.Key = simpledocs.NewAuditKey(rec.OccurredAt)

	query := `
		INSERT INTO audit_records (
			key, occurred_at, actor_identity, actor_tenant, actor_roles,
			action, resource_type, resource_id, result, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := t.db.Exec(ctx, query,
		rec.Key, rec.OccurredAt, rec.Actor.Identity, rec.Actor.Tenant,
		roleStrings(rec.Actor.Roles), string(rec.Action),
		rec.Resource.Type, rec.Resource.ID, string(rec.Result), rec.Details)
	if err != nil {
		return &simpledocs.AuditError{Action: rec.Action, Op: "append", Err: err}
	}
	return nil
}

func (t *AuditTrail) Query(ctx context.Context, q simpledocs.AuditQuery) (*simpledocs.AuditPage, error) {
	conds := []string{"TRUE"}
	var args []interface{}

	if !q.Start.IsZero() {
		args = append(args, q.Start)
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if !q.End.IsZero() {
		args = append(args, q.End)
		conds = append(conds, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if q.Actor != "" {
		args = append(args, q.Actor)
		conds = append(conds, fmt.Sprintf("actor_identity = $%d", len(args)))
	}
	if q.Action != "" {
		args = append(args, "%"+q.Action+"%")
		conds = append(conds, fmt.Sprintf("action ILIKE $%d", len(args)))
	}
	if q.Cursor != "" {
		args = append(args, q.Cursor)
		conds = append(conds, fmt.Sprintf("key < $%d", len(args)))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT key, occurred_at, actor_identity, actor_tenant, actor_roles,
		       action, resource_type, resource_id, result, details
		FROM audit_records
		WHERE %s
		ORDER BY key DESC
		LIMIT $%d`, strings.Join(conds, " AND "), len(args))

	rows, err := t.db.Query(ctx, query, args...)
	if err != nil {
		return nil, &simpledocs.AuditError{Op: "query", Err: err}
	}
	defer rows.Close()

	var items []*simpledocs.AuditRecord
	for rows.Next() {
		var (
			rec   simpledocs.AuditRecord
			roles []string
		)
		var action, result string
		if err := rows.Scan(
			&rec.Key, &rec.OccurredAt, &rec.Actor.Identity, &rec.Actor.Tenant,
			&roles, &action, &rec.Resource.Type, &rec.Resource.ID,
			&result, &rec.Details); err != nil {
			return nil, &simpledocs.AuditError{Op: "query", Err: err}
		}
		rec.Action = simpledocs.AuditAction(action)
		rec.Result = simpledocs.AuditResult(result)
		for _, r := range roles {
			rec.Actor.Roles = append(rec.Actor.Roles, simpledocs.Role(r))
		}
		items = append(items, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &simpledocs.AuditError{Op: "query", Err: err}
	}

	page := &simpledocs.AuditPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = page.Items[limit-1].Key
	}
	return page, nil
}

func roleStrings(roles []simpledocs.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
