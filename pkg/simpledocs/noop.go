package simpledocs

import (
	"context"
)

// NoopAuditTrail discards every record. Useful for tests and tooling
// that exercise the lifecycle without caring about the trail.
type NoopAuditTrail struct{}

// NewNoopAuditTrail creates a no-op audit trail.
func NewNoopAuditTrail() *NoopAuditTrail {
	return &NoopAuditTrail{}
}

func (t *NoopAuditTrail) Append(ctx context.Context, rec *AuditRecord) error {
	rec.Key = NewAuditKey(rec.OccurredAt)
	return nil
}

func (t *NoopAuditTrail) Query(ctx context.Context, q AuditQuery) (*AuditPage, error) {
	return &AuditPage{Items: []*AuditRecord{}}, nil
}
