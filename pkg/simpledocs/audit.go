package simpledocs

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewAuditKey assigns the ordering key for an audit record: a ULID seeded
// from the record's occurrence time, so keys sort chronologically with a
// random tiebreak for records in the same millisecond.
func NewAuditKey(occurredAt time.Time) string {
	return ulid.MustNew(ulid.Timestamp(occurredAt.UTC()), rand.Reader).String()
}

// MatchesAuditQuery reports whether a record satisfies the query filters.
// Shared by trail implementations that filter in process. Action matches
// by case-insensitive substring.
func MatchesAuditQuery(rec *AuditRecord, q AuditQuery) bool {
	if !q.Start.IsZero() && rec.OccurredAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.OccurredAt.After(q.End) {
		return false
	}
	if q.Actor != "" && rec.Actor.Identity != q.Actor {
		return false
	}
	if q.Action != "" && !strings.Contains(strings.ToLower(string(rec.Action)), strings.ToLower(q.Action)) {
		return false
	}
	return true
}
