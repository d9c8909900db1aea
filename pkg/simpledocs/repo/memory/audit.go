package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// AuditTrail implements simpledocs.AuditTrail with in-memory storage.
// Records are append-only: nothing in the API can mutate or remove one.
type AuditTrail struct {
	mu      sync.RWMutex
	records []*simpledocs.AuditRecord
}

// NewAuditTrail creates a new in-memory audit trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

func (t *AuditTrail) Append(ctx context.Context, rec *simpledocs.AuditRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	recCopy := *rec
	recCopy.Key = simpledocs.NewAuditKey(rec.OccurredAt)
	t.records = append(t.records, &recCopy)
	rec.Key = recCopy.Key
	return nil
}

func (t *AuditTrail) Query(ctx context.Context, q simpledocs.AuditQuery) (*simpledocs.AuditPage, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var all []*simpledocs.AuditRecord
	for _, rec := range t.records {
		if !simpledocs.MatchesAuditQuery(rec, q) {
			continue
		}
		recCopy := *rec
		all = append(all, &recCopy)
	}

	// ULID keys sort chronologically; newest first.
	sort.Slice(all, func(i, j int) bool {
		return all[i].Key > all[j].Key
	})

	start := 0
	if q.Cursor != "" {
		afterKey, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		for i, rec := range all {
			if rec.Key == afterKey {
				start = i + 1
				break
			}
		}
	}

	end := len(all)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	items := all[start:end]

	page := &simpledocs.AuditPage{Items: items}
	if end < len(all) && len(items) > 0 {
		page.NextCursor = encodeCursor(items[len(items)-1].Key)
	}
	return page, nil
}

// Len reports the number of appended records. Test helper.
func (t *AuditTrail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}
