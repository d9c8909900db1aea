package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// Repository implements simpledocs.DocumentRepository with in-memory
// storage. Safe for concurrent use; all reads and writes copy so callers
// can never mutate stored state.
type Repository struct {
	mu   sync.RWMutex
	docs map[string]*simpledocs.Document // composite key -> document
}

// New creates a new in-memory document repository.
func New() *Repository {
	return &Repository{
		docs: make(map[string]*simpledocs.Document),
	}
}

func compositeKey(tenant, owner, id string) string {
	return fmt.Sprintf("TENANT#%s#USER#%s#DOC#%s", tenant, owner, id)
}

func (r *Repository) Get(ctx context.Context, tenant, owner, id string) (*simpledocs.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.docs[compositeKey(tenant, owner, id)]
	if !exists {
		return nil, simpledocs.ErrDocumentNotFound
	}
	docCopy := *doc
	return &docCopy, nil
}

func (r *Repository) Put(ctx context.Context, doc *simpledocs.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docCopy := *doc
	r.docs[compositeKey(doc.OwnerTenant, doc.OwnerIdentity, doc.ID)] = &docCopy
	return nil
}

func (r *Repository) Update(ctx context.Context, tenant, owner, id string, patch simpledocs.DocumentPatch) (*simpledocs.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.docs[compositeKey(tenant, owner, id)]
	if !exists {
		return nil, simpledocs.ErrDocumentNotFound
	}

	if patch.Name != nil {
		doc.Name = *patch.Name
	}
	if patch.Tags != nil {
		doc.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.DeletedAt != nil {
		doc.DeletedAt = *patch.DeletedAt
	}
	doc.UpdatedAt = time.Now().UTC()

	docCopy := *doc
	return &docCopy, nil
}

func (r *Repository) FindByChecksum(ctx context.Context, tenant, owner, checksum string) (*simpledocs.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := fmt.Sprintf("TENANT#%s#USER#%s#DOC#", tenant, owner)
	for key, doc := range r.docs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if doc.Checksum == checksum && doc.DeletedAt == nil {
			docCopy := *doc
			return &docCopy, nil
		}
	}
	return nil, simpledocs.ErrDocumentNotFound
}

// FindByID scans the whole table. Kept for parity with the reference
// system, which has no secondary index on document ID alone; a production
// store should index document_id so this is O(1). The postgres
// repository does.
func (r *Repository) FindByID(ctx context.Context, id string) (*simpledocs.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.docs {
		if doc.ID == id {
			docCopy := *doc
			return &docCopy, nil
		}
	}
	return nil, simpledocs.ErrDocumentNotFound
}

func (r *Repository) ListByOwner(ctx context.Context, owner string, opts simpledocs.ListOptions) (*simpledocs.DocumentPage, error) {
	return r.list(func(doc *simpledocs.Document) bool {
		return doc.OwnerIdentity == owner
	}, opts)
}

func (r *Repository) ListByTenant(ctx context.Context, tenant string, opts simpledocs.ListOptions) (*simpledocs.DocumentPage, error) {
	return r.list(func(doc *simpledocs.Document) bool {
		return doc.OwnerTenant == tenant
	}, opts)
}

func (r *Repository) list(match func(*simpledocs.Document) bool, opts simpledocs.ListOptions) (*simpledocs.DocumentPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*simpledocs.Document
	for _, doc := range r.docs {
		if !match(doc) {
			continue
		}
		if doc.DeletedAt != nil && !opts.IncludeDeleted {
			continue
		}
		docCopy := *doc
		all = append(all, &docCopy)
	}

	// Newest first, document ID as tiebreak so pagination is stable.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := 0
	if opts.Cursor != "" {
		afterID, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		for i, doc := range all {
			if doc.ID == afterID {
				start = i + 1
				break
			}
		}
	}

	end := len(all)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	items := all[start:end]

	page := &simpledocs.DocumentPage{Items: items}
	if end < len(all) && len(items) > 0 {
		page.NextCursor = encodeCursor(items[len(items)-1].ID)
	}
	return page, nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", simpledocs.ErrInvalidCursor
	}
	return string(raw), nil
}
