package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

// Directory implements simpledocs.IdentityDirectory with in-memory
// storage. Stands in for the identity provider's management API in tests
// and development.
type Directory struct {
	mu    sync.RWMutex
	users map[string]*simpledocs.User
	// signedOut counts revocations per identity. Test observability only.
	signedOut map[string]int
}

// NewDirectory creates a new in-memory identity directory.
func NewDirectory() *Directory {
	return &Directory{
		users:     make(map[string]*simpledocs.User),
		signedOut: make(map[string]int),
	}
}

// AddUser seeds a directory entry.
func (d *Directory) AddUser(user *simpledocs.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	userCopy := *user
	d.users[user.Identity] = &userCopy
}

func (d *Directory) ListUsers(ctx context.Context, limit int, cursor string) (*simpledocs.UserPage, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := make([]*simpledocs.User, 0, len(d.users))
	for _, user := range d.users {
		userCopy := *user
		userCopy.Roles = nil // roles come from RolesOf enrichment
		all = append(all, &userCopy)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Identity < all[j].Identity
	})

	start := 0
	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		for i, user := range all {
			if user.Identity == after {
				start = i + 1
				break
			}
		}
	}

	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	items := all[start:end]

	page := &simpledocs.UserPage{Items: items}
	if end < len(all) && len(items) > 0 {
		page.NextCursor = encodeCursor(items[len(items)-1].Identity)
	}
	return page, nil
}

func (d *Directory) RolesOf(ctx context.Context, identity string) ([]simpledocs.Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, exists := d.users[identity]
	if !exists {
		return nil, simpledocs.ErrUserNotFound
	}
	return append([]simpledocs.Role(nil), user.Roles...), nil
}

func (d *Directory) SetRoles(ctx context.Context, identity string, roles []simpledocs.Role, tenant string) ([]simpledocs.Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, exists := d.users[identity]
	if !exists {
		return nil, simpledocs.ErrUserNotFound
	}
	old := user.Roles
	user.Roles = append([]simpledocs.Role(nil), roles...)
	if tenant != "" {
		user.Tenant = tenant
	}
	return old, nil
}

func (d *Directory) SignOut(ctx context.Context, identity string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[identity]; !exists {
		return simpledocs.ErrUserNotFound
	}
	d.signedOut[identity]++
	return nil
}

// SignOutCount reports revocations for an identity. Test helper.
func (d *Directory) SignOutCount(identity string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.signedOut[identity]
}
