// Package identity answers who holds a role and whether a user is active.
package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// Directory is a static identity and role directory loaded from configuration.
type Directory struct {
	mu        sync.RWMutex
	users     map[string]model.Identity
	approvers map[string]string
}

// NewDirectory builds a directory from the user list and the role -> designated approver map.
// Every designated approver must be a known user.
func NewDirectory(users []model.Identity, approvers map[string]string) (*Directory, error) {
	d := &Directory{
		users:     make(map[string]model.Identity, len(users)),
		approvers: make(map[string]string, len(approvers)),
	}

	for _, u := range users {
		if u.UserID == "" {
			return nil, fmt.Errorf("directory entry without id")
		}
		d.users[u.UserID] = u
	}

	for role, userID := range approvers {
		if _, ok := d.users[userID]; !ok {
			return nil, fmt.Errorf("approver %q for role %q is not in the directory", userID, role)
		}
		d.approvers[role] = userID
	}

	return d, nil
}

// Lookup returns the identity of a user.
func (d *Directory) Lookup(_ context.Context, userID string) (model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[userID]
	if !ok {
		return model.Identity{}, fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
	}

	return u, nil
}

// ApproverForRole returns the designated approver of a role.
// Roles without an explicit approver fall back to their only active member.
func (d *Directory) ApproverForRole(ctx context.Context, role string) (string, error) {
	d.mu.RLock()
	userID, ok := d.approvers[role]
	d.mu.RUnlock()

	if ok {
		return userID, nil
	}

	members, err := d.MembersOfRole(ctx, role)
	if err != nil {
		return "", err
	}

	if len(members) != 1 {
		return "", fmt.Errorf("role %s has %d active members and no designated approver: %w",
			role, len(members), model.ErrInvalidConfiguration)
	}

	return members[0].UserID, nil
}

// MembersOfRole returns the active users holding a role, ordered by id.
func (d *Directory) MembersOfRole(_ context.Context, role string) ([]model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []model.Identity
	for _, u := range d.users {
		if u.Role == role && u.Active {
			out = append(out, u)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

// Upsert adds or replaces a user.
func (d *Directory) Upsert(u model.Identity) {
	d.mu.Lock()
	d.users[u.UserID] = u
	d.mu.Unlock()
}

// SetApprover designates the approver of a role.
func (d *Directory) SetApprover(role, userID string) {
	d.mu.Lock()
	d.approvers[role] = userID
	d.mu.Unlock()
}
