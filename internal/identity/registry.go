// Package identity keeps the email-keyed user registry. An identity is
// written on first-time registration and overwritten if registration is
// re-run for the same email; it is never deleted.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/pkg/kv"
)

const usersKey = "users"

type Registry struct {
	mu         sync.Mutex
	kv         kv.Store
	adminEmail string
}

func NewRegistry(store kv.Store, adminEmail string) *Registry {
	return &Registry{kv: store, adminEmail: adminEmail}
}

func identityKey(email string) string {
	return "identity:" + domain.NormalizeEmail(email)
}

// FindByEmail returns nil when no identity is registered for the email.
func (r *Registry) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	raw, ok, err := r.kv.Get(ctx, identityKey(email))
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &id, nil
}

// Save upserts the identity and keeps the user index current. The index is
// what the administrator aggregate view iterates.
func (r *Registry) Save(ctx context.Context, id domain.Identity) error {
	id.Email = domain.NormalizeEmail(id.Email)

	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Set(ctx, identityKey(id.Email), string(raw)); err != nil {
		return fmt.Errorf("failed to persist identity: %w", err)
	}

	emails, err := r.listEmailsLocked(ctx)
	if err != nil {
		return err
	}
	for _, e := range emails {
		if e == id.Email {
			return nil
		}
	}
	emails = append(emails, id.Email)

	encoded, err := json.Marshal(emails)
	if err != nil {
		return fmt.Errorf("failed to encode user index: %w", err)
	}
	if err := r.kv.Set(ctx, usersKey, string(encoded)); err != nil {
		return fmt.Errorf("failed to persist user index: %w", err)
	}
	return nil
}

func (r *Registry) ListEmails(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listEmailsLocked(ctx)
}

func (r *Registry) listEmailsLocked(ctx context.Context) ([]string, error) {
	raw, ok, err := r.kv.Get(ctx, usersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load user index: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var emails []string
	if err := json.Unmarshal([]byte(raw), &emails); err != nil {
		return nil, fmt.Errorf("failed to decode user index: %w", err)
	}
	return emails, nil
}

func (r *Registry) IsAdmin(email string) bool {
	return domain.IsAdminEmail(email, r.adminEmail)
}

func (r *Registry) AdminEmail() string {
	return r.adminEmail
}
