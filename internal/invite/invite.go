// Package invite manages pending registration invites: issuing,
// rotating, verifying and consuming single-use tokens that tie an
// email address to a future role.
package invite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/crypto"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/validate"
)

type Store interface {
	CreateInvite(ctx context.Context, inv model.Invite) error
	UpdateInvite(ctx context.Context, inv model.Invite) error
	GetInviteByEmail(ctx context.Context, email string) (model.Invite, error)
	GetInviteByToken(ctx context.Context, token string) (model.Invite, error)
	DeleteInviteByToken(ctx context.Context, token string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager builds an invite manager. A zero ttl means invites never
// expire by elapsed time.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

func validRole(role string) bool {
	switch role {
	case model.RoleTeacher, model.RoleSpeaker, model.RoleAdmin:
		return true
	default:
		return false
	}
}

// Create issues a fresh invite for email. An omitted role means
// speaker. The lookup callers perform beforehand is only a fast path;
// the unique index on invites.email is what turns a concurrent
// duplicate into a Conflict.
func (m *Manager) Create(ctx context.Context, email, role string, firstName, lastName *string) (model.Invite, error) {
	email = validate.NormalizeEmail(email)
	if err := validate.Email(email); err != nil {
		return model.Invite{}, err
	}
	if role == "" {
		role = model.RoleSpeaker
	}
	if !validRole(role) {
		return model.Invite{}, fault.Validation("invalid_role", "role must be teacher, speaker or admin")
	}

	token, err := crypto.NewToken()
	if err != nil {
		return model.Invite{}, fault.Internal("token_error", err)
	}

	inv := model.Invite{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     token,
		Role:      role,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.CreateInvite(ctx, inv); err != nil {
		return model.Invite{}, err
	}
	return inv, nil
}

// Rotate replaces the token (and optionally role and names) of an
// existing invite in place, invalidating the previous token.
func (m *Manager) Rotate(ctx context.Context, existing model.Invite, role string, firstName, lastName *string) (model.Invite, error) {
	if role == "" {
		role = existing.Role
	}
	if !validRole(role) {
		return model.Invite{}, fault.Validation("invalid_role", "role must be teacher, speaker or admin")
	}

	token, err := crypto.NewToken()
	if err != nil {
		return model.Invite{}, fault.Internal("token_error", err)
	}

	updated := existing
	updated.Token = token
	updated.Role = role
	if firstName != nil {
		updated.FirstName = firstName
	}
	if lastName != nil {
		updated.LastName = lastName
	}
	updated.CreatedAt = time.Now().UTC()

	if err := m.store.UpdateInvite(ctx, updated); err != nil {
		return model.Invite{}, err
	}
	return updated, nil
}

func (m *Manager) GetByEmail(ctx context.Context, email string) (model.Invite, error) {
	return m.store.GetInviteByEmail(ctx, validate.NormalizeEmail(email))
}

func (m *Manager) GetByToken(ctx context.Context, token string) (model.Invite, error) {
	return m.store.GetInviteByToken(ctx, token)
}

// RemoveByToken consumes an invite. Removing an already-consumed or
// unknown token is a no-op.
func (m *Manager) RemoveByToken(ctx context.Context, token string) error {
	return m.store.DeleteInviteByToken(ctx, token)
}

// Expired reports whether inv is past the configured expiry window.
// Invites never expire when the manager was built with a zero ttl.
func (m *Manager) Expired(inv model.Invite) bool {
	if m.ttl <= 0 {
		return false
	}
	return time.Now().UTC().After(inv.CreatedAt.Add(m.ttl))
}
