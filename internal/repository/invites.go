package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

const inviteColumns = `id, email, token, role, first_name, last_name, created_at`

func scanInvite(row interface{ Scan(...any) error }) (model.Invite, error) {
	var inv model.Invite
	err := row.Scan(&inv.ID, &inv.Email, &inv.Token, &inv.Role, &inv.FirstName, &inv.LastName, &inv.CreatedAt)
	return inv, err
}

func (s *Store) CreateInvite(ctx context.Context, inv model.Invite) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO invites (id, email, token, role, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, inv.ID, inv.Email, inv.Token, inv.Role, inv.FirstName, inv.LastName, inv.CreatedAt)
	return translate(err, "invite_not_found", "invite_exists")
}

// UpdateInvite rotates the token, role and optional names of an
// existing invite in place. The invite keeps its identity and email;
// the previous token stops resolving.
func (s *Store) UpdateInvite(ctx context.Context, inv model.Invite) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE invites SET token = $1, role = $2, first_name = $3, last_name = $4, created_at = $5
		WHERE id = $6
	`, inv.Token, inv.Role, inv.FirstName, inv.LastName, inv.CreatedAt, inv.ID)
	if err != nil {
		return translate(err, "invite_not_found", "invite_exists")
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "invite_not_found", "invite_exists")
	}
	return nil
}

func (s *Store) GetInviteByEmail(ctx context.Context, email string) (model.Invite, error) {
	inv, err := scanInvite(s.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE email = $1`, email))
	return inv, translate(err, "invite_not_found", "invite_exists")
}

func (s *Store) GetInviteByToken(ctx context.Context, token string) (model.Invite, error) {
	inv, err := scanInvite(s.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = $1`, token))
	return inv, translate(err, "invite_not_found", "invite_exists")
}

// DeleteInviteByToken consumes an invite. Deleting an absent token is
// a no-op, which makes redemption idempotent on the cleanup side.
func (s *Store) DeleteInviteByToken(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM invites WHERE token = $1`, token)
	return translate(err, "invite_not_found", "invite_exists")
}
