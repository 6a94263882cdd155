package account

import (
	"context"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/crypto"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/validate"
)

// VerifyEmail consumes a verification token and marks the account
// verified.
func (p *Provisioner) VerifyEmail(ctx context.Context, token string) error {
	user, err := p.store.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return fault.Validation("invalid_token", "verification token is invalid or already used")
		}
		return err
	}
	return p.store.SetUserVerified(ctx, user.ID)
}

// ForgotPassword mints a time-bounded reset token and emails it. An
// unknown email is treated as success so the endpoint does not reveal
// which addresses are registered.
func (p *Provisioner) ForgotPassword(ctx context.Context, email string) error {
	email = validate.NormalizeEmail(email)
	if err := validate.Email(email); err != nil {
		return err
	}

	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return nil
		}
		return err
	}

	token, err := crypto.NewToken()
	if err != nil {
		return fault.Internal("token_error", err)
	}
	expiry := time.Now().UTC().Add(p.resetTokenTTL)
	if err := p.store.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return err
	}

	p.notifyAfterCommit(ctx, notify.KindReset, email, token)
	return nil
}

// ResetPassword consumes a reset token and replaces the password.
func (p *Provisioner) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validate.Password(newPassword); err != nil {
		return err
	}

	user, err := p.store.GetUserByResetToken(ctx, token)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return fault.Validation("invalid_token", "reset token is invalid or already used")
		}
		return err
	}
	if user.ResetTokenExpiry == nil || time.Now().UTC().After(*user.ResetTokenExpiry) {
		return fault.Validation("token_expired", "reset token has expired")
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fault.Internal("hash_error", err)
	}
	return p.store.UpdateUserPassword(ctx, user.ID, hash)
}
