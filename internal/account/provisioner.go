// Package account provisions users and their role profiles, and
// coordinates cascading deletion when an account is removed.
package account

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/crypto"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/invite"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/validate"
)

// Store is the slice of the entity store the account flows touch.
type Store interface {
	CreateUser(ctx context.Context, user model.User) error
	CreateTeacherAccount(ctx context.Context, user model.User, p model.TeacherProfile) error
	CreateSpeakerAccount(ctx context.Context, user model.User, p model.SpeakerProfile) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (model.User, error)
	GetUserByResetToken(ctx context.Context, token string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListSpeakerProfiles(ctx context.Context) (map[string]model.SpeakerProfile, error)
	SetUserVerified(ctx context.Context, userID string) error
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	GetSpeakerProfileByUserID(ctx context.Context, userID string) (model.SpeakerProfile, error)
	DeleteTeacherAccount(ctx context.Context, userID string) (int64, error)
	DeleteSpeakerAccount(ctx context.Context, userID, speakerProfileID string) (int64, error)
	DeleteUser(ctx context.Context, userID string) error
}

type Provisioner struct {
	store            Store
	invites          *invite.Manager
	notifier         notify.Notifier
	skipVerification bool
	resetTokenTTL    time.Duration
}

func NewProvisioner(store Store, invites *invite.Manager, notifier notify.Notifier, skipVerification bool, resetTokenTTL time.Duration) *Provisioner {
	return &Provisioner{
		store:            store,
		invites:          invites,
		notifier:         notifier,
		skipVerification: skipVerification,
		resetTokenTTL:    resetTokenTTL,
	}
}

// notifyAfterCommit fires a notification for already-persisted state.
// Delivery failure is logged, never surfaced: the state change stands.
func (p *Provisioner) notifyAfterCommit(ctx context.Context, kind notify.Kind, email, token string) {
	if err := p.notifier.Send(ctx, kind, email, token); err != nil {
		log.Printf("account: %s notification to %s failed: %v", kind, email, err)
	}
}

func sanitize(user model.User) model.User {
	user.PasswordHash = ""
	return user
}

type RegisterSelfInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string

	// Teacher-only fields, required when Role is teacher.
	School     string
	GradeLevel string
	City       string
	State      string
	Country    string
	Subjects   []string
	Bio        string

	// CallerIsAdmin marks registrations submitted by an authenticated
	// admin; those accounts skip email verification.
	CallerIsAdmin bool
}

// RegisterSelf creates a user plus the role profile. The user row and
// profile row are written in one transaction: both exist afterwards
// or neither does.
func (p *Provisioner) RegisterSelf(ctx context.Context, in RegisterSelfInput) (model.User, error) {
	email := validate.NormalizeEmail(in.Email)
	if err := validate.Email(email); err != nil {
		return model.User{}, err
	}
	if err := validate.Password(in.Password); err != nil {
		return model.User{}, err
	}
	if err := validate.Name(in.FirstName); err != nil {
		return model.User{}, err
	}
	if err := validate.Name(in.LastName); err != nil {
		return model.User{}, err
	}
	if in.Role != model.RoleTeacher && in.Role != model.RoleSpeaker {
		return model.User{}, fault.Validation("invalid_role", "role must be teacher or speaker")
	}
	if in.Role == model.RoleTeacher {
		if in.School == "" || in.GradeLevel == "" || in.City == "" || in.Country == "" || len(in.Subjects) == 0 || in.Bio == "" {
			return model.User{}, fault.Validation("missing_teacher_fields", "teacher registration requires school, grade level, city, country, subjects and bio")
		}
	}

	// Advisory fast path; the unique index is the real arbiter under
	// concurrency.
	if _, err := p.store.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, fault.Conflict("email_taken", "email already registered")
	} else if fault.KindOf(err) != fault.KindNotFound {
		return model.User{}, err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return model.User{}, fault.Internal("hash_error", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Verified:     in.CallerIsAdmin || p.skipVerification,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var verificationToken string
	if !user.Verified {
		verificationToken, err = crypto.NewToken()
		if err != nil {
			return model.User{}, fault.Internal("token_error", err)
		}
		user.VerificationToken = &verificationToken
	}

	switch in.Role {
	case model.RoleTeacher:
		profile := model.TeacherProfile{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			School:     in.School,
			City:       in.City,
			State:      in.State,
			Country:    in.Country,
			GradeLevel: in.GradeLevel,
			Subjects:   in.Subjects,
			Bio:        in.Bio,
		}
		if err := p.store.CreateTeacherAccount(ctx, user, profile); err != nil {
			return model.User{}, err
		}
	case model.RoleSpeaker:
		profile := model.SpeakerProfile{
			ID:      uuid.NewString(),
			UserID:  user.ID,
			Visible: false,
		}
		if err := p.store.CreateSpeakerAccount(ctx, user, profile); err != nil {
			return model.User{}, err
		}
	}

	if !user.Verified {
		p.notifyAfterCommit(ctx, notify.KindVerify, email, verificationToken)
	}
	return sanitize(user), nil
}

type RegisterFromInviteInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	InviteToken string
}

// RegisterFromInvite redeems an invite. Role and admin flag come from
// the invite, the account is verified immediately, and the consumed
// invite is deleted. No profile row is created on this path; profile
// creation is a later explicit step.
func (p *Provisioner) RegisterFromInvite(ctx context.Context, in RegisterFromInviteInput) (model.User, error) {
	email := validate.NormalizeEmail(in.Email)
	if err := validate.Email(email); err != nil {
		return model.User{}, err
	}
	if err := validate.Password(in.Password); err != nil {
		return model.User{}, err
	}
	if err := validate.Name(in.FirstName); err != nil {
		return model.User{}, err
	}
	if err := validate.Name(in.LastName); err != nil {
		return model.User{}, err
	}

	inv, err := p.invites.GetByToken(ctx, in.InviteToken)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			return model.User{}, fault.Validation("invalid_invite", "invite token does not match a pending invite")
		}
		return model.User{}, err
	}
	if inv.Email != email {
		return model.User{}, fault.Validation("invalid_invite", "invite token does not match a pending invite")
	}
	if p.invites.Expired(inv) {
		return model.User{}, fault.Validation("invite_expired", "invite has expired; ask for a new one")
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return model.User{}, fault.Internal("hash_error", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         inv.Role,
		Admin:        inv.Role == model.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.CreateUser(ctx, user); err != nil {
		return model.User{}, err
	}

	if err := p.invites.RemoveByToken(ctx, inv.Token); err != nil {
		log.Printf("account: consumed invite cleanup for %s failed: %v", email, err)
	}
	return sanitize(user), nil
}

type SpeakerDirectInput struct {
	Email     string
	FirstName string
	LastName  string

	Organization string
	Bio          string
	City         string
	State        string
	Country      string
	InPerson     bool
	Virtual      bool
	ImageURL     *string
	Industries   []string
	Grades       []string
	Latitude     *float64
	Longitude    *float64
	Languages    []string
}

// CreateSpeakerDirect provisions a speaker on an admin's say-so: the
// profile is published immediately regardless of completeness, the
// password is a throwaway, and a reset token is issued so the speaker
// can claim the account.
func (p *Provisioner) CreateSpeakerDirect(ctx context.Context, in SpeakerDirectInput) (model.User, model.SpeakerProfile, error) {
	email := validate.NormalizeEmail(in.Email)
	if err := validate.Email(email); err != nil {
		return model.User{}, model.SpeakerProfile{}, err
	}
	if err := validate.Name(in.FirstName); err != nil {
		return model.User{}, model.SpeakerProfile{}, err
	}
	if err := validate.Name(in.LastName); err != nil {
		return model.User{}, model.SpeakerProfile{}, err
	}
	for _, grade := range in.Grades {
		if !model.ValidGrade(grade) {
			return model.User{}, model.SpeakerProfile{}, fault.Validation("invalid_grade", "grades must be Elementary, Middle School or High School")
		}
	}

	if _, err := p.store.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, model.SpeakerProfile{}, fault.Conflict("email_taken", "email already registered")
	} else if fault.KindOf(err) != fault.KindNotFound {
		return model.User{}, model.SpeakerProfile{}, err
	}

	throwaway, err := crypto.NewThrowawayPassword()
	if err != nil {
		return model.User{}, model.SpeakerProfile{}, fault.Internal("token_error", err)
	}
	hash, err := crypto.HashPassword(throwaway)
	if err != nil {
		return model.User{}, model.SpeakerProfile{}, fault.Internal("hash_error", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSpeaker,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := model.SpeakerProfile{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Organization: in.Organization,
		Bio:          in.Bio,
		City:         in.City,
		State:        in.State,
		Country:      in.Country,
		InPerson:     in.InPerson,
		Virtual:      in.Virtual,
		ImageURL:     in.ImageURL,
		Industries:   in.Industries,
		Grades:       in.Grades,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Languages:    in.Languages,
		Visible:      true,
	}
	if err := p.store.CreateSpeakerAccount(ctx, user, profile); err != nil {
		return model.User{}, model.SpeakerProfile{}, err
	}

	resetToken, err := crypto.NewToken()
	if err != nil {
		return model.User{}, model.SpeakerProfile{}, fault.Internal("token_error", err)
	}
	if err := p.store.SetResetToken(ctx, user.ID, resetToken, now.Add(p.resetTokenTTL)); err != nil {
		return model.User{}, model.SpeakerProfile{}, err
	}

	p.notifyAfterCommit(ctx, notify.KindSpeakerWelcome, email, resetToken)
	return sanitize(user), profile, nil
}
