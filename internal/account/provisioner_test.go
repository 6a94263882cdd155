package account

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/invite"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/notify"
	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/storetest"
)

type sentMail struct {
	Kind  notify.Kind
	Email string
	Token string
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (c *captureNotifier) Send(_ context.Context, kind notify.Kind, email, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMail{Kind: kind, Email: email, Token: token})
	return nil
}

func (c *captureNotifier) last(t *testing.T) sentMail {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		t.Fatalf("expected a notification to have been sent")
	}
	return c.sent[len(c.sent)-1]
}

func newProvisioner(store *storetest.Store) (*Provisioner, *captureNotifier) {
	notifier := &captureNotifier{}
	invites := invite.NewManager(store, 0)
	return NewProvisioner(store, invites, notifier, false, time.Hour), notifier
}

func TestRegisterSelfSpeaker(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	p, notifier := newProvisioner(store)

	user, err := p.RegisterSelf(ctx, RegisterSelfInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@b.com",
		Password:  "abc123",
		Role:      model.RoleSpeaker,
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if user.Verified {
		t.Fatalf("expected self-registered speaker to start unverified")
	}
	if user.PasswordHash != "" {
		t.Fatalf("expected password hash to be withheld from the result")
	}

	sp, err := store.GetSpeakerProfileByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("expected a speaker profile to exist: %v", err)
	}
	if sp.Visible {
		t.Fatalf("expected minimal speaker profile to be hidden")
	}

	mail := notifier.last(t)
	if mail.Kind != notify.KindVerify || mail.Email != "a@b.com" {
		t.Fatalf("expected verification email to a@b.com, got %+v", mail)
	}
	if mail.Token == "" {
		t.Fatalf("expected verification token in the notification")
	}
}

func TestRegisterSelfTeacherRequiresProfileFields(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	p, _ := newProvisioner(store)

	_, err := p.RegisterSelf(ctx, RegisterSelfInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "g@h.com",
		Password:  "abc123",
		Role:      model.RoleTeacher,
	})
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("expected validation error without teacher fields, got %v", err)
	}

	user, err := p.RegisterSelf(ctx, RegisterSelfInput{
		FirstName:  "Grace",
		LastName:   "Hopper",
		Email:      "g@h.com",
		Password:   "abc123",
		Role:       model.RoleTeacher,
		School:     "Central High",
		GradeLevel: "9-12",
		City:       "Philadelphia",
		Country:    "USA",
		Subjects:   []string{"science"},
		Bio:        "Physics teacher",
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if _, err := store.GetTeacherProfileByUserID(ctx, user.ID); err != nil {
		t.Fatalf("expected teacher profile: %v", err)
	}
}

func TestRegisterSelfDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvisioner(storetest.New())

	input := RegisterSelfInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "a@b.com", Password: "abc123", Role: model.RoleSpeaker,
	}
	if _, err := p.RegisterSelf(ctx, input); err != nil {
		t.Fatalf("first register error: %v", err)
	}
	_, err := p.RegisterSelf(ctx, input)
	if fault.KindOf(err) != fault.KindConflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestRegisterFromInvite(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	notifier := &captureNotifier{}
	invites := invite.NewManager(store, 0)
	p := NewProvisioner(store, invites, notifier, false, time.Hour)

	inv, err := invites.Create(ctx, "c@d.com", model.RoleTeacher, nil, nil)
	if err != nil {
		t.Fatalf("invite error: %v", err)
	}

	// Wrong email for the token is rejected.
	_, err = p.RegisterFromInvite(ctx, RegisterFromInviteInput{
		FirstName: "Mary", LastName: "Jackson",
		Email: "other@d.com", Password: "abc123", InviteToken: inv.Token,
	})
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("expected validation error for mismatched email, got %v", err)
	}

	user, err := p.RegisterFromInvite(ctx, RegisterFromInviteInput{
		FirstName: "Mary", LastName: "Jackson",
		Email: "c@d.com", Password: "abc123", InviteToken: inv.Token,
	})
	if err != nil {
		t.Fatalf("redeem error: %v", err)
	}
	if user.Role != model.RoleTeacher {
		t.Fatalf("expected role from invite, got %s", user.Role)
	}
	if !user.Verified {
		t.Fatalf("expected invited account to be verified immediately")
	}

	if _, err := invites.GetByToken(ctx, inv.Token); fault.KindOf(err) != fault.KindNotFound {
		t.Fatalf("expected invite to be consumed, got %v", err)
	}
}

func TestRegisterFromAdminInviteSetsAdminFlag(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	invites := invite.NewManager(store, 0)
	p := NewProvisioner(store, invites, &captureNotifier{}, false, time.Hour)

	inv, err := invites.Create(ctx, "boss@d.com", model.RoleAdmin, nil, nil)
	if err != nil {
		t.Fatalf("invite error: %v", err)
	}
	user, err := p.RegisterFromInvite(ctx, RegisterFromInviteInput{
		FirstName: "Kat", LastName: "Johnson",
		Email: "boss@d.com", Password: "abc123", InviteToken: inv.Token,
	})
	if err != nil {
		t.Fatalf("redeem error: %v", err)
	}
	if !user.Admin {
		t.Fatalf("expected admin flag from admin invite")
	}
}

func TestRegisterFromInviteExpired(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	invites := invite.NewManager(store, time.Hour)
	p := NewProvisioner(store, invites, &captureNotifier{}, false, time.Hour)

	inv, err := invites.Create(ctx, "late@d.com", model.RoleSpeaker, nil, nil)
	if err != nil {
		t.Fatalf("invite error: %v", err)
	}
	stale := store.Invites[inv.ID]
	stale.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	store.Invites[inv.ID] = stale

	_, err = p.RegisterFromInvite(ctx, RegisterFromInviteInput{
		FirstName: "Late", LastName: "Riser",
		Email: "late@d.com", Password: "abc123", InviteToken: inv.Token,
	})
	if fault.CodeOf(err) != "invite_expired" {
		t.Fatalf("expected invite_expired, got %v", err)
	}
}

func TestCreateSpeakerDirect(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	notifier := &captureNotifier{}
	invites := invite.NewManager(store, 0)
	p := NewProvisioner(store, invites, notifier, false, time.Hour)

	user, sp, err := p.CreateSpeakerDirect(ctx, SpeakerDirectInput{
		Email:        "s@org.com",
		FirstName:    "Sally",
		LastName:     "Ride",
		Organization: "Space Camp",
		Bio:          "Astronaut",
		City:         "Houston",
		Country:      "USA",
		Grades:       []string{model.GradeHigh},
	})
	if err != nil {
		t.Fatalf("direct create error: %v", err)
	}
	if !sp.Visible {
		t.Fatalf("expected admin-created speaker to be visible")
	}
	if !user.Verified {
		t.Fatalf("expected admin-created speaker to be verified")
	}

	stored, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if stored.ResetToken == nil {
		t.Fatalf("expected a reset token so the speaker can set a password")
	}
	mail := notifier.last(t)
	if mail.Kind != notify.KindSpeakerWelcome || mail.Token != *stored.ResetToken {
		t.Fatalf("expected welcome mail carrying the reset token, got %+v", mail)
	}

	_, _, err = p.CreateSpeakerDirect(ctx, SpeakerDirectInput{
		Email: "s@org.com", FirstName: "Sally", LastName: "Ride",
	})
	if fault.KindOf(err) != fault.KindConflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	_, _, err = p.CreateSpeakerDirect(ctx, SpeakerDirectInput{
		Email: "g@org.com", FirstName: "Gr", LastName: "Ade",
		Grades: []string{"Kindergarten"},
	})
	if fault.CodeOf(err) != "invalid_grade" {
		t.Fatalf("expected invalid_grade, got %v", err)
	}
}

func TestVerifyAndResetFlows(t *testing.T) {
	ctx := context.Background()
	store := storetest.New()
	notifier := &captureNotifier{}
	invites := invite.NewManager(store, 0)
	p := NewProvisioner(store, invites, notifier, false, time.Hour)

	user, err := p.RegisterSelf(ctx, RegisterSelfInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "a@b.com", Password: "abc123", Role: model.RoleSpeaker,
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	verifyToken := notifier.last(t).Token
	if err := p.VerifyEmail(ctx, verifyToken); err != nil {
		t.Fatalf("verify error: %v", err)
	}
	stored, _ := store.GetUserByID(ctx, user.ID)
	if !stored.Verified || stored.VerificationToken != nil {
		t.Fatalf("expected verified user with consumed token")
	}
	if err := p.VerifyEmail(ctx, verifyToken); fault.CodeOf(err) != "invalid_token" {
		t.Fatalf("expected consumed verification token to be rejected, got %v", err)
	}

	if err := p.ForgotPassword(ctx, "a@b.com"); err != nil {
		t.Fatalf("forgot error: %v", err)
	}
	resetToken := notifier.last(t).Token
	if err := p.ResetPassword(ctx, resetToken, "newpass1"); err != nil {
		t.Fatalf("reset error: %v", err)
	}
	if err := p.ResetPassword(ctx, resetToken, "newpass2"); fault.CodeOf(err) != "invalid_token" {
		t.Fatalf("expected consumed reset token to be rejected, got %v", err)
	}

	// Unknown email does not reveal registration status.
	if err := p.ForgotPassword(ctx, "nobody@b.com"); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
}
