// Package notify delivers account emails. Delivery is best-effort:
// callers persist state first and only log a failed send.
package notify

import (
	"context"
	"log"
)

type Kind string

const (
	KindVerify         Kind = "verify"
	KindInvite         Kind = "invite"
	KindReset          Kind = "reset"
	KindSpeakerWelcome Kind = "speaker_welcome"
)

type Notifier interface {
	Send(ctx context.Context, kind Kind, email, token string) error
}

// LogNotifier is the fallback when no SMTP host is configured. It
// keeps local development working without a mail relay.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, kind Kind, email, _ string) error {
	log.Printf("notify: %s email for %s (smtp not configured, token withheld)", kind, email)
	return nil
}
