// Package validate holds the input-format rules shared by the invite
// and provisioning flows. All checks run before any storage write.
package validate

import (
	"regexp"
	"strings"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRe     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z ,.'-]*$`)
	passwordRe = regexp.MustCompile(`^[a-zA-Z0-9!?$%^*)(+=._-]{6,61}$`)
)

// NormalizeEmail lowercases and trims; user emails are compared
// case-insensitively throughout.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Email(email string) error {
	if !emailRe.MatchString(email) {
		return fault.Validation("invalid_email", "email address is malformed")
	}
	return nil
}

// Password enforces 6-61 characters from the restricted charset.
func Password(password string) error {
	if !passwordRe.MatchString(password) {
		return fault.Validation("invalid_password", "password must be 6-61 allowed characters")
	}
	return nil
}

// Name allows letters, spaces and ,.'- only.
func Name(name string) error {
	if !nameRe.MatchString(name) {
		return fault.Validation("invalid_name", "name contains unsupported characters")
	}
	return nil
}
