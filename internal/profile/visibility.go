// Package profile holds derived speaker-profile calculations.
package profile

import "strings"

// Complete reports whether a speaker profile has the four fields that
// qualify it for public visibility: organization, bio, city and
// country, all non-blank after trimming. It is a pure derivation and
// never changes the stored visible flag.
func Complete(organization, bio, city, country string) bool {
	for _, field := range []string{organization, bio, city, country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
