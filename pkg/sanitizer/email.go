package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail case-folds and trims an email address so that lookups and
// the store's uniqueness constraint agree on a single canonical form.
// Invalid shapes are returned lowercased as-is; validation happens elsewhere.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	domain := parts[1]

	// Consolidate consecutive dots to prevent delivery failures
	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// MaskEmail hides the local part for log output while preserving the domain
// for operator recognition.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + parts[1]
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + parts[1]
}
