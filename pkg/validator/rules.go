package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// ValidEmail validates that a string is a usable email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil {
				return false
			}

			// Additional checks for typical web use beyond RFC 5322.
			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 || parts[0] == "" {
				return false
			}
			domain := parts[1]
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}

			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// PasswordStrengthConfig describes password requirements.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // Minimum number of different character classes required
}

// DefaultPasswordStrength requires 8-128 characters from at least two
// character classes. Deliberately pragmatic: strict class requirements push
// users toward predictable substitutions.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      128,
		MinCharClasses: 2,
	}
}

// StrongPassword validates length and character-class diversity.
func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < config.MinLength || len(value) > config.MaxLength {
				return false
			}

			charClasses := 0
			for _, re := range []*regexp.Regexp{uppercaseRegex, lowercaseRegex, digitRegex, specialCharRegex} {
				if re.MatchString(value) {
					charClasses++
				}
			}

			return charClasses >= config.MinCharClasses
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("password must be %d-%d characters with at least %d character types", config.MinLength, config.MaxLength, config.MinCharClasses),
		},
	}
}
