package email

import (
	"context"
	"fmt"
	"regexp"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`       // Email address of the recipient
	Subject  string `json:"subject"`       // Subject of the email
	BodyHTML string `json:"body_html"`     // HTML body of the email
	Tag      string `json:"tag,omitempty"` // Optional categorization tag
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the minimum requirements for dispatch.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" || !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}
