package account

import (
	"context"
	"fmt"
	"net/url"

	"github.com/quitplan/quitplan/pkg/email"
	"github.com/quitplan/quitplan/pkg/queue"
)

// SendVerificationEmail is the queued payload for a verification email.
// The task name is derived from this type, so enqueuer and worker agree
// without shared constants.
type SendVerificationEmail struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// SendPasswordResetEmail is the queued payload for a password reset email.
type SendPasswordResetEmail struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// NewEmailHandlers returns the queue handlers for account emails. Register
// them on the worker that drains the default queue.
func NewEmailHandlers(sender email.EmailSender, cfg Config) []queue.Handler {
	return []queue.Handler{
		queue.NewTaskHandler(func(ctx context.Context, p SendVerificationEmail) error {
			link := buildLink(cfg.AppBaseURL, "/verify-email", p.Token)
			return sender.SendEmail(ctx, email.SendEmailParams{
				SendTo:   p.Email,
				Subject:  fmt.Sprintf("Verify your %s email", cfg.AppName),
				BodyHTML: verificationEmailBody(cfg.AppName, link),
				Tag:      "email-verification",
			})
		}),
		queue.NewTaskHandler(func(ctx context.Context, p SendPasswordResetEmail) error {
			link := buildLink(cfg.AppBaseURL, "/reset-password", p.Token)
			return sender.SendEmail(ctx, email.SendEmailParams{
				SendTo:   p.Email,
				Subject:  fmt.Sprintf("Reset your %s password", cfg.AppName),
				BodyHTML: passwordResetEmailBody(cfg.AppName, link),
				Tag:      "password-reset",
			})
		}),
	}
}

func buildLink(baseURL, path, tokenString string) string {
	return baseURL + path + "?token=" + url.QueryEscape(tokenString)
}

func verificationEmailBody(appName, link string) string {
	return fmt.Sprintf(`<html><body>
<h2>Welcome to %[1]s</h2>
<p>Confirm your email address to activate your account. The link is valid for 24 hours.</p>
<p><a href="%[2]s">Verify my email</a></p>
<p>If you did not create a %[1]s account, you can ignore this message.</p>
</body></html>`, appName, link)
}

func passwordResetEmailBody(appName, link string) string {
	return fmt.Sprintf(`<html><body>
<h2>Reset your %[1]s password</h2>
<p>Follow the link below to choose a new password. The link is valid for 1 hour.</p>
<p><a href="%[2]s">Reset my password</a></p>
<p>If you did not request a reset, your password is unchanged and no action is needed.</p>
</body></html>`, appName, link)
}
