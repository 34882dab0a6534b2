package email

import (
	"context"
	"log/slog"
)

// DevSender implements EmailSender for local development. It logs the email
// instead of sending it through a transactional service, so flows that
// depend on verification or reset links can be exercised from the log output.
type DevSender struct {
	logger *slog.Logger
}

// NewDevSender creates a development email sender that writes to the logger.
func NewDevSender(logger *slog.Logger) EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevSender{logger: logger}
}

// SendEmail logs the message at info level.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.logger.InfoContext(ctx, "dev email",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		slog.String("body_html", params.BodyHTML),
	)
	return nil
}
