package auth

import "context"

// logMailer is the default Mailer: it logs that a message would have been
// sent without the confirmation link itself. Production wiring must provide
// a real implementation.
type logMailer struct {
	logger Logger
}

func (m logMailer) SendRegistrationEmail(ctx context.Context, toEmail, displayName, confirmationLink string) error {
	m.logger.Info("registration email suppressed, no mailer configured", "to", toEmail, "name", displayName)
	return nil
}

var _ Mailer = logMailer{}
