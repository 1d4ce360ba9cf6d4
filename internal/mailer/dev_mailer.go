package mailer

import (
	"github.com/qualityveda/attendance-hub/pkg/logger"
)

// DevMailer logs codes instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVerificationCode(toEmail, code string) error {
	logger.Info("[DEV MAIL] Verification code",
		"to", toEmail,
		"code", code,
	)
	return nil
}
