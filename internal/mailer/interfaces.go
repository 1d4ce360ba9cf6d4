package mailer

// Service is the narrow mail boundary the auth flow depends on.
type Service interface {
	SendVerificationCode(toEmail, code string) error
}
