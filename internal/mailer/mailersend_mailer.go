package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendVerificationCode(toEmail, code string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your OTP for Qualityveda Attendance"
	text := fmt.Sprintf("Your OTP code is: %s", code)
	html := fmt.Sprintf(`
		<h2>Qualityveda Attendance</h2>
		<p>Your verification code is: <strong style="font-size: 24px;">%s</strong></p>
		<p>Enter it in the app to sign in. If you did not request a code, ignore this email.</p>
	`, code)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(m.from)
	message.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	message.SetSubject(subject)
	message.SetText(text)
	message.SetHTML(html)

	_, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailersend send failed: %w", err)
	}
	return nil
}
