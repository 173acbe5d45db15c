package services

import (
	"errors"
	"fmt"
	"os"

	"github.com/wneessen/go-mail"
)

// ErrMailDelivery marks any failure between a committed database write and
// the confirmation email leaving the relay. The caller reports it as an
// operational error; committed rows are never rolled back.
var ErrMailDelivery = errors.New("mail delivery failed")

// Mailer delivers a subject and HTML body to a single address.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// EmailService is the SMTP mail sink, authenticated against the Gmail relay
// with the EMAIL_USER/EMAIL_PASS credentials.
type EmailService struct {
	client    *mail.Client
	fromEmail string
}

func NewEmailService() (*EmailService, error) {
	emailUser := os.Getenv("EMAIL_USER")
	emailPass := os.Getenv("EMAIL_PASS")
	if emailUser == "" || emailPass == "" {
		if os.Getenv("SKIP_EMAIL_SEND") == "true" {
			return &EmailService{}, nil
		}
		return nil, fmt.Errorf("EMAIL_USER and EMAIL_PASS environment variables not set")
	}

	client, err := mail.NewClient("smtp.gmail.com",
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(emailUser),
		mail.WithPassword(emailPass),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build SMTP client: %w", err)
	}

	return &EmailService{
		client:    client,
		fromEmail: emailUser,
	}, nil
}

func (s *EmailService) Send(to, subject, htmlBody string) error {
	// Skip email sending in test mode
	if os.Getenv("SKIP_EMAIL_SEND") == "true" {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat("ROVI Project", s.fromEmail); err != nil {
		return fmt.Errorf("%w: sender address: %v", ErrMailDelivery, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: recipient address: %v", ErrMailDelivery, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}
