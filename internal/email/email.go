package email

import (
	"fmt"

	"gymsync/backend/internal/config"

	gomail "gopkg.in/gomail.v2"
)

// Mailer defines the interface for outbound transactional mail.
type Mailer interface {
	// SendOTP delivers a verification code to a prospective member.
	SendOTP(to, name, code string) error

	// SendWelcome greets a freshly verified account.
	SendWelcome(to, name string) error
}

// smtpMailer implements Mailer over plain SMTP.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a Mailer that sends through the configured SMTP relay.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) SendOTP(to, name, code string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Your GymSync verification code is <strong>%s</strong>.</p>"+
			"<p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>",
		name, code)
	return m.send(to, "Your GymSync verification code", body)
}

func (m *smtpMailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Your email is verified and your GymSync account is ready.</p>"+
			"<p>Log in to browse plans and get started.</p>",
		name)
	return m.send(to, "Welcome to GymSync", body)
}

func (m *smtpMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
