package mocks

import (
	"gymsync/backend/internal/email"
)

// MockMailer implements email.Mailer for testing. It records what was sent so
// tests can assert on delivery without a relay.
type MockMailer struct {
	SendOTPFunc     func(to, name, code string) error
	SendWelcomeFunc func(to, name string) error

	SentOTPs     []SentOTP
	SentWelcomes []string
}

// SentOTP is one recorded SendOTP call.
type SentOTP struct {
	To   string
	Name string
	Code string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendOTP(to, name, code string) error {
	m.SentOTPs = append(m.SentOTPs, SentOTP{To: to, Name: name, Code: code})
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(to, name, code)
	}
	return nil
}

func (m *MockMailer) SendWelcome(to, name string) error {
	m.SentWelcomes = append(m.SentWelcomes, to)
	if m.SendWelcomeFunc != nil {
		return m.SendWelcomeFunc(to, name)
	}
	return nil
}

var _ email.Mailer = (*MockMailer)(nil)
