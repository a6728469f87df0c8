package mail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Transport names.
const (
	NameMailtrap = "mailtrap"
	NamePostmark = "postmark"
	NameSMTP     = "smtp"
	NameFile     = "file"
	NameNone     = "none"
)

// Transport sends a single message to one or more recipients.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Verifier is implemented by transports that can check connectivity up front.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Address is a sender identity.
type Address struct {
	Email string
	Name  string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is the transport-neutral email payload.
type Message struct {
	From    Address
	To      []string
	Subject string
	HTML    string
	Text    string // plain-text fallback
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From.Email) == "" {
		return fmt.Errorf("%w: sender address is required", ErrInvalidMessage)
	}
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return fmt.Errorf("%w: empty recipient address", ErrInvalidMessage)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTML == "" && m.Text == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}
