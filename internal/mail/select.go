package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// New builds the transport described by cfg. It never fails: missing or invalid
// settings yield a transport whose every Send returns a *ConfigurationError.
func New(cfg Config) Transport {
	name := strings.ToLower(strings.TrimSpace(cfg.Transport))
	if name == "" {
		name = detect(cfg)
	}

	var (
		t   Transport
		err error
	)
	switch name {
	case NameMailtrap:
		t, err = NewMailtrap(cfg.MailtrapAPIToken, cfg.MailtrapAPIURL, nil)
	case NamePostmark:
		t, err = NewPostmark(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, nil)
	case NameSMTP:
		t, err = NewSMTP(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			TLS:      cfg.SMTPTLS,
			SSL:      cfg.SMTPSSL,
			Timeout:  cfg.SMTPTimeout,
		})
	case NameFile:
		t, err = NewFileOutbox(cfg.OutboxDir)
	case "":
		return Unconfigured("set MAILTRAP_API_TOKEN, POSTMARK_SERVER_TOKEN or SMTP_HOST")
	default:
		return Unconfigured(fmt.Sprintf("unknown MAIL_TRANSPORT %q", name))
	}
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			return &unconfigured{name: name, reason: ce.Reason}
		}
		return &unconfigured{name: name, reason: err.Error()}
	}
	return t
}

func detect(cfg Config) string {
	switch {
	case strings.TrimSpace(cfg.MailtrapAPIToken) != "":
		return NameMailtrap
	case strings.TrimSpace(cfg.PostmarkServerToken) != "":
		return NamePostmark
	case strings.TrimSpace(cfg.SMTPHost) != "":
		return NameSMTP
	}
	return ""
}

// Unconfigured returns a transport that rejects every message with reason.
func Unconfigured(reason string) Transport {
	return &unconfigured{name: NameNone, reason: reason}
}

// IsConfigured reports whether t can attempt delivery at all.
func IsConfigured(t Transport) bool {
	_, none := t.(*unconfigured)
	return t != nil && !none
}

type unconfigured struct {
	name   string
	reason string
}

func (u *unconfigured) Name() string { return NameNone }

func (u *unconfigured) Send(context.Context, Message) error {
	return &ConfigurationError{Transport: u.name, Reason: u.reason}
}

func (u *unconfigured) Verify(context.Context) error {
	return &ConfigurationError{Transport: u.name, Reason: u.reason}
}
