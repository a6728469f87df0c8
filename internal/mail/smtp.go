package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      string // opportunistic, mandatory or none
	SSL      bool
	Timeout  time.Duration
}

// SMTPTransport delivers through an authenticated SMTP relay. A single client is
// shared by all requests; sends are serialised on it.
type SMTPTransport struct {
	sem    chan struct{}
	client *gomail.Client
}

// NewSMTP builds the SMTP client. No connection is opened until Verify or Send.
func NewSMTP(cfg SMTPConfig) (*SMTPTransport, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, &ConfigurationError{Transport: NameSMTP, Reason: "SMTP_HOST is required"}
	}
	if cfg.Username != "" && cfg.Password == "" {
		return nil, &ConfigurationError{Transport: NameSMTP, Reason: "SMTP_PASSWORD is required when SMTP_USERNAME is set"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []gomail.Option{
		gomail.WithTLSPolicy(tlsPolicy(cfg.TLS)),
		gomail.WithTimeout(timeout),
		gomail.WithDialContextFunc(deadlineDialer(host, cfg.SSL, timeout)),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.SSL {
		opts = append(opts, gomail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, &ConfigurationError{Transport: NameSMTP, Reason: err.Error()}
	}
	return &SMTPTransport{sem: make(chan struct{}, 1), client: client}, nil
}

// deadlineDialer opens the relay connection and pins an I/O deadline on it.
// go-mail applies the context to the TCP dial only, so without this a relay that
// never sends its greeting blocks forever. go-mail re-arms the deadline with its
// own timeout once a message goes out. A custom dialer replaces go-mail's
// implicit TLS dialer, so SSL is handled here.
func deadlineDialer(host string, useSSL bool, fallback time.Duration) func(context.Context, string, string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var (
			conn net.Conn
			err  error
		)
		if useSSL {
			d := tls.Dialer{Config: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}}
			conn, err = d.DialContext(ctx, network, addr)
		} else {
			var d net.Dialer
			conn, err = d.DialContext(ctx, network, addr)
		}
		if err != nil {
			return nil, err
		}

		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(fallback)
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func tlsPolicy(s string) gomail.TLSPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mandatory":
		return gomail.TLSMandatory
	case "none":
		return gomail.NoTLS
	default:
		return gomail.TLSOpportunistic
	}
}

func (t *SMTPTransport) Name() string { return NameSMTP }

// acquire waits for the shared client or gives up when ctx ends first.
func (t *SMTPTransport) acquire(ctx context.Context) (func(), error) {
	select {
	case t.sem <- struct{}{}:
		return func() { <-t.sem }, nil
	case <-ctx.Done():
		return nil, &TransportError{Transport: NameSMTP, Err: ctx.Err()}
	}
}

// Verify dials the relay, authenticates and hangs up.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := t.client.DialWithContext(ctx); err != nil {
		return &TransportError{Transport: NameSMTP, Err: err}
	}
	if err := t.client.Close(); err != nil {
		return &TransportError{Transport: NameSMTP, Err: err}
	}
	return nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(msg.From.Name, msg.From.Email); err != nil {
		return fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}
	m.Subject(msg.Subject)
	if msg.Text != "" {
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		if msg.HTML != "" {
			m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
		}
	} else {
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	}

	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return &TransportError{Transport: NameSMTP, Err: err}
	}
	return nil
}
