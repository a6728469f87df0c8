package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/imrishuroy/go-order-notify/internal/mail"
	"github.com/imrishuroy/go-order-notify/internal/metrics"
	"github.com/imrishuroy/go-order-notify/internal/orders"
)

const defaultSendTimeout = 15 * time.Second

// Dispatcher renders order emails and sends them through a mail transport.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	transport mail.Transport
	renderer  *Renderer
	from      mail.Address
	owners    []string
	timeout   time.Duration
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithRecorder(r metrics.Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher builds a Dispatcher from cfg. An unknown DISPLAY_TIMEZONE is a
// configuration error; a nil transport behaves as an unconfigured one.
func NewDispatcher(cfg Config, transport mail.Transport, opts ...Option) (*Dispatcher, error) {
	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load display timezone %q: %w", tz, err)
		}
		loc = l
	}
	if transport == nil {
		transport = mail.Unconfigured("no transport provided")
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	d := &Dispatcher{
		transport: transport,
		renderer:  NewRenderer(cfg.Currency, cfg.StoreName, loc),
		from:      mail.Address{Email: strings.TrimSpace(cfg.FromEmail), Name: cfg.FromName},
		owners:    OwnerRecipients(cfg.OwnerEmail, cfg.FromEmail),
		timeout:   timeout,
		recorder:  metrics.Nop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// TransportName reports the active transport, "none" when unconfigured.
func (d *Dispatcher) TransportName() string { return d.transport.Name() }

// Dispatch renders both documents, sends the owner notification and then, when the
// customer gave an address, the customer confirmation. The two sends are sequential.
// Any failure, including a failed customer send after the owner was notified, is
// returned as an *EmailError.
func (d *Dispatcher) Dispatch(ctx context.Context, o *orders.NormalizedOrder) error {
	if o == nil {
		return &orders.ValidationError{Field: "order", Err: orders.ErrMissingOrder}
	}
	log := d.logger.With("order_id", o.ID, "transport", d.transport.Name())

	rendered, err := d.renderer.Render(o)
	if err != nil {
		log.ErrorContext(ctx, "render order emails failed", "error", err)
		return &EmailError{Step: StepRender, OrderID: o.ID, Err: err}
	}

	err = d.send(ctx, StepOwner, mail.Message{
		From:    d.from,
		To:      d.owners,
		Subject: rendered.OwnerSubject,
		HTML:    rendered.OwnerHTML,
		Text:    rendered.Text,
	})
	if err != nil {
		log.ErrorContext(ctx, "owner email failed", "error", err)
		return &EmailError{Step: StepOwner, OrderID: o.ID, Err: err}
	}
	log.InfoContext(ctx, "owner email sent", "recipients", len(d.owners))

	if o.Customer.Email == "" {
		log.InfoContext(ctx, "no customer email, skipping confirmation")
		return nil
	}

	err = d.send(ctx, StepCustomer, mail.Message{
		From:    d.from,
		To:      []string{o.Customer.Email},
		Subject: rendered.CustomerSubject,
		HTML:    rendered.CustomerHTML,
		Text:    rendered.Text,
	})
	if err != nil {
		log.ErrorContext(ctx, "customer email failed", "owner_notified", true, "error", err)
		return &EmailError{Step: StepCustomer, OrderID: o.ID, Err: err}
	}
	log.InfoContext(ctx, "customer email sent")
	return nil
}

func (d *Dispatcher) send(ctx context.Context, step string, msg mail.Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.transport.Send(ctx, msg)
	if err != nil && !errors.Is(err, mail.ErrSendFailed) &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		err = &mail.TransportError{Transport: d.transport.Name(), Err: err}
	}
	d.recorder.ObserveSend(step, outcome(err), time.Since(start))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSent
	case errors.Is(err, mail.ErrNotConfigured):
		return metrics.OutcomeConfigError
	case errors.Is(err, mail.ErrInvalidMessage):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeTransportError
	}
}

// OwnerRecipients parses a comma separated owner list, keeping entries that contain
// "@". When none qualify the sender address is used.
func OwnerRecipients(ownerEmail, fallback string) []string {
	var out []string
	for _, addr := range strings.Split(ownerEmail, ",") {
		addr = strings.TrimSpace(addr)
		if strings.Contains(addr, "@") {
			out = append(out, addr)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(fallback)}
	}
	return out
}
