package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-order-notify/internal/logger"
	"github.com/imrishuroy/go-order-notify/internal/mail"
	"github.com/imrishuroy/go-order-notify/internal/metrics"
	"github.com/imrishuroy/go-order-notify/internal/notify"
	"github.com/imrishuroy/go-order-notify/internal/orders"
	"github.com/imrishuroy/go-order-notify/internal/validation"
)

// Dispatcher sends the notifications for one normalized order.
type Dispatcher interface {
	Dispatch(ctx context.Context, o *orders.NormalizedOrder) error
	TransportName() string
}

// Publisher enqueues a notification job and returns the queue message id.
type Publisher interface {
	SendOrderMessage(ctx context.Context, messageBody string, attributes map[string]string) (string, error)
}

// HandlerConfig groups dependencies for the order email handlers.
type HandlerConfig struct {
	Dispatcher Dispatcher
	// Publisher is optional; without it the async route is not registered.
	Publisher  Publisher
	Metrics    *metrics.Registry
	BaseURL    string
	TrustProxy bool
	Logger     *slog.Logger
}

type orderEmailHandler struct {
	cfg        HandlerConfig
	validate   *validatorv10.Validate
	normalizer *orders.Normalizer
	log        *slog.Logger
}

// RegisterOrderEmailRoutes registers POST /send-order-email and, when a publisher is
// configured, POST /send-order-email/async.
func RegisterOrderEmailRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := &orderEmailHandler{
		cfg:        cfg,
		validate:   validation.New(),
		normalizer: orders.NewNormalizer(),
		log:        cfg.Logger,
	}
	if h.log == nil {
		h.log = slog.Default()
	}

	r.POST("/send-order-email", h.send)
	if cfg.Publisher != nil {
		r.POST("/send-order-email/async", h.enqueue)
	}
}

// decodeOrder binds the request and decodes the order, writing a 400 on failure.
func (h *orderEmailHandler) decodeOrder(c *gin.Context) (*validation.SendOrderEmailRequest, *orders.Order, bool) {
	var req validation.SendOrderEmailRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		// BindAndValidate already wrote a 400
		return nil, nil, false
	}

	order, err := orders.Decode(req.Order)
	if err != nil {
		if errors.Is(err, orders.ErrMissingOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		}
		return nil, nil, false
	}
	return &req, order, true
}

func (h *orderEmailHandler) send(c *gin.Context) {
	ctx := c.Request.Context()

	_, order, ok := h.decodeOrder(c)
	if !ok {
		return
	}

	hostURL := orders.HostURL(c.Request, h.cfg.BaseURL, h.cfg.TrustProxy)
	normalized, err := h.normalizer.Normalize(order, hostURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		return
	}

	if err := h.cfg.Dispatcher.Dispatch(ctx, normalized); err != nil {
		h.log.ErrorContext(ctx, "order email failed", "order_id", normalized.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Email failed", "details": emailFailureDetails(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *orderEmailHandler) enqueue(c *gin.Context) {
	ctx := c.Request.Context()

	req, order, ok := h.decodeOrder(c)
	if !ok {
		return
	}

	hostURL := orders.HostURL(c.Request, h.cfg.BaseURL, h.cfg.TrustProxy)
	// normalize up front so the caller learns about unusable orders synchronously
	normalized, err := h.normalizer.Normalize(order, hostURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		return
	}

	requestID := logger.RequestID(ctx)
	job := notify.Job{Order: req.Order, HostURL: hostURL, RequestID: requestID}
	if !order.CreatedAt.Set {
		job.ReceivedAt = normalized.CreatedAt.UTC()
	}
	body, err := job.Encode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
		return
	}

	messageID, err := h.cfg.Publisher.SendOrderMessage(ctx, body, map[string]string{
		"order_id":       normalized.ID,
		"correlation_id": requestID,
	})
	if err != nil {
		h.log.ErrorContext(ctx, "enqueue order email failed", "order_id", normalized.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
		return
	}
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.OrdersQueued.Inc()
	}

	h.log.InfoContext(ctx, "order email queued", "order_id", normalized.ID, "message_id", messageID)
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "message_id": messageID})
}

// emailFailureDetails is the short diagnostic returned to callers. Provider response
// bodies and credentials stay in the logs.
func emailFailureDetails(err error) string {
	step := "email"
	var emailErr *notify.EmailError
	if errors.As(err, &emailErr) {
		if emailErr.Step == notify.StepRender {
			return "could not render order email"
		}
		step = emailErr.Step + " email"
	}

	var te *mail.TransportError
	switch {
	case errors.Is(err, mail.ErrNotConfigured):
		return "mail transport not configured"
	case errors.Is(err, mail.ErrInvalidMessage):
		return step + ": invalid message"
	case errors.As(err, &te) && te.Timeout():
		return step + ": mail provider timed out"
	case errors.As(err, &te) && te.StatusCode != 0:
		return fmt.Sprintf("%s: mail provider rejected the message (status %d)", step, te.StatusCode)
	default:
		return step + ": mail provider unreachable"
	}
}
