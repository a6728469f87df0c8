package mail

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured matches every *ConfigurationError.
	ErrNotConfigured = errors.New("mail transport not configured")
	// ErrSendFailed matches every *TransportError.
	ErrSendFailed = errors.New("mail send failed")
	// ErrInvalidMessage is returned before any I/O when a message lacks required fields.
	ErrInvalidMessage = errors.New("invalid mail message")
)

// ConfigurationError means no usable transport exists. Retrying will not help.
type ConfigurationError struct {
	Transport string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Transport == "" || e.Transport == NameNone {
		return fmt.Sprintf("mail transport not configured: %s", e.Reason)
	}
	return fmt.Sprintf("mail transport %s not configured: %s", e.Transport, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrNotConfigured }

// TransportError wraps a network or provider failure. The caller may retry.
type TransportError struct {
	Transport  string
	StatusCode int // provider HTTP status, 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: provider returned %d: %v", e.Transport, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrSendFailed }

// Timeout reports whether the send was cut off by its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}
