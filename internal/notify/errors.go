package notify

import "fmt"

// Dispatch steps reported by EmailError.
const (
	StepRender   = "render"
	StepOwner    = "owner"
	StepCustomer = "customer"
)

// EmailError reports which step of a dispatch failed. The underlying error is a
// *mail.ConfigurationError, *mail.TransportError or a rendering error.
type EmailError struct {
	Step    string
	OrderID string
	Err     error
}

func (e *EmailError) Error() string {
	switch e.Step {
	case StepRender:
		return fmt.Sprintf("render order emails: %v", e.Err)
	default:
		return fmt.Sprintf("send %s email: %v", e.Step, e.Err)
	}
}

func (e *EmailError) Unwrap() error { return e.Err }
