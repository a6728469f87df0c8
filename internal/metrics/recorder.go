package metrics

import "time"

// Send outcomes.
const (
	OutcomeSent           = "sent"
	OutcomeConfigError    = "config_error"
	OutcomeTransportError = "transport_error"
	OutcomeInvalid        = "invalid"
)

// Recorder observes individual email sends.
type Recorder interface {
	ObserveSend(recipient, outcome string, took time.Duration)
}

// Nop discards observations.
type Nop struct{}

func (Nop) ObserveSend(string, string, time.Duration) {}

// Multi fans an observation out to several recorders. Nil entries are skipped.
func Multi(recorders ...Recorder) Recorder {
	out := make(multi, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multi []Recorder

func (m multi) ObserveSend(recipient, outcome string, took time.Duration) {
	for _, r := range m {
		r.ObserveSend(recipient, outcome, took)
	}
}
