package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidJob is returned by DecodeJob for bodies that are not a job document.
var ErrInvalidJob = errors.New("invalid notification job")

// Job is the queue message for an asynchronous dispatch. The order stays raw so
// the worker applies exactly the same decoding and defaults as the HTTP endpoint.
type Job struct {
	Order     json.RawMessage `json:"order"`
	HostURL   string          `json:"host_url"`
	RequestID string          `json:"request_id,omitempty"`

	// ReceivedAt is when the API accepted an order that carried no createdAt.
	ReceivedAt time.Time `json:"received_at,omitzero"`
}

// Encode returns the JSON message body.
func (j Job) Encode() (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	return string(b), nil
}

// DecodeJob parses a queue message body.
func DecodeJob(body string) (Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return j, nil
}
