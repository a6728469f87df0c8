package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultMailtrapURL is the Mailtrap Email Sending API endpoint.
const DefaultMailtrapURL = "https://send.api.mailtrap.io/api/send"

// maxErrorBody caps how much of a provider error response ends up in an error message.
const maxErrorBody = 512

// MailtrapTransport sends through the Mailtrap HTTPS JSON API.
type MailtrapTransport struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewMailtrap returns a Mailtrap transport. A nil client gets a pooled client that
// keeps connections alive across requests.
func NewMailtrap(token, endpoint string, client *http.Client) (*MailtrapTransport, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &ConfigurationError{Transport: NameMailtrap, Reason: "MAILTRAP_API_TOKEN is required"}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultMailtrapURL
	}
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	return &MailtrapTransport{endpoint: endpoint, token: token, client: client}, nil
}

func (t *MailtrapTransport) Name() string { return NameMailtrap }

type mailtrapAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapPayload struct {
	From    mailtrapAddress   `json:"from"`
	To      []mailtrapAddress `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
}

// Send posts the message. Non-2xx answers become a *TransportError carrying the
// status code and a truncated response body.
func (t *MailtrapTransport) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	payload := mailtrapPayload{
		From:    mailtrapAddress{Email: msg.From.Email, Name: msg.From.Name},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	for _, to := range msg.To {
		payload.To = append(payload.To, mailtrapAddress{Email: to})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mailtrap payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Transport: NameMailtrap, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &TransportError{Transport: NameMailtrap, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := strings.TrimSpace(string(respBody))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return &TransportError{Transport: NameMailtrap, StatusCode: resp.StatusCode, Err: errors.New(detail)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
