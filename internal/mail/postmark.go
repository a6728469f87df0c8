package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/mrz1836/postmark"
)

const postmarkBadToken = 10

// PostmarkTransport sends through Postmark's transactional API.
type PostmarkTransport struct {
	client *postmark.Client
}

// NewPostmark returns a Postmark transport. The account token is optional; only the
// server token is needed to send.
func NewPostmark(serverToken, accountToken string, httpClient *http.Client) (*PostmarkTransport, error) {
	if strings.TrimSpace(serverToken) == "" {
		return nil, &ConfigurationError{Transport: NamePostmark, Reason: "POSTMARK_SERVER_TOKEN is required"}
	}
	client := postmark.NewClient(serverToken, accountToken)
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	client.HTTPClient = httpClient
	return &PostmarkTransport{client: client}, nil
}

func (t *PostmarkTransport) Name() string { return NamePostmark }

func (t *PostmarkTransport) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := t.client.SendEmail(ctx, postmark.Email{
		From:     msg.From.String(),
		To:       strings.Join(msg.To, ","),
		Subject:  msg.Subject,
		HTMLBody: msg.HTML,
		TextBody: msg.Text,
	})
	var apiErr postmark.APIError
	switch {
	case errors.As(err, &apiErr):
		return &TransportError{
			Transport:  NamePostmark,
			StatusCode: postmarkStatus(apiErr.ErrorCode),
			Err:        fmt.Errorf("postmark error %d: %s", apiErr.ErrorCode, apiErr.Message),
		}
	case resp.ErrorCode > 0:
		return &TransportError{
			Transport:  NamePostmark,
			StatusCode: postmarkStatus(resp.ErrorCode),
			Err:        fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message),
		}
	case err != nil:
		return &TransportError{Transport: NamePostmark, Err: err}
	}
	return nil
}

// postmarkStatus recovers the HTTP status the client library drops. Postmark
// answers 401 for token errors (code 10) and 422 for every other API error code.
func postmarkStatus(code int64) int {
	if code == postmarkBadToken {
		return http.StatusUnauthorized
	}
	return http.StatusUnprocessableEntity
}
