package mail_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-order-notify/internal/mail"
)

func testMessage() mail.Message {
	return mail.Message{
		From:    mail.Address{Email: "shop@example.com", Name: "Yarnly Chic"},
		To:      []string{"owner@example.com", "ops@example.com"},
		Subject: "New Order #7",
		HTML:    "<p>hi</p>",
		Text:    "Please view this email in HTML format.",
	}
}

func TestMailtrap_Send(t *testing.T) {
	t.Parallel()

	var got struct {
		From struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"from"`
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
		Text    string `json:"text"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"message_ids":["1"]}`))
	}))
	defer srv.Close()

	tr, err := mail.NewMailtrap("secret-token", srv.URL, srv.Client())
	require.NoError(t, err)
	assert.Equal(t, mail.NameMailtrap, tr.Name())

	require.NoError(t, tr.Send(context.Background(), testMessage()))
	assert.Equal(t, "Bearer secret-token", auth)
	assert.Equal(t, "shop@example.com", got.From.Email)
	assert.Equal(t, "Yarnly Chic", got.From.Name)
	require.Len(t, got.To, 2)
	assert.Equal(t, "ops@example.com", got.To[1].Email)
	assert.Equal(t, "New Order #7", got.Subject)
	assert.Equal(t, "<p>hi</p>", got.HTML)
	assert.Equal(t, "Please view this email in HTML format.", got.Text)
}

func TestMailtrap_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["Unauthorized"]}`))
	}))
	defer srv.Close()

	tr, err := mail.NewMailtrap("bad", srv.URL, srv.Client())
	require.NoError(t, err)

	err = tr.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, mail.ErrSendFailed)

	var te *mail.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Contains(t, err.Error(), "Unauthorized")
	assert.False(t, te.Timeout())
}

func TestMailtrap_TimeoutIsTransportError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tr, err := mail.NewMailtrap("token", srv.URL, srv.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = tr.Send(ctx, testMessage())
	var te *mail.TransportError
	require.True(t, errors.As(err, &te), "expected TransportError, got %v", err)
	assert.True(t, te.Timeout())
}

func TestMailtrap_InvalidMessageMakesNoRequest(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	tr, err := mail.NewMailtrap("token", srv.URL, srv.Client())
	require.NoError(t, err)

	msg := testMessage()
	msg.To = nil
	err = tr.Send(context.Background(), msg)
	assert.ErrorIs(t, err, mail.ErrInvalidMessage)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNewMailtrap_RequiresToken(t *testing.T) {
	t.Parallel()

	tr, err := mail.NewMailtrap("  ", "", nil)
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
	assert.Contains(t, err.Error(), "MAILTRAP_API_TOKEN")
}
