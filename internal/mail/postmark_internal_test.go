package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostmark(t *testing.T, handler http.HandlerFunc) *PostmarkTransport {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tr, err := NewPostmark("server-token", "", srv.Client())
	require.NoError(t, err)
	tr.client.BaseURL = srv.URL
	return tr
}

func TestPostmark_Send(t *testing.T) {
	var body map[string]any
	var token, path string

	tr := newTestPostmark(t, func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Postmark-Server-Token")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"owner@example.com","MessageID":"abc","ErrorCode":0,"Message":"OK"}`))
	})

	err := tr.Send(context.Background(), Message{
		From:    Address{Email: "shop@example.com", Name: "Shop"},
		To:      []string{"owner@example.com", "ops@example.com"},
		Subject: "New Order",
		HTML:    "<p>x</p>",
		Text:    "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "server-token", token)
	assert.True(t, strings.HasSuffix(path, "/email"))
	assert.Equal(t, "owner@example.com,ops@example.com", body["To"])
	assert.Equal(t, "New Order", body["Subject"])
	assert.Contains(t, body["From"], "shop@example.com")
}

func TestPostmark_ErrorCode(t *testing.T) {
	tr := newTestPostmark(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	})

	err := tr.Send(context.Background(), Message{
		From:    Address{Email: "shop@example.com"},
		To:      []string{"owner@example.com"},
		Subject: "New Order",
		HTML:    "<p>x</p>",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
	assert.Contains(t, te.Error(), "300")
}

func TestPostmark_BadTokenReportsUnauthorized(t *testing.T) {
	tr := newTestPostmark(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ErrorCode":10,"Message":"No Account or Server API tokens were supplied"}`))
	})

	err := tr.Send(context.Background(), Message{
		From:    Address{Email: "shop@example.com"},
		To:      []string{"owner@example.com"},
		Subject: "New Order",
		HTML:    "<p>x</p>",
	})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
}

func TestPostmark_ErrorCodeInSuccessBody(t *testing.T) {
	tr := newTestPostmark(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":406,"Message":"Inactive recipient"}`))
	})

	err := tr.Send(context.Background(), Message{
		From:    Address{Email: "shop@example.com"},
		To:      []string{"owner@example.com"},
		Subject: "New Order",
		HTML:    "<p>x</p>",
	})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
}

func TestNewPostmark_RequiresServerToken(t *testing.T) {
	_, err := NewPostmark("", "account", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
