package mail_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-order-notify/internal/mail"
)

func TestNew_UnconfiguredMakesNoNetworkCalls(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	tr := mail.New(mail.Config{MailtrapAPIURL: srv.URL})
	assert.Equal(t, mail.NameNone, tr.Name())
	assert.False(t, mail.IsConfigured(tr))

	for i := 0; i < 3; i++ {
		err := tr.Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.ErrorIs(t, err, mail.ErrNotConfigured)
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNew_Selection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  mail.Config
		want string
	}{
		{
			name: "mailtrap token",
			cfg:  mail.Config{MailtrapAPIToken: "t", PostmarkServerToken: "p", SMTPHost: "smtp.example.com"},
			want: mail.NameMailtrap,
		},
		{
			name: "postmark before smtp",
			cfg:  mail.Config{PostmarkServerToken: "p", SMTPHost: "smtp.example.com", SMTPPort: 587},
			want: mail.NamePostmark,
		},
		{
			name: "smtp host",
			cfg:  mail.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUsername: "u", SMTPPassword: "p"},
			want: mail.NameSMTP,
		},
		{
			name: "explicit smtp wins over detected api",
			cfg:  mail.Config{Transport: "smtp", MailtrapAPIToken: "t", SMTPHost: "smtp.example.com", SMTPPort: 2525},
			want: mail.NameSMTP,
		},
		{
			name: "explicit file",
			cfg:  mail.Config{Transport: "FILE", OutboxDir: "outbox"},
			want: mail.NameFile,
		},
		{
			name: "nothing",
			cfg:  mail.Config{},
			want: mail.NameNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mail.New(tt.cfg).Name())
		})
	}
}

func TestNew_ExplicitTransportMissingSettings(t *testing.T) {
	t.Parallel()

	tr := mail.New(mail.Config{Transport: "smtp"})
	require.False(t, mail.IsConfigured(tr))

	err := tr.Send(context.Background(), testMessage())
	var ce *mail.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, mail.NameSMTP, ce.Transport)
	assert.Contains(t, err.Error(), "SMTP_HOST is required")

	err = mail.New(mail.Config{Transport: "carrier-pigeon"}).Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestNewSMTP_PasswordRequiredWithUsername(t *testing.T) {
	t.Parallel()

	_, err := mail.NewSMTP(mail.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u"})
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testMessage().Validate())

	m := testMessage()
	m.Subject = " "
	assert.ErrorIs(t, m.Validate(), mail.ErrInvalidMessage)

	m = testMessage()
	m.From.Email = ""
	assert.ErrorIs(t, m.Validate(), mail.ErrInvalidMessage)

	m = testMessage()
	m.To = []string{"a@example.com", ""}
	assert.ErrorIs(t, m.Validate(), mail.ErrInvalidMessage)
}

func TestAddress_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "shop@example.com", mail.Address{Email: "shop@example.com"}.String())
	assert.Equal(t, `"Yarnly Chic" <shop@example.com>`, mail.Address{Email: "shop@example.com", Name: "Yarnly Chic"}.String())
}
