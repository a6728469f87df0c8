package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAIL_TRANSPORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.App.Port)
	assert.Equal(t, ":3000", cfg.App.Addr())
	assert.Equal(t, "images", cfg.App.ImagesDir)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.Equal(t, "Ksh", cfg.Notify.Currency)
	assert.Equal(t, 15*time.Second, cfg.Notify.SendTimeout)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.Equal(t, "file", cfg.Records.Backend)
	assert.Equal(t, "db.json", cfg.Records.Path)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("API_URL", " https://api.example.com/ ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("OWNER_EMAIL", "a@example.com,b@example.com")
	t.Setenv("MAIL_SEND_TIMEOUT", "3s")
	t.Setenv("RECORDS_BACKEND", "dynamodb")
	t.Setenv("RECORDS_TABLE", "records")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.Production())
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "https://api.example.com/", cfg.App.APIURL)
	assert.Len(t, cfg.App.CORSOrigins, 2)
	assert.Equal(t, "a@example.com,b@example.com", cfg.Notify.OwnerEmail)
	assert.Equal(t, 3*time.Second, cfg.Notify.SendTimeout)
	assert.Equal(t, "records", cfg.Records.Table)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad port", "PORT", "99999"},
		{"unparseable port", "PORT", "http"},
		{"unknown transport", "MAIL_TRANSPORT", "pigeon"},
		{"bad from address", "FROM_EMAIL", "not-an-email"},
		{"dynamodb without table", "RECORDS_BACKEND", "dynamodb"},
		{"zero timeout", "MAIL_SEND_TIMEOUT", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RECORDS_TABLE", "")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}
