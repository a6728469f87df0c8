package mail

import "time"

// Config selects and configures the transport. Transport may name one explicitly;
// when empty the first configured provider wins in the order Mailtrap, Postmark, SMTP.
type Config struct {
	Transport string `env:"MAIL_TRANSPORT" validate:"omitempty,oneof=mailtrap postmark smtp file"`

	MailtrapAPIToken string `env:"MAILTRAP_API_TOKEN"`
	MailtrapAPIURL   string `env:"MAILTRAP_API_URL" envDefault:"https://send.api.mailtrap.io/api/send" validate:"omitempty,url"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587" validate:"min=1,max=65535"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPTLS      string        `env:"SMTP_TLS" envDefault:"opportunistic" validate:"oneof=opportunistic mandatory none"`
	SMTPSSL      bool          `env:"SMTP_SSL"` // implicit TLS, usually port 465
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`

	OutboxDir string `env:"MAIL_OUTBOX_DIR" envDefault:"outbox"`
}
