package notify

import "time"

// Config holds the sender identity and presentation settings for order emails.
type Config struct {
	FromEmail   string        `env:"FROM_EMAIL" envDefault:"no-reply@yarnlychic.test" validate:"required,email"`
	FromName    string        `env:"FROM_NAME" envDefault:"Yarnly Chic"`
	OwnerEmail  string        `env:"OWNER_EMAIL"` // comma separated; entries without "@" are ignored
	StoreName   string        `env:"STORE_NAME" envDefault:"Yarnly Chic"`
	Currency    string        `env:"CURRENCY_LABEL" envDefault:"Ksh"`
	Timezone    string        `env:"DISPLAY_TIMEZONE"` // IANA name, empty means process local time
	SendTimeout time.Duration `env:"MAIL_SEND_TIMEOUT" envDefault:"15s" validate:"gt=0"`
}
