package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// MailConfig holds the outbound SMTP settings.  An empty Host disables
// delivery; mails are then only logged.
type MailConfig struct {
	Host       string        `envconfig:"SMTP_HOST"`
	Port       int           `envconfig:"SMTP_PORT" default:"587"`
	User       string        `envconfig:"SMTP_USER"`
	Password   string        `envconfig:"SMTP_PASSWORD"`
	Secure     bool          `envconfig:"SMTP_SECURE" default:"false"` // implicit TLS instead of STARTTLS
	From       string        `envconfig:"EMAIL_FROM" default:"noreply@musiksponsoring.de"`
	AdminEmail string        `envconfig:"ADMIN_EMAIL" default:"admin@musiksponsoring.de"`
	Timeout    time.Duration `envconfig:"SMTP_TIMEOUT" default:"10s"`
}

func LoadMailConfig() (MailConfig, error) {
	var c MailConfig
	if err := envconfig.Process("", &c); err != nil {
		return MailConfig{}, err
	}
	return c, nil
}
