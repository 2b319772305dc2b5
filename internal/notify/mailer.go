// Package notify sends the mails that follow a sponsorship.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/iliyamo/song-sponsorship/internal/config"
)

// ErrTransport wraps every failure to hand a mail to the transport.
var ErrTransport = errors.New("mail transport failed")

// Mailer sends one HTML mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	from   string
	client *mail.Client
}

// NewSMTPMailer builds a mailer from cfg.  cfg.Host must be set.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{from: cfg.From, client: client}, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("%w: from %q: %v", ErrTransport, m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: to %q: %v", ErrTransport, to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// LogMailer only logs mails.  It is used when no SMTP host is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mailer").Logger()}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, to, subject, html string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Int("bytes", len(html)).Msg("mail not sent, SMTP disabled")
	return nil
}

// NewMailer picks the SMTP mailer when a host is configured and the log
// mailer otherwise.
func NewMailer(cfg config.MailConfig, log zerolog.Logger) (Mailer, error) {
	if cfg.Host == "" {
		return NewLogMailer(log), nil
	}
	return NewSMTPMailer(cfg)
}
