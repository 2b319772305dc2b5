package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/song-sponsorship/internal/metrics"
	"github.com/iliyamo/song-sponsorship/internal/model"
)

const (
	kindConfirmation = "confirmation"
	kindAdmin        = "admin"
)

var (
	confirmationTmpl = template.Must(template.New(kindConfirmation).Funcs(funcs).Parse(`
<h1>Vielen Dank für Ihr Sponsoring!</h1>
<p>Hallo {{.Sponsor.FirstName}} {{.Sponsor.LastName}},</p>
<p>Vielen Dank für Ihre Unterstützung. Wir haben Ihre Sponsoring-Anfrage für das folgende Lied erhalten:</p>
<div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px; margin: 20px 0;">
  <p><strong>Lied:</strong> {{.Song.Name}}</p>
  <p><strong>Komponist:</strong> {{.Song.Composer}}</p>
  <p><strong>Besetzung:</strong> {{.Song.Arrangement}}</p>
  <p><strong>Anzahl:</strong> {{.Song.Count}}</p>
  <p><strong>Preis pro Stück:</strong> {{euro .Song.UnitPrice}}</p>
  <p><strong>Gesamtbetrag:</strong> {{euro .Song.TotalPrice}}</p>
</div>
{{if .Sponsor.Message}}<p>Ihre Nachricht an uns:</p>
<p style="font-style: italic;">{{.Sponsor.Message}}</p>{{end}}
`))

	adminTmpl = template.Must(template.New(kindAdmin).Funcs(funcs).Parse(`
<h2>Neue Sponsoring-Anfrage</h2>
<p><strong>Von:</strong> {{.Sponsor.FirstName}} {{.Sponsor.LastName}} ({{.Sponsor.Email}}, {{.Sponsor.Phone}})</p>
<p><strong>Lied:</strong> {{.Song.Name}} von {{.Song.Composer}} ({{.Song.Arrangement}})</p>
<p><strong>Gesamtbetrag:</strong> {{euro .Song.TotalPrice}}</p>
<p><strong>Bewerber:</strong> {{.Song.ApplicantCount}}</p>
<p><strong>Nachricht:</strong> {{.Sponsor.Message}}</p>
`))

	funcs = template.FuncMap{
		"euro": func(v float64) string { return fmt.Sprintf("%.2f €", v) },
	}
)

type mailData struct {
	Sponsor model.Sponsor
	Song    model.Song
}

// Dispatcher composes the submitter confirmation and the admin alert.
type Dispatcher struct {
	mailer     Mailer
	adminEmail string
	timeout    time.Duration
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewDispatcher panics when mailer is nil.
func NewDispatcher(mailer Mailer, adminEmail string, timeout time.Duration, m *metrics.Metrics, log zerolog.Logger) *Dispatcher {
	if mailer == nil {
		panic("nil mailer passed to NewDispatcher")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		mailer:     mailer,
		adminEmail: adminEmail,
		timeout:    timeout,
		metrics:    m,
		log:        log.With().Str("component", "notify").Logger(),
	}
}

// ConfirmationSubject is the subject of the mail to the submitter.
func ConfirmationSubject(song string) string { return "Bestätigung Ihres Sponsorings: " + song }

// AdminSubject is the subject of the internal alert.
func AdminSubject(song string) string { return "Neue Sponsoring-Anfrage: " + song }

// SponsorshipReceived sends both mails for a stored sponsorship.  The
// admin alert is attempted even when the confirmation fails; the returned
// error joins every failure.  Sends are detached from ctx cancellation so
// a client hanging up does not abort them, and each send gets its own
// timeout.
func (d *Dispatcher) SponsorshipReceived(ctx context.Context, sponsor model.Sponsor, song model.Song) error {
	data := mailData{Sponsor: sponsor, Song: song}
	ctx = context.WithoutCancel(ctx)

	errConfirm := d.send(ctx, kindConfirmation, confirmationTmpl, sponsor.Email, ConfirmationSubject(song.Name), data)
	errAdmin := d.send(ctx, kindAdmin, adminTmpl, d.adminEmail, AdminSubject(song.Name), data)
	return errors.Join(errConfirm, errAdmin)
}

func (d *Dispatcher) send(ctx context.Context, kind string, tmpl *template.Template, to, subject string, data mailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		d.metrics.EmailSent(kind, false)
		return fmt.Errorf("render %s mail: %w", kind, err)
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := d.mailer.Send(ctx, to, subject, body.String())
	d.metrics.EmailSent(kind, err == nil)
	if err != nil {
		d.log.Warn().Err(err).Str("kind", kind).Str("to", to).Msg("send mail failed")
		return err
	}
	return nil
}
