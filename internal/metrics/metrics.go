// Package metrics exposes the Prometheus counters of the sponsorship flows.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "songsponsor"

// Metrics groups the service counters.
type Metrics struct {
	sponsorshipsCreated prometheus.Counter
	sponsorsRetracted   prometheus.Counter
	songsImported       prometheus.Counter
	emailsSent          *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sponsorshipsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sponsorships_created_total",
			Help:      "Sponsorship requests stored.",
		}),
		sponsorsRetracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sponsors_retracted_total",
			Help:      "Sponsors deleted by the administrator.",
		}),
		songsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "songs_imported_total",
			Help:      "Songs inserted through bulk imports.",
		}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Notification mails by kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(m.sponsorshipsCreated, m.sponsorsRetracted, m.songsImported, m.emailsSent)
	return m
}

// NewRegistry returns a registry carrying the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) SponsorshipCreated() {
	if m != nil {
		m.sponsorshipsCreated.Inc()
	}
}

func (m *Metrics) SponsorRetracted() {
	if m != nil {
		m.sponsorsRetracted.Inc()
	}
}

func (m *Metrics) SongsImported(n int) {
	if m != nil && n > 0 {
		m.songsImported.Add(float64(n))
	}
}

// EmailSent records one mail attempt.  kind is "confirmation" or "admin".
func (m *Metrics) EmailSent(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.emailsSent.WithLabelValues(kind, result).Inc()
}
