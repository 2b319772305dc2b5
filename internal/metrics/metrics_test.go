package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SponsorshipCreated()
	m.SponsorshipCreated()
	m.SponsorRetracted()
	m.SongsImported(3)
	m.SongsImported(0)
	m.EmailSent("confirmation", true)
	m.EmailSent("admin", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sponsorshipsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sponsorsRetracted))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.songsImported))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emailsSent.WithLabelValues("confirmation", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emailsSent.WithLabelValues("admin", "error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SponsorshipCreated()
		m.SponsorRetracted()
		m.SongsImported(5)
		m.EmailSent("admin", true)
	})
}
