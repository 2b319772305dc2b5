// Package queue defines the sponsor events exchanged over RabbitMQ together
// with their publisher and the log-writing consumer.
package queue

// Event types.
const (
	EventSponsorCreated   = "sponsor.created"
	EventSponsorRetracted = "sponsor.retracted"
)

// SponsorEvent is published after a sponsorship is stored or retracted.
// It carries enough context for consumers to log or notify without
// querying the database.
type SponsorEvent struct {
	Type       string `json:"type"`
	SponsorID  uint64 `json:"sponsorId"`
	SongID     uint64 `json:"songId"`
	SongName   string `json:"songName,omitempty"`
	Email      string `json:"email,omitempty"`
	OccurredAt string `json:"occurredAt"`
}
