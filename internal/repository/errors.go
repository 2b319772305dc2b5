// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrSongNotFound is returned when a song id does not match any row.
// Handlers translate it into a 404 response (or the configured legacy
// status on the sponsorship intake path).
var ErrSongNotFound = errors.New("song not found")

// ErrSponsorNotFound is returned when a sponsor id does not match any
// row. Handlers should translate this into an HTTP 404 response.
var ErrSponsorNotFound = errors.New("sponsor not found")
