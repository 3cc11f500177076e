package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// fingerprintDomain is the versioned domain prefix for event fingerprints.
// Bumping the version migrates every stored digest, forcing a one-time
// UPDATE wave instead of silent mismatches.
const fingerprintDomain = "guestsync/event/v1"

// EventPayload is the downstream representation of a reservation: exactly
// the fields the calendar provider renders. Fingerprints are computed over
// this projection rather than the raw reservation so transformation-only
// changes (reworded descriptions, adjusted summaries) are detected too.
type EventPayload struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Location    string
	Description string
}

// Fingerprint returns the hex digest of the payload's canonical
// serialization. Deterministic and pure: equal payloads always produce
// equal digests, and changing any field changes the digest. Instants are
// canonicalized to RFC 3339 UTC so equal instants in different zones
// fingerprint identically.
func Fingerprint(p EventPayload) string {
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})

	// Fixed field order. Each field is length-delimited by a NUL byte so
	// adjacent fields cannot be confused for one another.
	fields := []string{
		p.Start.UTC().Format(time.RFC3339),
		p.End.UTC().Format(time.RFC3339),
		p.Summary,
		p.Location,
		p.Description,
	}
	h.Write([]byte(strings.Join(fields, "\x00")))

	return hex.EncodeToString(h.Sum(nil))
}
