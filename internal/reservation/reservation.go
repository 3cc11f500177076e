// Package reservation models upstream reservations and normalizes the
// upstream status vocabulary into the three lifecycle classes the sync
// engine acts on.
package reservation

import (
	"strings"
	"time"
)

// Status is the normalized lifecycle class of a reservation.
type Status int

const (
	// StatusTentative covers inquiries and holds that may still fall through.
	StatusTentative Status = iota
	// StatusConfirmed covers reservations that will occupy the property.
	StatusConfirmed
	// StatusCancelled covers reservations that no longer occupy the property.
	StatusCancelled
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "tentative"
	}
}

// Reservation is an upstream reservation record, immutable for the duration
// of a run. It is re-fetched from the source on every run.
type Reservation struct {
	ID               string
	ConfirmationCode string
	GuestName        string
	CheckIn          time.Time
	CheckOut         time.Time
	// CheckInLocal and CheckOutLocal are the property-local dates in
	// YYYY-MM-DD form, as reported by the source. Pin derivation uses these
	// rather than the instants so the code matches the dates on the guest's
	// confirmation.
	CheckInLocal  string
	CheckOutLocal string
	RawStatus     string
	Money         Money
}

// Money carries the monetary fields of a reservation. The engine never
// computes with them; they pass through to event descriptions only.
type Money struct {
	TotalPrice float64
	Currency   string
}

// NormalizeStatus maps the upstream status vocabulary onto the three-way
// classification. Unknown values are treated as tentative so they are never
// acted on.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed", "checked_in", "checked_out":
		return StatusConfirmed
	case "canceled", "cancelled", "declined", "expired", "closed":
		return StatusCancelled
	default:
		return StatusTentative
	}
}

// Status returns the normalized lifecycle class of the reservation.
func (r Reservation) Status() Status {
	return NormalizeStatus(r.RawStatus)
}

// SplitGuestName splits a full display name into first and last name: the
// first whitespace-separated token is the first name, the remainder the last
// name. Single-token names yield an empty last name.
func SplitGuestName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Pin derives the guest door code from the local check-in and check-out
// dates: the day-of-month digits of each, concatenated. A stay from the 1st
// to the 15th yields "0115". Returns an empty string when either local date
// is missing or malformed.
func (r Reservation) Pin() string {
	in := dayOfMonth(r.CheckInLocal)
	out := dayOfMonth(r.CheckOutLocal)
	if in == "" || out == "" {
		return ""
	}
	return in + out
}

func dayOfMonth(localDate string) string {
	parts := strings.Split(localDate, "-")
	if len(parts) != 3 || len(parts[2]) != 2 {
		return ""
	}
	return parts[2]
}
