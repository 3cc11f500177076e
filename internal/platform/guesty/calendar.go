package guesty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jardilio/august-guesty-integration/internal/platform/httpjson"
	"github.com/jardilio/august-guesty-integration/internal/reservation"
	"github.com/jardilio/august-guesty-integration/internal/util/retry"
)

// calendarFields are the per-day fields requested from the availability
// calendar, including the reservations referenced by each day's blocks.
var calendarFields = []string{
	"date", "status", "blockRefs.reservation",
}

// CalendarDay is one day of a listing's availability calendar. A stay
// spanning several nights appears on each of its days.
type CalendarDay struct {
	Date         string
	Status       string
	Reservations []reservation.Reservation
}

type calendarDayJSON struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	BlockRefs []struct {
		Reservation *reservationJSON `json:"reservation"`
	} `json:"blockRefs"`
}

// ListCalendarDays fetches a listing's availability calendar between two
// local dates inclusive, in YYYY-MM-DD form. Transient failures are
// retried; client errors abort immediately.
func (c *Client) ListCalendarDays(ctx context.Context, listingID, from, to string) ([]CalendarDay, error) {
	if listingID == "" {
		return nil, fmt.Errorf("listing ID is required")
	}

	endpoint := fmt.Sprintf("listings/%s/calendar?from=%s&to=%s&fields=%s",
		listingID, from, to, url.QueryEscape(strings.Join(calendarFields, " ")))

	var out []calendarDayJSON
	err := retry.Do(ctx, func() error {
		out = nil
		_, err := c.http.Do(ctx, http.MethodGet, endpoint, nil, &out)
		var statusErr *httpjson.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return retry.Fatal(err)
		}
		return err
	}, retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar for listing %s: %w", listingID, err)
	}

	days := make([]CalendarDay, 0, len(out))
	for _, d := range out {
		day := CalendarDay{Date: d.Date, Status: d.Status}
		for _, ref := range d.BlockRefs {
			if ref.Reservation == nil {
				continue
			}
			day.Reservations = append(day.Reservations, ref.Reservation.toReservation())
		}
		days = append(days, day)
	}
	return days, nil
}

// UniqueReservations flattens calendar days into the distinct reservations
// their blocks reference, each carried once in first-seen order.
func UniqueReservations(days []CalendarDay) []reservation.Reservation {
	seen := make(map[string]bool)
	var out []reservation.Reservation
	for _, day := range days {
		for _, r := range day.Reservations {
			if r.ID == "" || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	return out
}
