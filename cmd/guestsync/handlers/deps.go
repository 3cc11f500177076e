// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/jardilio/august-guesty-integration/internal/access"
	"github.com/jardilio/august-guesty-integration/internal/config"
	"github.com/jardilio/august-guesty-integration/internal/observability"
	"github.com/jardilio/august-guesty-integration/internal/platform/august"
	"github.com/jardilio/august-guesty-integration/internal/platform/calendar"
	"github.com/jardilio/august-guesty-integration/internal/platform/guesty"
	"github.com/jardilio/august-guesty-integration/internal/reservation"
	"github.com/jardilio/august-guesty-integration/internal/sync"
)

// reservationSource is the booking platform surface handlers need.
type reservationSource interface {
	Authenticate(ctx context.Context) (guesty.Credential, error)
	ListReservations(ctx context.Context, opts guesty.ListOptions) ([]reservation.Reservation, error)
	ListCalendarDays(ctx context.Context, listingID, from, to string) ([]guesty.CalendarDay, error)
}

// lockVendor is the smart-lock surface handlers need.
type lockVendor interface {
	access.Client
	Session(ctx context.Context) (august.SessionInfo, error)
	Validate(ctx context.Context, code string) error
}

// eventStore is the calendar surface handlers need.
type eventStore interface {
	sync.Provider
	ListEvents(ctx context.Context, windowStart time.Time, maxResults int) ([]sync.DownstreamRecord, error)
}

// pinProvisioner matches access.Provisioner for testing.
type pinProvisioner interface {
	Provision(ctx context.Context, req access.PinRequest) (access.PinRecord, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the run configuration.
	loadConfig = config.Load

	// newReservationSource creates the booking platform client.
	newReservationSource = func(cfg *config.Config) (reservationSource, error) {
		return guesty.New(guesty.Config{
			BaseURL:   cfg.Guesty.BaseURL,
			Username:  cfg.Guesty.Username,
			Password:  cfg.Guesty.Password,
			AccountID: cfg.Guesty.AccountID,
			APIKey:    cfg.Guesty.APIKey,
		})
	}

	// newLockVendor creates the smart-lock client.
	newLockVendor = func(cfg *config.Config) (lockVendor, error) {
		return august.New(august.Config{
			BaseURL:    cfg.August.BaseURL,
			InstallID:  cfg.August.InstallID,
			Password:   cfg.August.Password,
			Identifier: cfg.August.Identifier,
			APIKey:     cfg.August.APIKey,
		})
	}

	// newEventStore creates the calendar provider.
	newEventStore = func(cfg *config.Config) (eventStore, error) {
		return calendar.New(calendar.Config{
			BaseURL:    cfg.Calendar.BaseURL,
			CalendarID: cfg.Calendar.CalendarID,
			Token:      cfg.Calendar.Token,
		})
	}

	// newPinProvisioner creates the access-code state machine.
	newPinProvisioner = func(client access.Client, cfg *config.Config) pinProvisioner {
		return access.NewProvisioner(client,
			access.WithPollInterval(cfg.Sync.PollInterval.Std()),
			access.WithMaxPolls(cfg.Sync.MaxPolls),
		)
	}

	// newObserver creates the run observer.
	newObserver = func() observability.Observer {
		return observability.NewConsoleObserver()
	}

	// timeNow returns the current time (for testing injection).
	timeNow = time.Now
)

// fetchReservations authenticates against the booking platform and returns
// every reservation whose stay overlaps the configured sync window. With a
// listing ID configured, discovery walks the listing's availability
// calendar and collects the reservations its blocks reference; otherwise a
// windowed reservation search is used.
func fetchReservations(ctx context.Context, cfg *config.Config, source reservationSource) ([]reservation.Reservation, error) {
	if _, err := source.Authenticate(ctx); err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	windowEnd := now.AddDate(0, 0, cfg.Sync.WindowDays)

	if cfg.Guesty.ListingID != "" {
		days, err := source.ListCalendarDays(ctx, cfg.Guesty.ListingID,
			now.Format("2006-01-02"), windowEnd.Format("2006-01-02"))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch listing calendar: %w", err)
		}
		return guesty.UniqueReservations(days), nil
	}

	records, err := source.ListReservations(ctx, guesty.ListOptions{
		Limit: cfg.Sync.PageSize,
		Filters: []guesty.Filter{
			{Field: "checkOut", Operator: "$gt", Value: now.Format(time.RFC3339)},
			{Field: "checkIn", Operator: "$lt", Value: windowEnd.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	return records, nil
}
