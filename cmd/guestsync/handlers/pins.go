package handlers

import (
	"context"
	"fmt"

	"github.com/jardilio/august-guesty-integration/internal/access"
	"github.com/jardilio/august-guesty-integration/internal/config"
	"github.com/jardilio/august-guesty-integration/internal/observability"
	"github.com/jardilio/august-guesty-integration/internal/reservation"
	"github.com/jardilio/august-guesty-integration/internal/sync"
)

// Pins provisions door codes for confirmed upcoming reservations.
//
// The lock's current pin listing is the sole source of truth for what
// already exists: a reservation whose guest already owns an entry in any
// lifecycle bucket is skipped. Missing codes are provisioned strictly one
// at a time; the lock vendor throttles concurrent writes per lock.
func Pins(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	source, err := newReservationSource(cfg)
	if err != nil {
		return err
	}
	vendor, err := newLockVendor(cfg)
	if err != nil {
		return err
	}

	obs := newObserver().WithFields(map[string]string{"run": observability.NewRunID()})
	return provisionPins(ctx, cfg, source, vendor, obs, nil)
}

func provisionPins(ctx context.Context, cfg *config.Config, source reservationSource, vendor lockVendor, obs observability.Observer, metrics *observability.Metrics) error {
	records, err := fetchReservations(ctx, cfg, source)
	if err != nil {
		return err
	}
	obs.Printf("Found %d reservations in the sync window", len(records))

	if _, err := vendor.Session(ctx); err != nil {
		return fmt.Errorf("lock vendor session failed: %w", err)
	}

	listing, err := vendor.ListPins(ctx, cfg.August.LockID)
	if err != nil {
		return fmt.Errorf("failed to list pins for lock %s: %w", cfg.August.LockID, err)
	}
	existing := pinRecordsToDownstream(listing)

	provisioner := newPinProvisioner(vendor, cfg)

	var provisioned, skipped int
	var firstErr error
	for _, r := range records {
		if r.Status() != reservation.StatusConfirmed {
			continue
		}

		first, last := reservation.SplitGuestName(r.GuestName)
		src := sync.Source{NameKey: sync.NameKey(first, last)}
		if sync.FindMatch(src, existing) != nil {
			skipped++
			continue
		}

		obs.Event(observability.Event{
			Type:     observability.EventPinRequested,
			Resource: r.ConfirmationCode,
			Message:  fmt.Sprintf("provisioning code for %s", r.GuestName),
		})

		req := access.PinRequest{
			FirstName: first,
			LastName:  last,
			LockID:    cfg.August.LockID,
			Pin:       r.Pin(),
			Start:     r.CheckIn,
			End:       r.CheckOut,
		}
		rec, err := provisioner.Provision(ctx, req)
		if err != nil {
			obs.Event(observability.Event{
				Type:     observability.EventPinFailed,
				Resource: r.ConfirmationCode,
				Message:  err.Error(),
			})
			if metrics != nil {
				metrics.PinFailures.Inc()
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("provisioning code for %s: %w", r.GuestName, err)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		provisioned++
		if metrics != nil {
			metrics.PinsProvisioned.Inc()
		}
		obs.Event(observability.Event{
			Type:     observability.EventPinLoaded,
			Resource: r.ConfirmationCode,
			Fields:   map[string]string{"user": rec.UserID},
		})
	}

	obs.Printf("Door codes: %d provisioned, %d already present", provisioned, skipped)
	return firstErr
}

// pinRecordsToDownstream flattens a pin listing into downstream records
// for identity matching. The vendor stores guest names only, so the
// records carry a name key and no source ID.
func pinRecordsToDownstream(listing access.Listing) []sync.DownstreamRecord {
	var out []sync.DownstreamRecord
	for _, bucket := range listing.Buckets {
		for _, rec := range bucket {
			out = append(out, sync.DownstreamRecord{
				ID:      rec.ID,
				NameKey: sync.NameKey(rec.FirstName, rec.LastName),
			})
		}
	}
	return out
}
