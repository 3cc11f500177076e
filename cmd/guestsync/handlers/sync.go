package handlers

import (
	"context"
	"errors"

	"github.com/jardilio/august-guesty-integration/internal/config"
	"github.com/jardilio/august-guesty-integration/internal/observability"
)

// Sync runs one full pass: door codes first, then the calendar when
// calendar sync is enabled. A failure in one stage does not stop the
// other; both are reported.
func Sync(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return syncOnce(ctx, cfg, nil)
}

func syncOnce(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) error {
	source, err := newReservationSource(cfg)
	if err != nil {
		return err
	}
	vendor, err := newLockVendor(cfg)
	if err != nil {
		return err
	}

	obs := newObserver().WithFields(map[string]string{"run": observability.NewRunID()})
	obs.Event(observability.Event{Type: observability.EventRunStarted})

	var errs []error
	if err := provisionPins(ctx, cfg, source, vendor, obs, metrics); err != nil {
		errs = append(errs, err)
	}

	if cfg.Calendar.Enabled {
		store, err := newEventStore(cfg)
		if err != nil {
			errs = append(errs, err)
		} else if err := reconcileEvents(ctx, cfg, source, store, obs, metrics); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		obs.Event(observability.Event{Type: observability.EventRunFailed, Message: errs[0].Error()})
		return errors.Join(errs...)
	}
	obs.Event(observability.Event{Type: observability.EventRunCompleted})
	return nil
}
