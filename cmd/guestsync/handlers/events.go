package handlers

import (
	"context"
	"fmt"

	"github.com/jardilio/august-guesty-integration/internal/config"
	"github.com/jardilio/august-guesty-integration/internal/observability"
	"github.com/jardilio/august-guesty-integration/internal/reservation"
	"github.com/jardilio/august-guesty-integration/internal/sync"
)

// Events reconciles the calendar against the reservation set.
func Events(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Calendar.CalendarID == "" {
		return fmt.Errorf("calendar sync is not configured: set calendar.calendar_id")
	}

	source, err := newReservationSource(cfg)
	if err != nil {
		return err
	}
	store, err := newEventStore(cfg)
	if err != nil {
		return err
	}

	obs := newObserver().WithFields(map[string]string{"run": observability.NewRunID()})
	return reconcileEvents(ctx, cfg, source, store, obs, nil)
}

func reconcileEvents(ctx context.Context, cfg *config.Config, source reservationSource, store eventStore, obs observability.Observer, metrics *observability.Metrics) error {
	records, err := fetchReservations(ctx, cfg, source)
	if err != nil {
		return err
	}
	obs.Printf("Found %d reservations in the sync window", len(records))

	existing, err := store.ListEvents(ctx, timeNow().UTC(), cfg.Calendar.MaxResults)
	if err != nil {
		return fmt.Errorf("failed to list calendar events: %w", err)
	}

	plan := sync.Plan(buildSources(records), existing)
	counts := map[string]int{}
	for _, entry := range plan {
		counts[entry.Action.String()]++
		if metrics != nil {
			metrics.PlanEntries.WithLabelValues(entry.Action.String()).Inc()
		}
	}
	obs.Event(observability.Event{
		Type:    observability.EventPlanComputed,
		Message: fmt.Sprintf("%d entries", len(plan)),
		Fields: map[string]string{
			"create": fmt.Sprint(counts["CREATE"]),
			"update": fmt.Sprint(counts["UPDATE"]),
			"delete": fmt.Sprint(counts["DELETE"]),
			"skip":   fmt.Sprint(counts["SKIP"]),
		},
	})

	result := sync.Apply(ctx, plan, store)
	for _, failure := range result.Failures {
		obs.Event(observability.Event{
			Type:     observability.EventEntryFailed,
			Resource: failure.Key,
			Message:  failure.Err.Error(),
			Fields:   map[string]string{"action": failure.Action.String()},
		})
		if metrics != nil {
			metrics.ApplyFailures.Inc()
		}
	}
	obs.Printf("Calendar: %d created, %d updated, %d deleted, %d unchanged, %d failed",
		result.Created, result.Updated, result.Deleted, result.Skipped, len(result.Failures))

	return result.Err()
}

// buildSources projects reservations into planner sources. The payload is
// exactly what the calendar renders, so fingerprints change whenever the
// rendered event would.
func buildSources(records []reservation.Reservation) []sync.Source {
	sources := make([]sync.Source, 0, len(records))
	for _, r := range records {
		first, last := reservation.SplitGuestName(r.GuestName)
		payload := sync.EventPayload{
			Start:   r.CheckIn,
			End:     r.CheckOut,
			Summary: fmt.Sprintf("Guest stay: %s", r.GuestName),
			Description: fmt.Sprintf("Confirmation %s\nTotal %.2f %s",
				r.ConfirmationCode, r.Money.TotalPrice, r.Money.Currency),
		}
		sources = append(sources, sync.Source{
			ID:      r.ID,
			NameKey: sync.NameKey(first, last),
			Status:  r.Status(),
			Payload: payload,
		})
	}
	return sources
}
