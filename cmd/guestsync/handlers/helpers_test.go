package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/jardilio/august-guesty-integration/internal/access"
	"github.com/jardilio/august-guesty-integration/internal/config"
	"github.com/jardilio/august-guesty-integration/internal/observability"
	"github.com/jardilio/august-guesty-integration/internal/platform/august"
	"github.com/jardilio/august-guesty-integration/internal/platform/guesty"
	"github.com/jardilio/august-guesty-integration/internal/reservation"
	"github.com/jardilio/august-guesty-integration/internal/sync"
)

func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origNewReservationSource := newReservationSource
	origNewLockVendor := newLockVendor
	origNewEventStore := newEventStore
	origNewPinProvisioner := newPinProvisioner
	origNewObserver := newObserver
	origTimeNow := timeNow
	origRunPass := runPass

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newReservationSource = origNewReservationSource
		newLockVendor = origNewLockVendor
		newEventStore = origNewEventStore
		newPinProvisioner = origNewPinProvisioner
		newObserver = origNewObserver
		timeNow = origTimeNow
		runPass = origRunPass
	})

	newObserver = func() observability.Observer { return observability.NopObserver{} }
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.August.LockID = "lock-1"
	cfg.Calendar.Enabled = true
	cfg.Calendar.CalendarID = "primary"
	cfg.Sync.WindowDays = 7
	cfg.Sync.PageSize = 25
	cfg.Sync.PollInterval = config.Duration(time.Millisecond)
	cfg.Sync.MaxPolls = 5
	cfg.Calendar.MaxResults = 250
	return cfg
}

func confirmedReservation(id, name string) reservation.Reservation {
	return reservation.Reservation{
		ID:               id,
		ConfirmationCode: "CONF-" + id,
		GuestName:        name,
		CheckIn:          time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC),
		CheckOut:         time.Date(2025, 6, 5, 11, 0, 0, 0, time.UTC),
		CheckInLocal:     "2025-06-01",
		CheckOutLocal:    "2025-06-05",
		RawStatus:        "confirmed",
		Money:            reservation.Money{TotalPrice: 540, Currency: "USD"},
	}
}

// fakeSource serves a fixed reservation list.
type fakeSource struct {
	reservations  []reservation.Reservation
	days          []guesty.CalendarDay
	authErr       error
	authCalls     int
	listCalls     int
	calendarCalls int
	lastListing   string
	lastOpts      guesty.ListOptions
}

func (f *fakeSource) Authenticate(_ context.Context) (guesty.Credential, error) {
	f.authCalls++
	if f.authErr != nil {
		return guesty.Credential{}, f.authErr
	}
	return guesty.Credential{Token: "tok"}, nil
}

func (f *fakeSource) ListReservations(_ context.Context, opts guesty.ListOptions) ([]reservation.Reservation, error) {
	f.listCalls++
	f.lastOpts = opts
	return f.reservations, nil
}

func (f *fakeSource) ListCalendarDays(_ context.Context, listingID, _, _ string) ([]guesty.CalendarDay, error) {
	f.calendarCalls++
	f.lastListing = listingID
	return f.days, nil
}

// fakeVendor serves a fixed pin listing and records lifecycle calls.
type fakeVendor struct {
	listing      access.Listing
	sessionCalls int
	sessionErr   error
	validated    []string
}

func (f *fakeVendor) Session(_ context.Context) (august.SessionInfo, error) {
	f.sessionCalls++
	if f.sessionErr != nil {
		return august.SessionInfo{}, f.sessionErr
	}
	return august.SessionInfo{UserID: "owner", Token: "tok"}, nil
}

func (f *fakeVendor) Validate(_ context.Context, code string) error {
	f.validated = append(f.validated, code)
	return nil
}

func (f *fakeVendor) CreateUnverifiedUser(_ context.Context, _, _, _, _ string) (string, error) {
	return "user-1", nil
}

func (f *fakeVendor) SubmitLoadCommand(_ context.Context, _, _, _ string, _, _ time.Time) error {
	return nil
}

func (f *fakeVendor) ListPins(_ context.Context, _ string) (access.Listing, error) {
	return f.listing, nil
}

// fakeProvisioner records provisioning requests.
type fakeProvisioner struct {
	requests []access.PinRequest
	errs     map[string]error
}

func (f *fakeProvisioner) Provision(_ context.Context, req access.PinRequest) (access.PinRecord, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.FirstName]; err != nil {
		return access.PinRecord{}, err
	}
	return access.PinRecord{UserID: "user-1", Pin: req.Pin, State: access.StateLoaded}, nil
}

// fakeStore records calendar mutations.
type fakeStore struct {
	existing []sync.DownstreamRecord
	inserted []sync.Event
	updated  []string
	deleted  []string
}

func (f *fakeStore) ListEvents(_ context.Context, _ time.Time, _ int) ([]sync.DownstreamRecord, error) {
	return f.existing, nil
}

func (f *fakeStore) InsertEvent(_ context.Context, ev sync.Event) error {
	f.inserted = append(f.inserted, ev)
	return nil
}

func (f *fakeStore) UpdateEvent(_ context.Context, id string, _ sync.Event) error {
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeStore) DeleteEvent(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
