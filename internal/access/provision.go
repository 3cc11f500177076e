package access

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// PinRecord is one access-code entry in a lock's pin listing.
type PinRecord struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Pin       string
	State     State
}

// Listing is a lock's pin inventory, bucketed by lifecycle state as the
// vendor reports it.
type Listing struct {
	Buckets map[State][]PinRecord
}

// FindByUser returns the entry owned by the given remote user ID, searching
// every bucket. The second return is false when no entry matches.
func (l Listing) FindByUser(userID string) (PinRecord, bool) {
	for _, records := range l.Buckets {
		for _, rec := range records {
			if rec.UserID == userID {
				return rec, true
			}
		}
	}
	return PinRecord{}, false
}

// Summary renders the listing's non-empty buckets as one line, each entry
// as user ID and name, for diagnostics when a request fails.
func (l Listing) Summary() string {
	states := make([]string, 0, len(l.Buckets))
	for state, records := range l.Buckets {
		if len(records) > 0 {
			states = append(states, string(state))
		}
	}
	if len(states) == 0 {
		return "empty"
	}
	sort.Strings(states)

	parts := make([]string, 0, len(states))
	for _, state := range states {
		entries := make([]string, 0, len(l.Buckets[State(state)]))
		for _, rec := range l.Buckets[State(state)] {
			entries = append(entries, fmt.Sprintf("%s (%s %s)", rec.UserID, rec.FirstName, rec.LastName))
		}
		parts = append(parts, fmt.Sprintf("%s[%s]", state, strings.Join(entries, ", ")))
	}
	return strings.Join(parts, " ")
}

// Client is the lock vendor surface the provisioner drives.
type Client interface {
	// CreateUnverifiedUser registers a guest with the vendor and returns
	// the remote user ID the pin will be attributed to.
	CreateUnverifiedUser(ctx context.Context, firstName, lastName, lockID, pin string) (string, error)
	// SubmitLoadCommand asks the vendor to load the pin onto the lock for
	// the given access window.
	SubmitLoadCommand(ctx context.Context, lockID, userID, pin string, start, end time.Time) error
	// ListPins returns the lock's current pin inventory.
	ListPins(ctx context.Context, lockID string) (Listing, error)
}

// PinRequest describes one access code to provision.
type PinRequest struct {
	FirstName string
	LastName  string
	LockID    string
	Pin       string
	Start     time.Time
	End       time.Time
}

// UnexpectedStateError is the fatal condition raised when the poll loop
// observes a state outside the transition table, or no entry at all. It
// carries the full listing snapshot for diagnosis.
type UnexpectedStateError struct {
	UserID  string
	State   State
	Listing Listing
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("user %s is in the unexpected %s state; lock listing: %s",
		e.UserID, e.State, e.Listing.Summary())
}

// ErrPollBudgetExceeded is returned when a pin is still propagating after
// the configured number of polls.
var ErrPollBudgetExceeded = fmt.Errorf("pin did not reach the loaded state within the poll budget")

// Provisioner drives single access-code requests to completion. Requests
// are processed one at a time; sequential commits keep the load on the
// vendor predictable and stay inside its per-lock write limits.
type Provisioner struct {
	client   Client
	interval time.Duration
	maxPolls int
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(p *Provisioner) { p.interval = d }
}

// WithMaxPolls sets the poll budget per request.
func WithMaxPolls(n int) Option {
	return func(p *Provisioner) { p.maxPolls = n }
}

// withSleep replaces the sleep function. Tests use it to run the loop
// without real delays.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Provisioner) { p.sleep = fn }
}

// NewProvisioner returns a Provisioner polling every 30 seconds with a
// budget of 120 polls per request.
func NewProvisioner(client Client, opts ...Option) *Provisioner {
	p := &Provisioner{
		client:   client,
		interval: 30 * time.Second,
		maxPolls: 120,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Provision creates the remote guest user, submits the load command, and
// polls the lock's pin listing until the pin reaches the loaded state.
//
// Transient states (creating, created, enabling, enabled) are waited out.
// Any other observed state, including a vanished entry, fails the request
// with an UnexpectedStateError carrying the listing snapshot. A pin that
// is still propagating after the poll budget fails with
// ErrPollBudgetExceeded; the remote side effects are not rolled back.
func (p *Provisioner) Provision(ctx context.Context, req PinRequest) (PinRecord, error) {
	userID, err := p.client.CreateUnverifiedUser(ctx, req.FirstName, req.LastName, req.LockID, req.Pin)
	if err != nil {
		return PinRecord{}, fmt.Errorf("failed to create unverified user: %w", err)
	}

	if err := p.client.SubmitLoadCommand(ctx, req.LockID, userID, req.Pin, req.Start, req.End); err != nil {
		return PinRecord{}, fmt.Errorf("failed to submit load command for user %s: %w", userID, err)
	}

	for poll := 0; poll < p.maxPolls; poll++ {
		listing, err := p.client.ListPins(ctx, req.LockID)
		if err != nil {
			return PinRecord{}, fmt.Errorf("failed to list pins for lock %s: %w", req.LockID, err)
		}

		rec, found := listing.FindByUser(userID)
		state := StateMissing
		if found {
			state = rec.State
		}

		switch Classify(state) {
		case OutcomeReady:
			return rec, nil
		case OutcomeWait:
			log.Printf("[Access:Pin] Waiting, user %s is still in the %s state", userID, state)
			if err := p.sleep(ctx, p.interval); err != nil {
				return PinRecord{}, fmt.Errorf("cancelled while waiting for pin: %w", err)
			}
		default:
			return PinRecord{}, &UnexpectedStateError{UserID: userID, State: state, Listing: listing}
		}
	}

	return PinRecord{}, fmt.Errorf("user %s after %d polls: %w", userID, p.maxPolls, ErrPollBudgetExceeded)
}
