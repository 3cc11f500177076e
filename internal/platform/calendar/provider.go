// Package calendar implements the scheduling downstream: one calendar
// event per confirmed reservation. Identity and fingerprint metadata ride
// in the event's private extended properties so later runs can match and
// diff without local storage.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jardilio/august-guesty-integration/internal/platform/httpjson"
	"github.com/jardilio/august-guesty-integration/internal/sync"
)

// DefaultBaseURL is the production calendar API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3/"

// Metadata keys stored in the event's private properties.
const (
	propReservationID = "reservationId"
	propNameKey       = "nameKey"
	propFingerprint   = "fingerprint"
)

// Config holds the target calendar and its credential.
type Config struct {
	BaseURL    string
	CalendarID string
	// Token is the bearer credential for the calendar API. Obtaining and
	// refreshing it is the caller's concern.
	Token string
}

// Provider talks to the calendar API. It implements sync.Provider.
type Provider struct {
	cfg  Config
	http *httpjson.Client
}

// New returns a provider for the configured calendar.
func New(cfg Config) (*Provider, error) {
	if cfg.CalendarID == "" {
		return nil, fmt.Errorf("calendar ID is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	session := httpjson.NewSession(map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + cfg.Token,
	})
	httpClient, err := httpjson.New(cfg.BaseURL, session)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar provider: %w", err)
	}
	return &Provider{cfg: cfg, http: httpClient}, nil
}

// HTTP exposes the underlying transport for tests.
func (p *Provider) HTTP() *httpjson.Client {
	return p.http
}

// eventJSON is the wire shape of one calendar event.
type eventJSON struct {
	ID          string        `json:"id,omitempty"`
	Summary     string        `json:"summary"`
	Location    string        `json:"location,omitempty"`
	Description string        `json:"description,omitempty"`
	Start       eventTimeJSON `json:"start"`
	End         eventTimeJSON `json:"end"`
	Extended    *extendedJSON `json:"extendedProperties,omitempty"`
}

type eventTimeJSON struct {
	DateTime string `json:"dateTime"`
}

type extendedJSON struct {
	Private map[string]string `json:"private"`
}

func (e eventJSON) private(key string) string {
	if e.Extended == nil {
		return ""
	}
	return e.Extended.Private[key]
}

// ListEvents returns the calendar's current records from windowStart
// forward, each carrying the identity key and stored fingerprint from its
// metadata slot. Events without sync metadata belong to the calendar's
// owner, not this engine, and are excluded so they are never matched or
// deleted.
func (p *Provider) ListEvents(ctx context.Context, windowStart time.Time, maxResults int) ([]sync.DownstreamRecord, error) {
	endpoint := fmt.Sprintf("calendars/%s/events?timeMin=%s&maxResults=%d&singleEvents=true",
		url.PathEscape(p.cfg.CalendarID),
		url.QueryEscape(windowStart.UTC().Format(time.RFC3339)),
		maxResults)

	var out struct {
		Items []eventJSON `json:"items"`
	}
	if _, err := p.http.Do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var records []sync.DownstreamRecord
	for _, item := range out.Items {
		if item.private(propFingerprint) == "" && item.private(propReservationID) == "" {
			continue
		}
		records = append(records, sync.DownstreamRecord{
			ID:          item.ID,
			SourceID:    item.private(propReservationID),
			NameKey:     item.private(propNameKey),
			Fingerprint: item.private(propFingerprint),
		})
	}
	return records, nil
}

// InsertEvent creates one event for the given sync write. Implements
// sync.Provider.
func (p *Provider) InsertEvent(ctx context.Context, ev sync.Event) error {
	endpoint := "calendars/" + url.PathEscape(p.cfg.CalendarID) + "/events"
	if _, err := p.http.Do(ctx, http.MethodPost, endpoint, toEventJSON(ev), nil); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// UpdateEvent rewrites an existing event. Implements sync.Provider.
func (p *Provider) UpdateEvent(ctx context.Context, id string, ev sync.Event) error {
	endpoint := "calendars/" + url.PathEscape(p.cfg.CalendarID) + "/events/" + url.PathEscape(id)
	if _, err := p.http.Do(ctx, http.MethodPut, endpoint, toEventJSON(ev), nil); err != nil {
		return fmt.Errorf("failed to update event %s: %w", id, err)
	}
	return nil
}

// DeleteEvent removes an existing event. Implements sync.Provider.
func (p *Provider) DeleteEvent(ctx context.Context, id string) error {
	endpoint := "calendars/" + url.PathEscape(p.cfg.CalendarID) + "/events/" + url.PathEscape(id)
	if _, err := p.http.Do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

func toEventJSON(ev sync.Event) eventJSON {
	return eventJSON{
		Summary:     ev.Payload.Summary,
		Location:    ev.Payload.Location,
		Description: ev.Payload.Description,
		Start:       eventTimeJSON{DateTime: ev.Payload.Start.UTC().Format(time.RFC3339)},
		End:         eventTimeJSON{DateTime: ev.Payload.End.UTC().Format(time.RFC3339)},
		Extended: &extendedJSON{Private: map[string]string{
			propReservationID: ev.SourceID,
			propNameKey:       ev.NameKey,
			propFingerprint:   ev.Fingerprint,
		}},
	}
}
