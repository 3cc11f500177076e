// Package august implements the access provider client: session and MFA
// bootstrap, unverified guest users, pin load commands, and pin listings
// against an August-style lock API.
package august

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jardilio/august-guesty-integration/internal/access"
	"github.com/jardilio/august-guesty-integration/internal/platform/httpjson"
)

// DefaultBaseURL is the production lock API endpoint.
const DefaultBaseURL = "https://api-production.august.com/"

const accessTokenHeader = "X-August-Access-Token"

// Config holds the credentials of one registered API installation.
type Config struct {
	BaseURL string
	// InstallID identifies this application installation; it must have
	// completed MFA validation once before sessions succeed.
	InstallID string
	Password  string
	// Identifier is the account identity in "type:value" form, e.g.
	// "email:owner@example.com" or "phone:+15551234567".
	Identifier string
	APIKey     string
}

// SessionInfo is the result of a session refresh.
type SessionInfo struct {
	UserID string
	Token  string
}

// Client talks to the lock vendor. It implements access.Client.
type Client struct {
	cfg  Config
	http *httpjson.Client
}

// New returns a client for the configured installation.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	session := httpjson.NewSession(map[string]string{
		"X-August-Api-Key": cfg.APIKey,
		"X-Kease-Api-Key":  cfg.APIKey,
		"Content-Type":     "application/json",
		"Accept-Version":   "0.0.1",
		"User-Agent":       "August/Luna-3.2.2",
	})
	httpClient, err := httpjson.New(cfg.BaseURL, session)
	if err != nil {
		return nil, fmt.Errorf("failed to build august client: %w", err)
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

// HTTP exposes the underlying transport for tests.
func (c *Client) HTTP() *httpjson.Client {
	return c.http
}

// Session refreshes the access token for this installation. Tokens expire,
// so call this at the start of every run. The token is installed on the
// client's session for subsequent calls.
func (c *Client) Session(ctx context.Context) (SessionInfo, error) {
	body := map[string]string{
		"installId":  c.cfg.InstallID,
		"password":   c.cfg.Password,
		"identifier": c.cfg.Identifier,
	}

	var out struct {
		UserID string `json:"userId"`
	}
	header, err := c.http.Do(ctx, http.MethodPost, "session", body, &out)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("session refresh failed: %w", err)
	}

	token := header.Get(accessTokenHeader)
	if token == "" {
		return SessionInfo{}, fmt.Errorf("session response carried no access token")
	}
	c.http.Session().Set(accessTokenHeader, token)

	return SessionInfo{UserID: out.UserID, Token: token}, nil
}

// Validate runs one stage of the MFA validation that authorizes an API key
// and install ID pair. With an empty code it requests a validation code be
// sent to the configured identifier; with a code it completes validation.
// Any token the vendor returns is installed on the session.
func (c *Client) Validate(ctx context.Context, code string) error {
	idType, idValue, ok := strings.Cut(c.cfg.Identifier, ":")
	if !ok {
		return fmt.Errorf("identifier %q is not in type:value form", c.cfg.Identifier)
	}

	endpoint := "validation/" + idType
	body := map[string]string{"value": idValue}
	if code != "" {
		endpoint = "validate/" + idType
		body = map[string]string{"code": code, idType: idValue}
	}

	header, err := c.http.Do(ctx, http.MethodPost, endpoint, body, nil)
	if err != nil {
		return fmt.Errorf("validation stage failed: %w", err)
	}

	if token := header.Get(accessTokenHeader); token != "" {
		c.http.Session().Set(accessTokenHeader, token)
	}
	return nil
}

// CreateUnverifiedUser registers a guest with the vendor and returns the
// remote user ID. Implements access.Client.
func (c *Client) CreateUnverifiedUser(ctx context.Context, firstName, lastName, lockID, pin string) (string, error) {
	body := map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
		"lockID":    lockID,
		"pin":       pin,
	}

	var out struct {
		ID string `json:"id"`
	}
	if _, err := c.http.Do(ctx, http.MethodPost, "unverifiedusers", body, &out); err != nil {
		return "", fmt.Errorf("failed to create unverified user: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("unverified user response carried no id")
	}
	return out.ID, nil
}

// SubmitLoadCommand asks the vendor to load a temporary pin onto the lock
// for the given access window. Implements access.Client.
func (c *Client) SubmitLoadCommand(ctx context.Context, lockID, userID, pin string, start, end time.Time) error {
	body := map[string]any{
		"commands": []map[string]string{{
			"action":       "load",
			"pin":          pin,
			"accessType":   "temporary",
			"accessTimes":  accessTimes(start, end),
			"augustUserID": userID,
		}},
	}

	if _, err := c.http.Do(ctx, http.MethodPost, "locks/"+lockID+"/pins", body, nil); err != nil {
		return fmt.Errorf("failed to submit load command: %w", err)
	}
	return nil
}

// accessTimes renders the access window in the vendor's recurrence form.
func accessTimes(start, end time.Time) string {
	return fmt.Sprintf("DTSTART=%s;DTEND=%s",
		start.UTC().Format("2006-01-02T15:04:05.000Z"),
		end.UTC().Format("2006-01-02T15:04:05.000Z"))
}

// pinJSON is the wire shape of one pin entry.
type pinJSON struct {
	ID        string `json:"_id"`
	UserID    string `json:"userID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Pin       string `json:"pin"`
	State     string `json:"state"`
}

// pinsJSON is the wire shape of a lock's pin listing, bucketed by state.
type pinsJSON struct {
	Creating  []pinJSON `json:"creating"`
	Created   []pinJSON `json:"created"`
	Enabling  []pinJSON `json:"enabling"`
	Enabled   []pinJSON `json:"enabled"`
	Loaded    []pinJSON `json:"loaded"`
	Disabling []pinJSON `json:"disabling"`
	Disabled  []pinJSON `json:"disabled"`
	Deleting  []pinJSON `json:"deleting"`
	Updating  []pinJSON `json:"updating"`
}

// ListPins returns the lock's pin inventory across all lifecycle buckets.
// Implements access.Client.
func (c *Client) ListPins(ctx context.Context, lockID string) (access.Listing, error) {
	var out pinsJSON
	if _, err := c.http.Do(ctx, http.MethodGet, "locks/"+lockID+"/pins", nil, &out); err != nil {
		return access.Listing{}, fmt.Errorf("failed to list pins for lock %s: %w", lockID, err)
	}

	listing := access.Listing{Buckets: map[access.State][]access.PinRecord{}}
	buckets := map[access.State][]pinJSON{
		access.StateCreating:  out.Creating,
		access.StateCreated:   out.Created,
		access.StateEnabling:  out.Enabling,
		access.StateEnabled:   out.Enabled,
		access.StateLoaded:    out.Loaded,
		access.StateDisabling: out.Disabling,
		access.StateDisabled:  out.Disabled,
		access.StateDeleting:  out.Deleting,
		access.StateUpdating:  out.Updating,
	}
	for state, pins := range buckets {
		for _, p := range pins {
			listing.Buckets[state] = append(listing.Buckets[state], toPinRecord(p, state))
		}
	}
	return listing, nil
}

func toPinRecord(p pinJSON, bucket access.State) access.PinRecord {
	state := access.State(p.State)
	if p.State == "" {
		state = bucket
	}
	return access.PinRecord{
		ID:        p.ID,
		UserID:    p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Pin:       p.Pin,
		State:     state,
	}
}
