// Package guesty implements the reservation source client: session
// authentication and paginated reservation listings against a Guesty-style
// owner API.
package guesty

import (
	"context"
	"encoding/json"
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

// DefaultBaseURL is the production owner API endpoint.
const DefaultBaseURL = "https://app.guesty.com/api/v2/"

// defaultFields are the reservation summary fields requested per page.
var defaultFields = []string{
	"checkIn", "checkOut", "checkInDateLocalized", "checkOutDateLocalized",
	"confirmationCode", "status", "guest.fullName", "money.totalPrice", "money.currency",
}

// Config holds the credentials and target listing for a client.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	AccountID string
	APIKey    string
}

// Credential is the session token returned by authentication.
type Credential struct {
	Token string
}

// Client talks to the reservation source. Authenticate must be called
// before listings; it installs the bearer token on the client's session.
type Client struct {
	cfg  Config
	http *httpjson.Client
}

// New returns a client for the configured account.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	session := httpjson.NewSession(map[string]string{
		"Accept": "application/json",
	})
	httpClient, err := httpjson.New(cfg.BaseURL, session)
	if err != nil {
		return nil, fmt.Errorf("failed to build guesty client: %w", err)
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

// HTTP exposes the underlying transport for tests.
func (c *Client) HTTP() *httpjson.Client {
	return c.http
}

// Authenticate exchanges the configured credentials for a session token
// and installs it on the session for subsequent calls.
func (c *Client) Authenticate(ctx context.Context) (Credential, error) {
	body := map[string]string{
		"username":  c.cfg.Username,
		"password":  c.cfg.Password,
		"accountId": c.cfg.AccountID,
		"apiKey":    c.cfg.APIKey,
	}

	var out struct {
		Token string `json:"token"`
	}
	if _, err := c.http.Do(ctx, http.MethodPost, "authenticate", body, &out); err != nil {
		return Credential{}, fmt.Errorf("authentication failed: %w", err)
	}
	if out.Token == "" {
		return Credential{}, fmt.Errorf("authentication response carried no token")
	}

	c.http.Session().Set("Authorization", "Bearer "+out.Token)
	return Credential{Token: out.Token}, nil
}

// Filter is one reservation search predicate.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	Context  string `json:"context,omitempty"`
}

// ListOptions control a reservation listing.
type ListOptions struct {
	// Limit is the page size. Defaults to 25.
	Limit int
	// Fields selects the summary fields per record. Defaults to the
	// fields the sync engine needs.
	Fields []string
	// Filters restrict the result set. Defaults to reservations whose
	// check-out is still in the future.
	Filters []Filter
}

// ListReservations fetches every reservation matching the options,
// accumulating pages until the reported total count is reached. Each page
// fetch is retried on transient failures; client errors abort immediately.
func (c *Client) ListReservations(ctx context.Context, opts ListOptions) ([]reservation.Reservation, error) {
	if opts.Limit <= 0 {
		opts.Limit = 25
	}
	if len(opts.Fields) == 0 {
		opts.Fields = defaultFields
	}
	if opts.Filters == nil {
		opts.Filters = []Filter{{Field: "checkOut", Operator: "$gt", Value: 0, Context: "now"}}
	}

	filters, err := json.Marshal(opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	var all []reservation.Reservation
	skip := 0
	for {
		page, total, err := c.fetchPage(ctx, skip, opts.Limit, opts.Fields, string(filters))
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		skip += len(page)

		if skip >= total || len(page) == 0 {
			return all, nil
		}
	}
}

type listResponse struct {
	Results []reservationJSON `json:"results"`
	Count   int               `json:"count"`
}

func (c *Client) fetchPage(ctx context.Context, skip, limit int, fields []string, filters string) ([]reservation.Reservation, int, error) {
	endpoint := fmt.Sprintf("reservations?limit=%d&skip=%d&fields=%s&filters=%s",
		limit, skip, url.QueryEscape(strings.Join(fields, " ")), url.QueryEscape(filters))

	var out listResponse
	err := retry.Do(ctx, func() error {
		out = listResponse{}
		_, err := c.http.Do(ctx, http.MethodGet, endpoint, nil, &out)
		var statusErr *httpjson.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return retry.Fatal(err)
		}
		return err
	}, retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations at skip=%d: %w", skip, err)
	}

	records := make([]reservation.Reservation, 0, len(out.Results))
	for _, r := range out.Results {
		records = append(records, r.toReservation())
	}
	return records, out.Count, nil
}

// reservationJSON is the wire shape of one reservation summary.
type reservationJSON struct {
	ID               string `json:"_id"`
	ConfirmationCode string `json:"confirmationCode"`
	Status           string `json:"status"`
	CheckIn          string `json:"checkIn"`
	CheckOut         string `json:"checkOut"`
	CheckInLocal     string `json:"checkInDateLocalized"`
	CheckOutLocal    string `json:"checkOutDateLocalized"`
	Guest            struct {
		FullName string `json:"fullName"`
	} `json:"guest"`
	Money struct {
		TotalPrice float64 `json:"totalPrice"`
		Currency   string  `json:"currency"`
	} `json:"money"`
}

func (r reservationJSON) toReservation() reservation.Reservation {
	return reservation.Reservation{
		ID:               r.ID,
		ConfirmationCode: r.ConfirmationCode,
		GuestName:        r.Guest.FullName,
		CheckIn:          parseInstant(r.CheckIn),
		CheckOut:         parseInstant(r.CheckOut),
		CheckInLocal:     r.CheckInLocal,
		CheckOutLocal:    r.CheckOutLocal,
		RawStatus:        r.Status,
		Money: reservation.Money{
			TotalPrice: r.Money.TotalPrice,
			Currency:   r.Money.Currency,
		},
	}
}

func parseInstant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
