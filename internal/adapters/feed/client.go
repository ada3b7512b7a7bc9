// Package feed fetches airport flight schedules from the AeroDataBox FIDS
// API and decodes them into raw flight records.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/pkg/logger"
	"github.com/okian/curbcast/pkg/metrics"
)

// Default client configuration.
const (
	defaultBaseURL    = "https://aerodatabox.p.rapidapi.com"
	defaultHost       = "aerodatabox.p.rapidapi.com"
	defaultTimeout    = 10 * time.Second
	defaultPerMinute  = 10
	defaultBurst      = 2
	maxWindow         = 12 * time.Hour
	maxBodyBytes      = 8 << 20
	requestTimeLayout = "2006-01-02T15:04"
)

// Request selects one schedule page. From and To are airport-local wall
// clock times and may span at most twelve hours.
type Request struct {
	Airport   string
	Direction model.Direction
	From      time.Time
	To        time.Time
}

// Fetcher retrieves raw schedule records.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]model.RawFlight, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) ([]model.RawFlight, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]model.RawFlight, error) {
	return f(ctx, req)
}

// Client is an AeroDataBox Fetcher.
type Client struct {
	baseURL string
	host    string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient constructs a client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		host:    defaultHost,
		timeout: defaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(float64(defaultPerMinute)/60), defaultBurst),
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Fetch implements Fetcher. Records that fail to decode are logged,
// counted and skipped; the rest of the page is still returned.
func (c *Client) Fetch(ctx context.Context, req Request) ([]model.RawFlight, error) {
	const op = "feed.fetch"

	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAPIKey)
	}
	endpoint, err := c.endpoint(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Wait fails immediately when the token would arrive after ctx's
	// deadline, so a quota stall surfaces as a fetch error.
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordRateLimited()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("X-RapidAPI-Key", c.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", c.host)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordRateLimited()
		return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c.decode(ctx, body, req.Direction)
}

func (c *Client) endpoint(req Request) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Airport))
	if code == "" {
		return "", fmt.Errorf("%w: airport is required", ErrInvalidRequest)
	}
	span := req.To.Sub(req.From)
	if span <= 0 || span > maxWindow {
		return "", fmt.Errorf("%w: window must be within (0, %s]", ErrInvalidRequest, maxWindow)
	}

	q := url.Values{}
	q.Set("direction", directionParam(req.Direction))
	q.Set("withPrivate", "false")
	q.Set("withCodeshared", "true")
	q.Set("withCargo", "true")

	return fmt.Sprintf("%s/flights/airports/iata/%s/%s/%s?%s",
		c.baseURL,
		url.PathEscape(code),
		req.From.Format(requestTimeLayout),
		req.To.Format(requestTimeLayout),
		q.Encode(),
	), nil
}

func directionParam(d model.Direction) string {
	if d == model.Departure {
		return "Departure"
	}
	return "Arrival"
}

type page struct {
	Arrivals   []json.RawMessage `json:"arrivals"`
	Departures []json.RawMessage `json:"departures"`
}

type record struct {
	Number          string `json:"number"`
	Status          string `json:"status"`
	CodeshareStatus string `json:"codeshareStatus"`
	IsCargo         bool   `json:"isCargo"`
	Movement        struct {
		Airport struct {
			IATA string `json:"iata"`
		} `json:"airport"`
		ScheduledTime timestamp `json:"scheduledTime"`
		RevisedTime   timestamp `json:"revisedTime"`
	} `json:"movement"`
	Airline struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Aircraft struct {
		Reg string `json:"reg"`
	} `json:"aircraft"`
}

func (c *Client) decode(ctx context.Context, body []byte, dir model.Direction) ([]model.RawFlight, error) {
	const op = "feed.decode"

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}
	items := p.Arrivals
	if dir == model.Departure {
		items = p.Departures
	}

	out := make([]model.RawFlight, 0, len(items))
	for i, raw := range items {
		rf, err := decodeRecord(raw, dir)
		if err != nil {
			metrics.RecordMalformedRecord(dir.String())
			c.logger.Warn(ctx, "skipping malformed feed record",
				logger.Int("index", i),
				logger.String("direction", dir.String()),
				logger.Error(err),
			)
			continue
		}
		out = append(out, rf)
	}
	metrics.RecordFeedRecords(dir.String(), len(out))
	return out, nil
}

func decodeRecord(raw json.RawMessage, dir model.Direction) (model.RawFlight, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.RawFlight{}, fmt.Errorf("%w: %w", model.ErrMalformedRecord, err)
	}

	// The revised time is the better predictor of when the aircraft
	// actually moves.
	when := r.Movement.RevisedTime
	if when.IsZero() {
		when = r.Movement.ScheduledTime
	}
	if when.IsZero() {
		return model.RawFlight{}, fmt.Errorf("%w: no movement time", model.ErrMalformedRecord)
	}
	if strings.TrimSpace(r.Number) == "" {
		return model.RawFlight{}, fmt.Errorf("%w: no flight number", model.ErrMalformedRecord)
	}

	kind := model.KindPassenger
	if r.IsCargo {
		kind = model.KindCargo
	}

	return model.RawFlight{
		Airline:      strings.ToUpper(strings.TrimSpace(r.Airline.IATA)),
		AirlineName:  strings.TrimSpace(r.Airline.Name),
		Number:       strings.TrimSpace(r.Number),
		Direction:    dir,
		Scheduled:    when.t,
		ZoneKnown:    when.zoneKnown,
		Status:       r.Status,
		Kind:         kind,
		Role:         carrierRole(r.CodeshareStatus),
		Route:        strings.ToUpper(strings.TrimSpace(r.Movement.Airport.IATA)),
		Registration: strings.ToUpper(strings.TrimSpace(r.Aircraft.Reg)),
	}, nil
}

func carrierRole(s string) model.CarrierRole {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "isoperator":
		return model.RoleOperating
	case "iscodeshared":
		return model.RoleMarketing
	default:
		return model.RoleUnknown
	}
}
