// internal/fleet/client.go

// Package fleet queries the fleet operations API for landing events: which
// locations processed raw material on which dates, and how much was landed.
// Operational day counts derived from these events drive the consumption
// estimate denominators.
package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/pkg/logger"
)

// ErrEmptyResult is returned when the API answered successfully but carried
// no landing events for the requested window.
var ErrEmptyResult = errors.New("fleet: empty result for requested window")

// StatusError is returned when the API answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fleet: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Event is one landing event: a vessel discharge processed at a location.
type Event struct {
	LocationID    string
	ProcessDate   time.Time
	DischargeDate time.Time
	LandedQty     float64
}

// Client is the fleet operations API client.
type Client struct {
	baseURL string
	user    string
	http    *http.Client
}

func NewClient(cfg config.FleetConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		user:    cfg.User,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// The upstream API speaks a generic option-filter protocol; the movement
// date range goes in a single MULTIINPUT option.
type queryPayload struct {
	POptions []any         `json:"p_options"`
	Options  []queryOption `json:"options"`
	PRows    string        `json:"p_rows"`
	PUser    string        `json:"p_user"`
}

type queryOption struct {
	Cantidad  string `json:"cantidad"`
	Control   string `json:"control"`
	Key       string `json:"key"`
	ValueHigh string `json:"valueHigh"`
	ValueLow  string `json:"valueLow"`
}

type queryResponse struct {
	Rows []eventRow `json:"str_des"`
}

type eventRow struct {
	Center        string `json:"WERKS"`
	LandedQty     string `json:"CNPDS"`
	DischargeDate string `json:"FCSAZ"`
	ProcessDate   string `json:"FIDES"`
}

const apiDateLayout = "02/01/2006"

// Events fetches the landing events whose movement date falls in [from, to].
func (c *Client) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	payload := queryPayload{
		POptions: []any{},
		Options: []queryOption{{
			Cantidad:  "10",
			Control:   "MULTIINPUT",
			Key:       "FECCONMOV",
			ValueHigh: to.Format(apiDateLayout),
			ValueLow:  from.Format(apiDateLayout),
		}},
		PRows: "",
		PUser: c.user,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fleet: failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fleet: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fleet: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: buf.String()}
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("fleet: failed to decode response: %w", err)
	}
	if len(decoded.Rows) == 0 {
		return nil, ErrEmptyResult
	}

	events := make([]Event, 0, len(decoded.Rows))
	for _, row := range decoded.Rows {
		ev, err := row.toEvent()
		if err != nil {
			logger.Log.Warn().Err(err).Str("center", row.Center).Msg("skipping malformed landing event")
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil, ErrEmptyResult
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].ProcessDate.Equal(events[j].ProcessDate) {
			return events[i].ProcessDate.Before(events[j].ProcessDate)
		}
		return events[i].LocationID < events[j].LocationID
	})
	return events, nil
}

func (r eventRow) toEvent() (Event, error) {
	if r.Center == "" {
		return Event{}, errors.New("event row has no center")
	}
	process, err := time.Parse(apiDateLayout, r.ProcessDate)
	if err != nil {
		return Event{}, fmt.Errorf("bad process date %q: %w", r.ProcessDate, err)
	}
	discharge, err := time.Parse(apiDateLayout, r.DischargeDate)
	if err != nil {
		// discharge date is only used for forecasting; fall back to process date
		discharge = process
	}
	qty, _ := strconv.ParseFloat(strings.TrimSpace(r.LandedQty), 64)
	return Event{
		LocationID:    r.Center,
		ProcessDate:   process,
		DischargeDate: discharge,
		LandedQty:     qty,
	}, nil
}

// OperationalDays counts, per location, the distinct process dates observed
// in the events. It is the denominator of the daily consumption rate.
func OperationalDays(events []Event) map[string]int {
	seen := make(map[string]map[string]struct{})
	for _, ev := range events {
		day := ev.ProcessDate.Format("2006-01-02")
		if seen[ev.LocationID] == nil {
			seen[ev.LocationID] = make(map[string]struct{})
		}
		seen[ev.LocationID][day] = struct{}{}
	}
	out := make(map[string]int, len(seen))
	for loc, days := range seen {
		out[loc] = len(days)
	}
	return out
}
