// internal/forecast/client.go

// Package forecast projects daily landed quantities forward through an
// external time-series service. The projection is advisory: callers treat a
// forecast failure as a degraded run, not a failed one.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/internal/fleet"
)

// ErrEmptyForecast is returned when the service answered successfully but
// produced no projection points.
var ErrEmptyForecast = errors.New("forecast: service returned no points")

// StatusError is returned when the service answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("forecast: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Point is one dated quantity, either observed or projected. Lower and Upper
// bound the model's uncertainty; observed points carry their value in all
// three.
type Point struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
	Source string    `json:"source"`
}

const (
	SourceActual   = "actual"
	SourceForecast = "forecast"
)

const dayLayout = "2006-01-02"

// Client calls the external projection service.
type Client struct {
	baseURL string
	horizon int
	http    *http.Client
}

func NewClient(cfg config.ForecastConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		horizon: cfg.HorizonDays,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// DailySeries totals landed quantity per discharge day across all locations.
func DailySeries(events []fleet.Event) []Point {
	byDay := make(map[string]float64)
	for _, ev := range events {
		byDay[ev.DischargeDate.Format(dayLayout)] += ev.LandedQty
	}
	out := make([]Point, 0, len(byDay))
	for day, total := range byDay {
		d, _ := time.Parse(dayLayout, day)
		out = append(out, Point{Date: d, Value: total, Lower: total, Upper: total, Source: SourceActual})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type projectRequest struct {
	Series  []seriesPoint `json:"series"`
	Horizon int           `json:"horizon_days"`
}

type seriesPoint struct {
	Date  string  `json:"ds"`
	Value float64 `json:"y"`
}

type projectResponse struct {
	Forecast []forecastPoint `json:"forecast"`
}

type forecastPoint struct {
	Date  string  `json:"ds"`
	Value float64 `json:"y"`
	Lower float64 `json:"yhat_lower"`
	Upper float64 `json:"yhat_upper"`
}

// Project sends the observed series to the service and merges the answer
// with the actuals: observed days keep their observed value, projected days
// beyond the series get the model value clipped at zero.
func (c *Client) Project(ctx context.Context, series []Point) ([]Point, error) {
	if len(series) == 0 {
		return nil, ErrEmptyForecast
	}

	req := projectRequest{Horizon: c.horizon, Series: make([]seriesPoint, len(series))}
	for i, p := range series {
		req.Series[i] = seriesPoint{Date: p.Date.Format(dayLayout), Value: p.Value}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("forecast: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("forecast: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("forecast: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: buf.String()}
	}

	var decoded projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("forecast: failed to decode response: %w", err)
	}
	if len(decoded.Forecast) == 0 {
		return nil, ErrEmptyForecast
	}

	actualByDay := make(map[string]float64, len(series))
	lastActual := series[len(series)-1].Date
	for _, p := range series {
		actualByDay[p.Date.Format(dayLayout)] = p.Value
	}

	merged := make([]Point, 0, len(decoded.Forecast))
	for _, fp := range decoded.Forecast {
		d, err := time.Parse(dayLayout, fp.Date)
		if err != nil {
			return nil, fmt.Errorf("forecast: bad date %q in response: %w", fp.Date, err)
		}
		p := Point{Date: d, Value: fp.Value, Lower: fp.Lower, Upper: fp.Upper, Source: SourceForecast}
		if !d.After(lastActual) {
			if v, ok := actualByDay[fp.Date]; ok {
				p.Value = v
				p.Lower = v
				p.Upper = v
				p.Source = SourceActual
			}
		}
		if p.Value < 0 {
			p.Value = 0
		}
		if p.Lower < 0 {
			p.Lower = 0
		}
		if p.Upper < 0 {
			p.Upper = 0
		}
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged, nil
}
