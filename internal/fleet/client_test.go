package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/supply-coverage/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.FleetConfig{BaseURL: url, User: "BATCH", TimeoutSeconds: 5})
}

func TestEvents(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"str_des": []map[string]string{
				{"WERKS": "ATIC", "CNPDS": "850.5", "FCSAZ": "02/06/2024", "FIDES": "03/06/2024"},
				{"WERKS": "ATIC", "CNPDS": "400", "FCSAZ": "02/06/2024", "FIDES": "03/06/2024"},
				{"WERKS": "CHIM", "CNPDS": "120", "FCSAZ": "01/06/2024", "FIDES": "01/06/2024"},
			},
		})
	}))
	defer srv.Close()

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	events, err := newTestClient(srv.URL).Events(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// date filter travels as one MULTIINPUT option in dd/mm/yyyy
	opts := captured["options"].([]any)
	require.Len(t, opts, 1)
	opt := opts[0].(map[string]any)
	assert.Equal(t, "FECCONMOV", opt["key"])
	assert.Equal(t, "01/06/2024", opt["valueLow"])
	assert.Equal(t, "15/06/2024", opt["valueHigh"])
	assert.Equal(t, "BATCH", captured["p_user"])

	// sorted by process date then location
	assert.Equal(t, "CHIM", events[0].LocationID)
	assert.Equal(t, 850.5, events[1].LandedQty)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), events[1].ProcessDate)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), events[1].DischargeDate)
}

func TestEventsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"str_des": []any{}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Events(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestEventsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Events(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestEventsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	_, err := newTestClient(srv.URL).Events(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestOperationalDays(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	events := []Event{
		{LocationID: "ATIC", ProcessDate: day(1)},
		{LocationID: "ATIC", ProcessDate: day(1)},
		{LocationID: "ATIC", ProcessDate: day(2)},
		{LocationID: "CHIM", ProcessDate: day(5)},
	}
	days := OperationalDays(events)
	assert.Equal(t, map[string]int{"ATIC": 2, "CHIM": 1}, days)
}
