package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settmint/serp-tes/internal/registry"
	"github.com/settmint/serp-tes/internal/types"
	"github.com/settmint/serp-tes/pkg/records"
)

func newServer(t *testing.T) (*Server, *records.Journal) {
	t.Helper()
	reg, err := registry.New(registry.EngineConfig{}, []types.Currency{{
		ID:           "SETT",
		Peg:          decimal.RequireFromString("1.00"),
		Tolerance:    decimal.RequireFromString("0.02"),
		MaxChangeCap: 50_000,
		MinimumFloor: 80_000,
		Frequency:    10,
	}})
	require.NoError(t, err)

	journal := records.NewJournal(16)
	srv := New(Config{
		Journal:    journal,
		Registry:   reg,
		RatePerMin: 600,
		Burst:      100,
		Log:        zerolog.Nop(),
	})
	return srv, journal
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t)
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordsEndpoint(t *testing.T) {
	srv, journal := newServer(t)
	journal.Append(types.PeriodRecord{CurrencyID: "SETT", Period: 1, Height: 10, State: "applied"})
	journal.Append(types.PeriodRecord{CurrencyID: "JUSD", Period: 1, Height: 10, State: "skipped"})

	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, httptest.NewRequest("GET", "/records?currency=SETT", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("ETag"))

	var out struct {
		Count   int                  `json:"count"`
		Records []types.PeriodRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, 1, out.Count)
	assert.Equal(t, types.CurrencyID("SETT"), out.Records[0].CurrencyID)
	assert.Equal(t, "applied", out.Records[0].State)
}

func TestRecordsNotModified(t *testing.T) {
	srv, journal := newServer(t)
	journal.Append(types.PeriodRecord{CurrencyID: "SETT", Period: 1})

	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, httptest.NewRequest("GET", "/records", nil))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	r := httptest.NewRequest("GET", "/records", nil)
	r.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestRecordsInvalidLimit(t *testing.T) {
	srv, _ := newServer(t)
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, httptest.NewRequest("GET", "/records?limit=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrenciesEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, httptest.NewRequest("GET", "/currencies", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var out []struct {
		ID           string `json:"id"`
		Peg          string `json:"peg"`
		MaxChangeCap uint64 `json:"max_change_cap"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "SETT", out[0].ID)
	assert.Equal(t, "1", out[0].Peg)
	assert.Equal(t, uint64(50_000), out[0].MaxChangeCap)
}

func TestRateLimit(t *testing.T) {
	reg, err := registry.New(registry.EngineConfig{}, nil)
	require.NoError(t, err)
	srv := New(Config{
		Journal:    records.NewJournal(4),
		Registry:   reg,
		RatePerMin: 60,
		Burst:      1,
		Log:        zerolog.Nop(),
	})

	r := httptest.NewRequest("GET", "/records", nil)
	r.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestOpenAPIServed(t *testing.T) {
	srv, _ := newServer(t)
	w := httptest.NewRecorder()
	srv.Mux().ServeHTTP(w, httptest.NewRequest("GET", "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SERP-TES Observability API")
}
