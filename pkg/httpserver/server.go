// Package httpserver serves the read-only observability API: the period
// records the engine emits and the registered currency configuration.
// External telemetry consumes these; the core never interprets them.
package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/settmint/serp-tes/internal/ratelimit"
	"github.com/settmint/serp-tes/internal/registry"
	"github.com/settmint/serp-tes/internal/types"
	"github.com/settmint/serp-tes/pkg/records"
	"github.com/settmint/serp-tes/schema"
)

type Config struct {
	Journal    *records.Journal
	Registry   *registry.Registry
	RatePerMin int
	Burst      int
	Log        zerolog.Logger
}

type Server struct {
	cfg     Config
	mux     *http.ServeMux
	limiter *ratelimit.Limiter
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		limiter: ratelimit.New(cfg.RatePerMin, cfg.Burst),
	}
	s.mux.HandleFunc("/healthz", s.healthz)
	s.mux.HandleFunc("/currencies", s.wrap(s.handleCurrencies))
	s.mux.HandleFunc("/records", s.wrap(s.handleRecords))
	s.mux.HandleFunc("/openapi.yaml", s.handleSchema)
	return s
}

func (s *Server) Mux() *http.ServeMux { return s.mux }

func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next(w, r)
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	etag := s.cfg.Journal.ETag()
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	id := types.CurrencyID(r.URL.Query().Get("currency"))
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs := s.cfg.Journal.Records(id, limit)
	w.Header().Set("ETag", etag)
	out := struct {
		Count   int                  `json:"count"`
		Records []types.PeriodRecord `json:"records"`
	}{len(recs), recs}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		s.cfg.Log.Error().Err(err).Msg("/records encode failed")
	}
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID           types.CurrencyID `json:"id"`
		Peg          string           `json:"peg"`
		Tolerance    string           `json:"tolerance"`
		MaxChangeCap uint64           `json:"max_change_cap"`
		MinimumFloor uint64           `json:"minimum_floor"`
		Frequency    uint64           `json:"frequency"`
	}
	currencies := s.cfg.Registry.Currencies()
	out := make([]entry, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, entry{
			ID:           c.ID,
			Peg:          c.Peg.String(),
			Tolerance:    c.Tolerance.String(),
			MaxChangeCap: c.MaxChangeCap,
			MinimumFloor: c.MinimumFloor,
			Frequency:    c.Frequency,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		s.cfg.Log.Error().Err(err).Msg("/currencies encode failed")
	}
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(schema.OpenAPI)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}{"ok", time.Now().UTC().Format(time.RFC3339)})
}
