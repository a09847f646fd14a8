package lcd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/settmint/serp-tes/internal/collab"
)

func newGateway(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/serp/v1/blocks/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"height": "12345"})
	})
	mux.HandleFunc("/serp/v1/supply/SETT", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"amount": "1000000"})
	})
	mux.HandleFunc("/serp/v1/prices/SETT", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"price": "1.05", "height": "12340"})
	})
	mux.HandleFunc("/serp/v1/mint", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CurrencyID string `json:"currency_id"`
			Amount     string `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Amount == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/serp/v1/market/acquire", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CurrencyID string `json:"currency_id"`
			Amount     string `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// simulated shortfall: always fills 1500 at most
		json.NewEncoder(w).Encode(map[string]string{"acquired": "1500"})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, ts.Client()), ts
}

func TestLatestHeight(t *testing.T) {
	c, _ := newGateway(t)
	h, err := c.LatestHeight()
	if err != nil {
		t.Fatalf("latest height: %v", err)
	}
	if h != 12345 {
		t.Fatalf("height = %d, want 12345", h)
	}
}

func TestCurrentSupply(t *testing.T) {
	c, _ := newGateway(t)
	s, err := c.CurrentSupply("SETT")
	if err != nil {
		t.Fatalf("current supply: %v", err)
	}
	if s != 1000000 {
		t.Fatalf("supply = %d, want 1000000", s)
	}
}

func TestLatestPrice(t *testing.T) {
	c, _ := newGateway(t)
	q, err := c.LatestPrice("SETT")
	if err != nil {
		t.Fatalf("latest price: %v", err)
	}
	if q.Price.String() != "1.05" {
		t.Fatalf("price = %s, want 1.05", q.Price)
	}
	if q.Height != 12340 {
		t.Fatalf("quote height = %d, want 12340", q.Height)
	}
}

func TestLatestPriceUnavailable(t *testing.T) {
	c, _ := newGateway(t)
	_, err := c.LatestPrice("NOPE")
	if !errors.Is(err, collab.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestMint(t *testing.T) {
	c, _ := newGateway(t)
	if err := c.Mint("SETT", 50000); err != nil {
		t.Fatalf("mint: %v", err)
	}
}

func TestAcquireFromMarket(t *testing.T) {
	c, _ := newGateway(t)
	got, err := c.AcquireFromMarket("SETT", 40000)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if got != 1500 {
		t.Fatalf("acquired = %d, want 1500", got)
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mint would breach maximum supply", http.StatusUnprocessableEntity)
	}))
	defer ts.Close()
	c := NewClient(ts.URL, ts.Client())
	err := c.Mint("SETT", 1)
	if err == nil {
		t.Fatal("expected error")
	}
}
