// Package lcd is an HTTP client for a settchain node's light-client
// gateway. It implements the oracle, ledger and market collaborator
// interfaces for the off-chain controller daemon; the deterministic core
// itself never performs I/O.
package lcd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/settmint/serp-tes/internal/collab"
	"github.com/settmint/serp-tes/internal/types"
)

type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string, httpClient *http.Client) *Client {
	return &Client{base: strings.TrimRight(base, "/"), client: httpClient}
}

// LatestHeight returns the latest block height known to the gateway.
func (c *Client) LatestHeight() (uint64, error) {
	var out struct {
		Height string `json:"height"`
	}
	if err := c.get("/serp/v1/blocks/latest", &out); err != nil {
		return 0, err
	}
	h, err := strconv.ParseUint(out.Height, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lcd latest height %q: %w", out.Height, err)
	}
	return h, nil
}

// CurrentSupply returns total circulating supply for a currency.
func (c *Client) CurrentSupply(id types.CurrencyID) (uint64, error) {
	var out struct {
		Amount string `json:"amount"`
	}
	if err := c.get("/serp/v1/supply/"+url.PathEscape(string(id)), &out); err != nil {
		return 0, err
	}
	s, err := strconv.ParseUint(out.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lcd supply %q: %w", out.Amount, err)
	}
	return s, nil
}

// LatestPrice returns the newest oracle quote for a currency. A gateway 404
// maps to collab.ErrUnavailable, which the core treats as a stale quote.
func (c *Client) LatestPrice(id types.CurrencyID) (types.PriceQuote, error) {
	var out struct {
		Price  string `json:"price"`
		Height string `json:"height"`
	}
	u := c.base + "/serp/v1/prices/" + url.PathEscape(string(id))
	resp, err := c.client.Get(u)
	if err != nil {
		return types.PriceQuote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return types.PriceQuote{}, collab.ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return types.PriceQuote{}, fmt.Errorf("lcd price: %s", string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.PriceQuote{}, err
	}
	price, err := decimal.NewFromString(out.Price)
	if err != nil {
		return types.PriceQuote{}, fmt.Errorf("lcd price %q: %w", out.Price, err)
	}
	h, err := strconv.ParseUint(out.Height, 10, 64)
	if err != nil {
		return types.PriceQuote{}, fmt.Errorf("lcd price height %q: %w", out.Height, err)
	}
	return types.PriceQuote{CurrencyID: id, Price: price, Height: h}, nil
}

// Mint asks the ledger module to mint new units of a currency.
func (c *Client) Mint(id types.CurrencyID, amount uint64) error {
	return c.post("/serp/v1/mint", amountBody(id, amount), nil)
}

// Burn asks the ledger module to burn units of a currency.
func (c *Client) Burn(id types.CurrencyID, amount uint64) error {
	return c.post("/serp/v1/burn", amountBody(id, amount), nil)
}

// ReleaseToMarket hands minted units to market settlement.
func (c *Client) ReleaseToMarket(id types.CurrencyID, amount uint64) error {
	return c.post("/serp/v1/market/release", amountBody(id, amount), nil)
}

// AcquireFromMarket buys back up to amount units; the gateway reports what
// was actually acquired.
func (c *Client) AcquireFromMarket(id types.CurrencyID, amount uint64) (uint64, error) {
	var out struct {
		Acquired string `json:"acquired"`
	}
	if err := c.post("/serp/v1/market/acquire", amountBody(id, amount), &out); err != nil {
		return 0, err
	}
	got, err := strconv.ParseUint(out.Acquired, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lcd acquired %q: %w", out.Acquired, err)
	}
	return got, nil
}

func amountBody(id types.CurrencyID, amount uint64) any {
	return struct {
		CurrencyID string `json:"currency_id"`
		Amount     string `json:"amount"`
	}{string(id), strconv.FormatUint(amount, 10)}
}

func (c *Client) get(path string, out any) error {
	resp, err := c.client.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("lcd %s: %s", path, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.client.Post(c.base+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("lcd %s: %s", path, string(b))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
