package truedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/newthinker/quotegate/internal/collector"
	"github.com/newthinker/quotegate/internal/core"
)

const (
	DefaultHistoryURL     = "https://history.truedata.in/gethistory"
	DefaultFundamentalURL = "https://api.truedata.in/fundamental"

	dateLayout = "060102"
)

// HTTPClient is the subset of *http.Client used by Client
//
//go:generate mockgen -package=truedata_test -destination=mock_http_client_test.go -source=rest.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the vendor REST endpoints for history and fundamentals
type Client struct {
	creds              Credentials
	http               HTTPClient
	historyURL         string
	fundamentalURL     string
	historyTimeout     time.Duration
	fundamentalTimeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithHistoryURL overrides the history endpoint
func WithHistoryURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.historyURL = u
		}
	}
}

// WithFundamentalURL overrides the fundamentals base URL
func WithFundamentalURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.fundamentalURL = u
		}
	}
}

// WithTimeouts sets per-call deadlines. Non-positive values keep the default.
func WithTimeouts(history, fundamental time.Duration) Option {
	return func(c *Client) {
		if history > 0 {
			c.historyTimeout = history
		}
		if fundamental > 0 {
			c.fundamentalTimeout = fundamental
		}
	}
}

// NewClient creates a REST client
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:              creds,
		http:               http.DefaultClient,
		historyURL:         DefaultHistoryURL,
		fundamentalURL:     DefaultFundamentalURL,
		historyTimeout:     5 * time.Second,
		fundamentalTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchHistory requests bars for symbol over the window
func (c *Client) FetchHistory(ctx context.Context, symbol string, w collector.Window) ([]core.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", string(w.Resolution))
	params.Set("from", w.From.Format(dateLayout))
	params.Set("to", w.To.Format(dateLayout))
	params.Set("response", "json")
	params.Set("user", c.creds.User)
	params.Set("pass", c.creds.Password)

	var payload struct {
		Records [][]any `json:"Records"`
	}
	if err := c.getJSON(ctx, c.historyURL, params, c.historyTimeout, &payload); err != nil {
		return nil, err
	}

	candles := make([]core.Candle, 0, len(payload.Records))
	for i, row := range payload.Records {
		if len(row) < 5 {
			continue
		}
		candle, err := parseRecord(row)
		if err != nil {
			return nil, core.WrapError(core.ErrVendorPayload, fmt.Errorf("record %d: %w", i, err))
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseRecord reads [date, open, high, low, close, (volume)]
func parseRecord(row []any) (core.Candle, error) {
	var prices [4]float64
	for i := range prices {
		v, ok := toFloat(row[i+1])
		if !ok {
			return core.Candle{}, fmt.Errorf("field %d is not numeric: %v", i+1, row[i+1])
		}
		prices[i] = v
	}

	c := core.Candle{
		Date:  toString(row[0]),
		Open:  prices[0],
		High:  prices[1],
		Low:   prices[2],
		Close: prices[3],
	}
	if len(row) > 5 {
		if v, ok := toFloat(row[5]); ok {
			c.Volume = int64(v)
		}
	}
	return c, nil
}

type companyInfoPayload struct {
	MarketCap      flexFloat `json:"market_cap"`
	PE             flexFloat `json:"pe"`
	PEG            flexFloat `json:"peg"`
	BookValue      flexFloat `json:"book_value"`
	DividendYield  flexFloat `json:"dividend_yield"`
	EPS            flexFloat `json:"eps"`
	ProfitMargin   flexFloat `json:"profit_margin"`
	ROE            flexFloat `json:"roe"`
	DebtToEquity   flexFloat `json:"debt_to_equity"`
	Recommendation *string   `json:"recommendation"`
	TargetPrice    flexFloat `json:"target_price"`
	TargetLow      flexFloat `json:"target_low"`
	TargetHigh     flexFloat `json:"target_high"`
	Shareholding   *struct {
		Promoters    flexFloat `json:"promoters"`
		Institutions flexFloat `json:"institutions"`
		Public       flexFloat `json:"public"`
	} `json:"shareholding"`
}

// FetchFundamentals requests the company_info record for symbol
func (c *Client) FetchFundamentals(ctx context.Context, symbol string) (*collector.CompanyInfo, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("user", c.creds.User)
	params.Set("pass", c.creds.Password)

	var p companyInfoPayload
	if err := c.getJSON(ctx, c.fundamentalURL+"/company_info", params, c.fundamentalTimeout, &p); err != nil {
		return nil, err
	}

	info := &collector.CompanyInfo{
		MarketCap:      p.MarketCap.value,
		PE:             p.PE.value,
		PEG:            p.PEG.value,
		BookValue:      p.BookValue.value,
		DividendYield:  p.DividendYield.value,
		EPS:            p.EPS.value,
		ProfitMargin:   p.ProfitMargin.value,
		ROE:            p.ROE.value,
		DebtToEquity:   p.DebtToEquity.value,
		Recommendation: p.Recommendation,
		TargetPrice:    p.TargetPrice.value,
		TargetLow:      p.TargetLow.value,
		TargetHigh:     p.TargetHigh.value,
	}
	if p.Shareholding != nil {
		info.Shareholding = &collector.ShareholdingInfo{
			Promoters:    p.Shareholding.Promoters.value,
			Institutions: p.Shareholding.Institutions.value,
			Public:       p.Shareholding.Public.value,
		}
	}
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return core.WrapError(core.ErrVendorFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return core.WrapError(core.ErrVendorTimeout, err)
		}
		return core.WrapError(core.ErrVendorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return core.WrapError(core.ErrVendorStatus, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return core.WrapError(core.ErrVendorTimeout, err)
		}
		return core.WrapError(core.ErrVendorPayload, err)
	}
	return nil
}
