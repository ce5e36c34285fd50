package collector

import (
	"context"
	"time"

	"github.com/newthinker/quotegate/internal/core"
)

// Session is a long-lived live-data connection to the vendor.
// It is shared by all request handlers; only the process lifecycle
// opens and closes it.
//
//go:generate mockgen -package=mocks -destination=mocks/session.go -source=interface.go Session
type Session interface {
	// Subscribe requests live data for symbols and returns one request id
	// per symbol the vendor accepted. An empty result means none were.
	Subscribe(ctx context.Context, symbols []string) ([]string, error)
	// LatestTick returns the most recent tick cached for a request id.
	LatestTick(id string) (Tick, bool)
	Close() error
}

// Resolution is the granularity of a historical bar
type Resolution string

const (
	ResolutionIntraday Resolution = "15min"
	ResolutionEOD      Resolution = "EOD"
)

// Window is a date range plus the bar resolution to request
type Window struct {
	From       time.Time
	To         time.Time
	Resolution Resolution
}

// Days returns the calendar span of the window
func (w Window) Days() int {
	return int(w.To.Sub(w.From).Hours() / 24)
}

// HistorySource fetches historical bars from the vendor
type HistorySource interface {
	FetchHistory(ctx context.Context, symbol string, w Window) ([]core.Candle, error)
}

// FundamentalSource fetches the vendor's company record
type FundamentalSource interface {
	FetchFundamentals(ctx context.Context, symbol string) (*CompanyInfo, error)
}

// ShareholdingInfo is the vendor's ownership breakdown. Nil fields were
// absent from the payload.
type ShareholdingInfo struct {
	Promoters    *float64
	Institutions *float64
	Public       *float64
}

// CompanyInfo is the vendor's flat company record. Nil fields were
// absent from the payload.
type CompanyInfo struct {
	MarketCap      *float64
	PE             *float64
	PEG            *float64
	BookValue      *float64
	DividendYield  *float64
	EPS            *float64
	ProfitMargin   *float64
	ROE            *float64
	DebtToEquity   *float64
	Shareholding   *ShareholdingInfo
	Recommendation *string
	TargetPrice    *float64
	TargetLow      *float64
	TargetHigh     *float64
}
