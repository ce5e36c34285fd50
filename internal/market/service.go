package market

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/newthinker/quotegate/internal/collector"
	"github.com/newthinker/quotegate/internal/collector/synthetic"
	"github.com/newthinker/quotegate/internal/core"
	"github.com/newthinker/quotegate/internal/metrics"
	"github.com/newthinker/quotegate/internal/news"
	"github.com/newthinker/quotegate/internal/router"
	"go.uber.org/zap"
)

// Endpoint labels used for logging and metrics
const (
	EndpointQuote        = "quote"
	EndpointHistory      = "history"
	EndpointFundamentals = "fundamentals"
	EndpointNews         = "news"
)

// Vendor session states reported by VendorStatus
const (
	VendorConnected    = "connected"
	VendorDisconnected = "disconnected"
	VendorDisabled     = "disabled"
)

// DefaultTickWait bounds the single wait for a first tick
const DefaultTickWait = 200 * time.Millisecond

// MaxSymbolLength is the longest symbol accepted by Quote, in runes.
// Longer input is echoed back truncated on an Invalid Symbol quote.
const MaxSymbolLength = 64

// Config holds service settings
type Config struct {
	TickWait time.Duration
}

// Dependencies are the collaborators the service orchestrates.
// Session, History and Fundamentals may be nil when the vendor is
// disabled; those symbols then degrade to their documented fallbacks.
type Dependencies struct {
	Router       *router.Router
	Session      collector.Session
	History      collector.HistorySource
	Fundamentals collector.FundamentalSource
	Synthetic    *synthetic.Generator
	News         news.Provider
	Metrics      *metrics.Registry
	Now          func() time.Time
}

// Service answers the four market endpoints. Every method returns a
// well-formed value; vendor failures become fallback data.
type Service struct {
	cfg          Config
	router       *router.Router
	session      collector.Session
	history      collector.HistorySource
	fundamentals collector.FundamentalSource
	synthetic    *synthetic.Generator
	news         news.Provider
	metrics      *metrics.Registry
	now          func() time.Time
	logger       *zap.Logger
}

// New creates a market service
func New(cfg Config, deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TickWait <= 0 {
		cfg.TickWait = DefaultTickWait
	}
	if deps.Router == nil {
		deps.Router = router.New(router.DefaultConfig(), logger)
	}
	if deps.Synthetic == nil {
		deps.Synthetic = synthetic.New()
	}
	if deps.News == nil {
		deps.News = news.NewStaticProvider()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		cfg:          cfg,
		router:       deps.Router,
		session:      deps.Session,
		history:      deps.History,
		fundamentals: deps.Fundamentals,
		synthetic:    deps.Synthetic,
		news:         deps.News,
		metrics:      deps.Metrics,
		now:          deps.Now,
		logger:       logger,
	}
}

// Quote returns a live quote, a synthetic quote, or a degraded variant.
func (s *Service) Quote(ctx context.Context, symbol string) core.Quote {
	symbol = strings.TrimSpace(symbol)
	decision, canonical := s.router.Route(symbol)
	s.metrics.RecordRoute(EndpointQuote, string(decision))

	if symbol == "" || utf8.RuneCountInString(symbol) > MaxSymbolLength {
		return invalidQuote(symbol, decision)
	}
	if decision == router.Mock {
		return s.synthetic.Quote(symbol)
	}

	if s.session == nil {
		s.metrics.RecordFallback(EndpointQuote, core.ErrVendorDisconnected.Code)
		return degradedQuote(symbol, core.StatusDisconnected, "")
	}

	start := time.Now()
	ids, err := s.session.Subscribe(ctx, []string{canonical})
	if err != nil {
		s.vendorFailed(EndpointQuote, canonical, start, err)
		if errors.Is(err, core.ErrVendorDisconnected) {
			return degradedQuote(symbol, core.StatusDisconnected, "")
		}
		return degradedQuote(symbol, "", err.Error())
	}
	s.metrics.RecordVendorCall(EndpointQuote, "ok", time.Since(start).Seconds())

	if len(ids) == 0 {
		s.metrics.RecordFallback(EndpointQuote, core.ErrSymbolNotFound.Code)
		return degradedQuote(symbol, core.StatusInvalidSymbol, "")
	}

	tick, ok := s.awaitTick(ctx, ids[0])
	if !ok {
		s.metrics.RecordFallback(EndpointQuote, "NO_TICK")
		return degradedQuote(symbol, core.StatusWaitingTick, "")
	}
	return quoteFromTick(symbol, tick)
}

// awaitTick checks the cache, waits once for TickWait, and checks again.
func (s *Service) awaitTick(ctx context.Context, id string) (collector.Tick, bool) {
	if t, ok := s.session.LatestTick(id); ok {
		return t, true
	}

	timer := time.NewTimer(s.cfg.TickWait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	t, ok := s.session.LatestTick(id)
	if ok {
		s.metrics.RecordTickWait("hit")
	} else {
		s.metrics.RecordTickWait("missed")
	}
	return t, ok
}

// History returns bars for the period. Vendor failures fall back to
// the synthetic series; an empty vendor result stays empty.
func (s *Service) History(ctx context.Context, symbol, period string) []core.Candle {
	decision, canonical := s.router.Route(strings.TrimSpace(symbol))
	s.metrics.RecordRoute(EndpointHistory, string(decision))

	if decision == router.Mock {
		return s.synthetic.History(synthetic.DefaultBasePrice)
	}
	if s.history == nil {
		s.metrics.RecordFallback(EndpointHistory, core.ErrConfigMissing.Code)
		return s.synthetic.History(synthetic.DefaultBasePrice)
	}

	w := ResolvePeriod(period, s.now())
	start := time.Now()
	candles, err := s.history.FetchHistory(ctx, canonical, w)
	if err != nil {
		s.vendorFailed(EndpointHistory, canonical, start, err)
		return s.synthetic.History(synthetic.DefaultBasePrice)
	}
	s.metrics.RecordVendorCall(EndpointHistory, "ok", time.Since(start).Seconds())

	if candles == nil {
		candles = []core.Candle{}
	}
	return candles
}

// Fundamentals returns the research record. Any vendor failure yields
// the untouched default record.
func (s *Service) Fundamentals(ctx context.Context, symbol string) core.Fundamentals {
	decision, canonical := s.router.Route(strings.TrimSpace(symbol))
	s.metrics.RecordRoute(EndpointFundamentals, string(decision))

	if decision == router.Mock {
		return core.EmptyFundamentals(core.CurrencyUSD)
	}

	empty := core.EmptyFundamentals(core.CurrencyINR)
	if s.fundamentals == nil {
		s.metrics.RecordFallback(EndpointFundamentals, core.ErrConfigMissing.Code)
		return empty
	}

	start := time.Now()
	info, err := s.fundamentals.FetchFundamentals(ctx, canonical)
	if err != nil {
		s.vendorFailed(EndpointFundamentals, canonical, start, err)
		return empty
	}
	if info == nil {
		s.metrics.RecordFallback(EndpointFundamentals, core.ErrVendorPayload.Code)
		return empty
	}
	s.metrics.RecordVendorCall(EndpointFundamentals, "ok", time.Since(start).Seconds())

	return overlayFundamentals(empty, info)
}

// News returns headlines for the canonical form of symbol.
func (s *Service) News(ctx context.Context, symbol string) []core.NewsItem {
	decision, canonical := s.router.Route(strings.TrimSpace(symbol))
	s.metrics.RecordRoute(EndpointNews, string(decision))

	items, err := s.news.FetchNews(ctx, canonical)
	if err != nil {
		s.logger.Warn("news lookup failed",
			zap.String("symbol", canonical),
			zap.String("reason", core.Reason(err)),
			zap.Error(err),
		)
		s.metrics.RecordFallback(EndpointNews, core.Reason(err))
		return []core.NewsItem{}
	}
	if items == nil {
		items = []core.NewsItem{}
	}
	return items
}

// VendorStatus reports the live session state for health checks.
func (s *Service) VendorStatus() string {
	if s.session == nil {
		return VendorDisabled
	}
	if c, ok := s.session.(interface{ Connected() bool }); ok && !c.Connected() {
		return VendorDisconnected
	}
	return VendorConnected
}

// Router returns the routing table in use.
func (s *Service) Router() *router.Router {
	return s.router
}

func (s *Service) vendorFailed(endpoint, symbol string, start time.Time, err error) {
	reason := core.Reason(err)
	s.metrics.RecordVendorCall(endpoint, "error", time.Since(start).Seconds())
	s.metrics.RecordFallback(endpoint, reason)
	s.logger.Warn("vendor call failed, serving fallback",
		zap.String("endpoint", endpoint),
		zap.String("symbol", symbol),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
