package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/quotegate/internal/collector"
	"github.com/newthinker/quotegate/internal/collector/synthetic"
	"github.com/newthinker/quotegate/internal/collector/truedata"
	"github.com/newthinker/quotegate/internal/config"
	"github.com/newthinker/quotegate/internal/market"
	"github.com/newthinker/quotegate/internal/metrics"
	"github.com/newthinker/quotegate/internal/news"
	"github.com/newthinker/quotegate/internal/router"
	"go.uber.org/zap"
)

// Dialer opens the vendor live session
type Dialer func(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error)

func dialTrueData(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error) {
	s, err := truedata.Dial(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Option configures an App
type Option func(*App)

// WithDialer replaces the vendor session dialer
func WithDialer(d Dialer) Option {
	return func(a *App) {
		if d != nil {
			a.dial = d
		}
	}
}

// WithHTTPClient replaces the HTTP client used for vendor REST calls
func WithHTTPClient(c truedata.HTTPClient) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// App owns the process lifecycle: the vendor session is opened once in
// Start and released once in Close. Request handlers only borrow it.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	router     *router.Router
	metrics    *metrics.Registry
	dial       Dialer
	httpClient truedata.HTTPClient

	stop chan struct{} // closed by Close

	mu      sync.RWMutex
	session collector.Session
	service *market.Service
	started bool
	closed  bool
}

// New creates a new App instance
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		router: router.New(cfg.Routing.RouterConfig(), logger),
		dial:   dialTrueData,
		stop:   make(chan struct{}),
	}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start connects the vendor session and builds the market service.
// Missing credentials or a failed connection leave the vendor live path
// disabled; neither is a startup error.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app already started")
	}
	a.started = true

	deps := market.Dependencies{
		Router:    a.router,
		Synthetic: synthetic.New(),
		News:      a.newsProvider(),
		Metrics:   a.metrics,
	}

	vendor := a.cfg.Vendor
	if !vendor.Enabled() {
		a.logger.Warn("vendor credentials missing, serving mock and default data only")
	} else {
		opts := vendor.RESTOptions()
		if a.httpClient != nil {
			opts = append(opts, truedata.WithHTTPClient(a.httpClient))
		}
		client := truedata.NewClient(vendor.Credentials(), opts...)
		deps.History = client
		deps.Fundamentals = client

		a.logger.Info("connecting to vendor",
			zap.String("user", vendor.User),
			zap.Int("port", vendor.LivePort),
		)
		session, err := a.dial(ctx, vendor.LiveConfig(), a.logger)
		if err != nil {
			a.logger.Error("vendor connection failed, live quotes disabled", zap.Error(err))
		} else {
			a.session = session
			deps.Session = session
			if l, ok := session.(interface{ Lost() <-chan struct{} }); ok {
				go a.watchSession(l.Lost())
			}
		}
	}
	a.metrics.SetSessionUp(a.session != nil)

	a.service = market.New(market.Config{TickWait: vendor.TickWait}, deps, a.logger)
	return nil
}

// watchSession drops the session gauge when the vendor socket goes away
// on its own. Handlers see the same state through VendorStatus.
func (a *App) watchSession(lost <-chan struct{}) {
	select {
	case <-lost:
		a.logger.Warn("vendor session lost, live quotes unavailable until restart")
		a.metrics.SetSessionUp(false)
	case <-a.stop:
	}
}

func (a *App) newsProvider() news.Provider {
	if a.cfg.News.Provider == "scrape" {
		return news.NewChain(a.logger, news.NewScrapeProvider(a.cfg.News.ScrapeConfig()))
	}
	return news.NewStaticProvider()
}

// Service returns the market service, or nil before Start
func (a *App) Service() *market.Service {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.service
}

// Metrics returns the metrics registry, or nil when metrics are disabled
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Router returns the symbol router
func (a *App) Router() *router.Router {
	return a.router
}

// Close releases the vendor session. It is safe to call more than once.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	close(a.stop)

	if a.session == nil {
		return nil
	}
	a.logger.Info("disconnecting vendor session")
	err := a.session.Close()
	if err != nil {
		a.logger.Warn("vendor disconnect error", zap.Error(err))
	}
	a.metrics.SetSessionUp(false)
	return err
}

// GetStats returns application statistics
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	vendor := market.VendorDisabled
	if a.service != nil {
		vendor = a.service.VendorStatus()
	}
	return map[string]any{
		"started": a.started,
		"vendor":  vendor,
		"router":  a.router.GetStats(),
		"metrics": a.metrics != nil,
	}
}
