package router

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Decision names the data source that serves a symbol
type Decision string

const (
	Vendor Decision = "VENDOR"
	Mock   Decision = "MOCK"
)

// Alias maps an external index name to the vendor's native symbol
type Alias struct {
	Symbol    string `mapstructure:"symbol"`
	Canonical string `mapstructure:"canonical"`
}

// Config holds router configuration
type Config struct {
	Suffixes []string `mapstructure:"suffixes"`
	Aliases  []Alias  `mapstructure:"aliases"`
}

// DefaultConfig returns the NSE/BSE routing table
func DefaultConfig() Config {
	return Config{
		Suffixes: []string{".NS", ".BO"},
		Aliases: []Alias{
			{Symbol: "^NSEI", Canonical: "NIFTY 50"},
			{Symbol: "^BSESN", Canonical: "SENSEX"},
			{Symbol: "NIFTY_50", Canonical: "NIFTY 50"},
			{Symbol: "NIFTY_BANK", Canonical: "BANKNIFTY"},
		},
	}
}

// Router decides per symbol whether the vendor or the mock generator
// answers, and rewrites the symbol into the vendor's form.
// It is immutable after New and safe for concurrent use.
type Router struct {
	suffixes []string // longest first
	aliases  map[string]string
	logger   *zap.Logger
}

// New creates a new symbol router
func New(cfg Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	suffixes := make([]string, 0, len(cfg.Suffixes))
	for _, s := range cfg.Suffixes {
		if s != "" {
			suffixes = append(suffixes, s)
		}
	}
	sort.SliceStable(suffixes, func(i, j int) bool {
		return len(suffixes[i]) > len(suffixes[j])
	})

	aliases := make(map[string]string, len(cfg.Aliases))
	for _, a := range cfg.Aliases {
		if _, dup := aliases[a.Symbol]; dup {
			logger.Warn("duplicate routing alias, keeping first",
				zap.String("symbol", a.Symbol),
			)
			continue
		}
		aliases[a.Symbol] = a.Canonical
	}

	return &Router{
		suffixes: suffixes,
		aliases:  aliases,
		logger:   logger,
	}
}

// Route returns the routing decision and canonical symbol for an
// external symbol. It never fails; the empty string routes to Mock.
// Exactly one trailing suffix is removed, so "X.BO.NS" becomes "X.BO".
func (r *Router) Route(symbol string) (Decision, string) {
	if canonical, ok := r.aliases[symbol]; ok {
		return Vendor, canonical
	}
	if sfx, ok := r.matchSuffix(symbol); ok {
		return Vendor, strings.TrimSuffix(symbol, sfx)
	}
	return Mock, symbol
}

// IsVendor reports whether the symbol is served by the vendor
func (r *Router) IsVendor(symbol string) bool {
	d, _ := r.Route(symbol)
	return d == Vendor
}

// Canonical returns the vendor-native form of symbol
func (r *Router) Canonical(symbol string) string {
	_, c := r.Route(symbol)
	return c
}

// StripSuffix removes one configured exchange suffix from the end of
// symbol. The result is not re-checked against the other suffixes.
func (r *Router) StripSuffix(symbol string) string {
	if sfx, ok := r.matchSuffix(symbol); ok {
		return strings.TrimSuffix(symbol, sfx)
	}
	return symbol
}

func (r *Router) matchSuffix(symbol string) (string, bool) {
	for _, sfx := range r.suffixes {
		if strings.HasSuffix(symbol, sfx) {
			return sfx, true
		}
	}
	return "", false
}

// GetStats returns router statistics
func (r *Router) GetStats() map[string]any {
	return map[string]any{
		"suffixes": r.suffixes,
		"aliases":  len(r.aliases),
	}
}
