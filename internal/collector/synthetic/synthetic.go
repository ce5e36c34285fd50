// Package synthetic generates randomized market data for symbols the
// vendor does not cover. Values are random; shapes are fixed.
package synthetic

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/newthinker/quotegate/internal/core"
	"github.com/shopspring/decimal"
)

// Bands used by the generator
const (
	QuotePriceMin   = 100.0
	QuotePriceMax   = 3000.0
	QuoteChangeMin  = -5.0
	QuoteChangeMax  = 5.0
	QuotePercentMin = -1.0
	QuotePercentMax = 1.0

	HistoryLength    = 30
	DefaultBasePrice = 150.0
	StepVolatility   = 0.03
	VolumeMin        = 1000
	VolumeMax        = 10000
)

// Generator produces synthetic quotes and candle series.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a generator seeded from the wall clock
func New() *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewWithSource(rand.NewPCG(seed, seed>>1|1), time.Now)
}

// NewWithSource creates a generator with an explicit random source and clock
func NewWithSource(src rand.Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rand.New(src), now: now}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Quote returns an independent random quote for symbol
func (g *Generator) Quote(symbol string) core.Quote {
	g.mu.Lock()
	defer g.mu.Unlock()

	return core.Quote{
		Symbol:        symbol,
		Price:         g.uniform(QuotePriceMin, QuotePriceMax),
		Change:        g.uniform(QuoteChangeMin, QuoteChangeMax),
		ChangePercent: g.uniform(QuotePercentMin, QuotePercentMax),
		Currency:      core.CurrencyUSD,
		Source:        core.SourceMock,
	}
}

// History returns a 30-day daily random walk starting near basePrice,
// oldest first. Open, high and low are fixed offsets of close.
func (g *Generator) History(basePrice float64) []core.Candle {
	if basePrice <= 0 {
		basePrice = DefaultBasePrice
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	price := basePrice
	candles := make([]core.Candle, 0, HistoryLength)
	for i := 0; i < HistoryLength; i++ {
		day := now.AddDate(0, 0, -(HistoryLength - i))
		price = price * (1 + (g.rng.Float64()-0.5)*StepVolatility)
		candles = append(candles, core.Candle{
			Date:   day.Format("2006-01-02"),
			Open:   round2(price * 0.99),
			High:   round2(price * 1.01),
			Low:    round2(price * 0.98),
			Close:  round2(price),
			Volume: int64(g.uniform(VolumeMin, VolumeMax)),
		})
	}
	return candles
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
