package synthetic

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/quotegate/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 10, 15, 10, 0, 0, 0, time.UTC)
}

func TestGenerator_QuoteWithinBands(t *testing.T) {
	g := New()

	for i := 0; i < 200; i++ {
		q := g.Quote("AAPL")

		assert.Equal(t, "AAPL", q.Symbol)
		assert.GreaterOrEqual(t, q.Price, QuotePriceMin)
		assert.Less(t, q.Price, QuotePriceMax)
		assert.GreaterOrEqual(t, q.Change, QuoteChangeMin)
		assert.Less(t, q.Change, QuoteChangeMax)
		assert.GreaterOrEqual(t, q.ChangePercent, QuotePercentMin)
		assert.Less(t, q.ChangePercent, QuotePercentMax)
		assert.Equal(t, core.CurrencyUSD, q.Currency)
		assert.Equal(t, core.SourceMock, q.Source)
		assert.False(t, q.IsDegraded())
	}
}

func TestGenerator_QuotesAreIndependent(t *testing.T) {
	g := New()

	first := g.Quote("MSFT")
	distinct := false
	for i := 0; i < 10; i++ {
		if g.Quote("MSFT").Price != first.Price {
			distinct = true
			break
		}
	}
	assert.True(t, distinct, "expected fresh samples per call")
}

func TestGenerator_HistoryShape(t *testing.T) {
	g := NewWithSource(rand.NewPCG(1, 2), fixedClock)

	candles := g.History(DefaultBasePrice)
	require.Len(t, candles, HistoryLength)

	var prev time.Time
	for i, c := range candles {
		day, err := time.Parse("2006-01-02", c.Date)
		require.NoError(t, err)
		if i > 0 {
			assert.True(t, day.After(prev), "dates must ascend: %s after %s", c.Date, prev)
		}
		prev = day

		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.LessOrEqual(t, c.Open, c.High)
		assert.LessOrEqual(t, c.Close, c.High)
		assert.GreaterOrEqual(t, c.Volume, int64(VolumeMin))
		assert.Less(t, c.Volume, int64(VolumeMax))
	}

	assert.Equal(t, "2024-09-15", candles[0].Date)
	assert.Equal(t, "2024-10-14", candles[HistoryLength-1].Date)
}

func TestGenerator_HistoryRoundsToCents(t *testing.T) {
	g := NewWithSource(rand.NewPCG(7, 9), fixedClock)

	for _, c := range g.History(DefaultBasePrice) {
		for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
			assert.InDelta(t, v, float64(int64(v*100+0.5))/100, 1e-9)
		}
	}
}

func TestGenerator_HistoryStaysNearBase(t *testing.T) {
	g := NewWithSource(rand.NewPCG(3, 4), fixedClock)

	// 30 steps of at most 1.5% each
	for _, c := range g.History(100) {
		assert.Greater(t, c.Close, 100*0.6)
		assert.Less(t, c.Close, 100*1.6)
	}
}

func TestGenerator_NonPositiveBaseUsesDefault(t *testing.T) {
	g := NewWithSource(rand.NewPCG(5, 6), fixedClock)

	candles := g.History(0)
	require.Len(t, candles, HistoryLength)
	assert.InDelta(t, DefaultBasePrice, candles[0].Close, DefaultBasePrice*0.02)
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.Quote("AAPL")
				g.History(DefaultBasePrice)
			}
		}()
	}
	wg.Wait()
}
