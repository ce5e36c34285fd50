package market

import (
	"github.com/newthinker/quotegate/internal/collector"
	"github.com/newthinker/quotegate/internal/core"
	"github.com/newthinker/quotegate/internal/router"
)

// invalidQuote answers input that cannot be looked up at all. No source
// produced it, so Source stays empty.
func invalidQuote(symbol string, decision router.Decision) core.Quote {
	if runes := []rune(symbol); len(runes) > MaxSymbolLength {
		symbol = string(runes[:MaxSymbolLength])
	}
	currency := core.CurrencyUSD
	if decision == router.Vendor {
		currency = core.CurrencyINR
	}
	return core.Quote{
		Symbol:   symbol,
		Currency: currency,
		Status:   core.StatusInvalidSymbol,
	}
}

// degradedQuote is the price-0 variant for a vendor-routed symbol.
func degradedQuote(symbol, status, errMsg string) core.Quote {
	return core.Quote{
		Symbol:   symbol,
		Currency: core.CurrencyINR,
		Source:   core.SourceVendor,
		Status:   status,
		Error:    errMsg,
	}
}

// quoteFromTick shapes a live tick into the quote schema. Fields the
// feed never sent read as zero.
func quoteFromTick(symbol string, t collector.Tick) core.Quote {
	q := core.Quote{
		Symbol:        symbol,
		Price:         t.Get(collector.FieldLTP),
		Change:        t.Get(collector.FieldChange),
		ChangePercent: t.Get(collector.FieldChangePercent),
		Volume:        int64(t.Get(collector.FieldVolume)),
		High:          t.Get(collector.FieldDayHigh),
		Low:           t.Get(collector.FieldDayLow),
		Currency:      core.CurrencyINR,
		Source:        core.SourceVendor,
	}
	for i := 0; i < core.BookDepth; i++ {
		n := i + 1
		q.OrderBook.Bids[i] = core.Level{Price: t.Get(collector.BidRate(n)), Qty: int64(t.Get(collector.BidQty(n)))}
		q.OrderBook.Asks[i] = core.Level{Price: t.Get(collector.AskRate(n)), Qty: int64(t.Get(collector.AskQty(n)))}
	}
	return q
}

// overlayFundamentals copies every field the vendor sent onto the
// default record. Absent fields keep their default.
func overlayFundamentals(base core.Fundamentals, info *collector.CompanyInfo) core.Fundamentals {
	f := base
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	set(&f.MarketCap, info.MarketCap)
	set(&f.PERatio, info.PE)
	set(&f.PEGRatio, info.PEG)
	set(&f.BookValue, info.BookValue)
	set(&f.DividendYield, info.DividendYield)
	set(&f.EPS, info.EPS)
	set(&f.ProfitMargin, info.ProfitMargin)
	set(&f.ROE, info.ROE)
	set(&f.DebtToEquity, info.DebtToEquity)

	if sh := info.Shareholding; sh != nil {
		set(&f.Shareholding.Promoters, sh.Promoters)
		set(&f.Shareholding.Institutions, sh.Institutions)
		set(&f.Shareholding.Public, sh.Public)
	}

	// a successful response without a recommendation means the vendor has none
	f.Forecast.Recommendation = core.RecommendationUnknown
	if info.Recommendation != nil && *info.Recommendation != "" {
		f.Forecast.Recommendation = *info.Recommendation
	}
	set(&f.Forecast.TargetMean, info.TargetPrice)
	set(&f.Forecast.TargetLow, info.TargetLow)
	set(&f.Forecast.TargetHigh, info.TargetHigh)

	f.Currency = core.CurrencyINR
	return f
}
