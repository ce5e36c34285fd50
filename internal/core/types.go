package core

// Currency codes attached to responses by routing decision.
const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

// Source tags identify where a quote came from.
const (
	SourceVendor = "TrueData"
	SourceMock   = "Mock (US)"
)

// Quote status sentinels for degraded responses.
const (
	StatusDisconnected  = "Disconnected"
	StatusInvalidSymbol = "Invalid Symbol"
	StatusWaitingTick   = "Waiting for tick..."
)

// BookDepth is the number of order book levels reported per side.
const BookDepth = 5

// Level is one order book level
type Level struct {
	Price float64 `json:"price"`
	Qty   int64   `json:"qty"`
}

// OrderBook holds a fixed-depth market depth snapshot.
// Levels the feed did not populate stay at zero.
type OrderBook struct {
	Bids [BookDepth]Level `json:"bids"`
	Asks [BookDepth]Level `json:"asks"`
}

// Quote represents a price snapshot or one of its degraded variants.
// Degraded variants carry Price 0 and either Status or Error.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	OrderBook     OrderBook `json:"orderbook"`
	Currency      string    `json:"currency"`
	Source        string    `json:"source"`
	Status        string    `json:"status,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// IsDegraded reports whether the quote is a status or error variant
func (q Quote) IsDegraded() bool {
	return q.Status != "" || q.Error != ""
}

// Candle represents one bar. Date is a calendar day for end-of-day
// series and a vendor timestamp for intraday ones.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Shareholding breaks ownership down by holder class, in percent.
type Shareholding struct {
	Promoters    float64 `json:"promoters"`
	Institutions float64 `json:"institutions"`
	Public       float64 `json:"public"`
}

// Forecast is the analyst consensus.
type Forecast struct {
	Recommendation string  `json:"recommendation"`
	TargetMean     float64 `json:"targetMean"`
	TargetLow      float64 `json:"targetLow"`
	TargetHigh     float64 `json:"targetHigh"`
}

// Recommendation sentinels
const (
	RecommendationWaiting = "WAITING"
	RecommendationUnknown = "N/A"
)

// Fundamentals is a fixed-shape research record. Unknown numbers are 0.
type Fundamentals struct {
	MarketCap     float64      `json:"market_cap"`
	PERatio       float64      `json:"pe_ratio"`
	PEGRatio      float64      `json:"peg_ratio"`
	BookValue     float64      `json:"book_value"`
	DividendYield float64      `json:"dividend_yield"`
	EPS           float64      `json:"eps"`
	ProfitMargin  float64      `json:"profit_margin"`
	ROE           float64      `json:"roe"`
	DebtToEquity  float64      `json:"debt_to_equity"`
	Shareholding  Shareholding `json:"shareholding"`
	Forecast      Forecast     `json:"forecast"`
	Currency      string       `json:"currency"`
}

// EmptyFundamentals returns the default record for the given currency.
func EmptyFundamentals(currency string) Fundamentals {
	return Fundamentals{
		Forecast: Forecast{Recommendation: RecommendationWaiting},
		Currency: currency,
	}
}

// NewsItem represents a headline about an instrument.
type NewsItem struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Sentiment string `json:"sentiment"`
	Link      string `json:"link"`
	Publisher string `json:"publisher"`
}
