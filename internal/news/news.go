package news

import (
	"context"
	"fmt"

	"github.com/newthinker/quotegate/internal/core"
)

// Provider fetches headlines for a canonical symbol.
type Provider interface {
	FetchNews(ctx context.Context, symbol string) ([]core.NewsItem, error)
}

// Sentiment labels
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// StaticProvider returns a fixed set of headlines with the symbol
// interpolated into the titles. It never fails.
type StaticProvider struct{}

// NewStaticProvider creates the stub provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// FetchNews returns the stub headlines for symbol.
func (p *StaticProvider) FetchNews(ctx context.Context, symbol string) ([]core.NewsItem, error) {
	return []core.NewsItem{
		{
			Title:     fmt.Sprintf("Strong Q3 Performance reported by %s", symbol),
			Date:      "2024-10-15",
			Sentiment: SentimentPositive,
			Link:      "https://www.moneycontrol.com",
			Publisher: "TrueData News",
		},
		{
			Title:     "Analyst Call scheduled for next Tuesday",
			Date:      "2024-10-10",
			Sentiment: SentimentNeutral,
			Link:      "https://www.bloomberg.com",
			Publisher: "Bloomberg",
		},
		{
			Title:     fmt.Sprintf("New product line launch expected for %s", symbol),
			Date:      "2024-10-05",
			Sentiment: SentimentPositive,
			Link:      "https://economictimes.indiatimes.com",
			Publisher: "Economic Times",
		},
	}, nil
}
