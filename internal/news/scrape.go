package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/newthinker/quotegate/internal/core"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) quotegate"

// Selectors locate headline fields in a listing page.
// Title, Link and Date are evaluated relative to each Item match.
type Selectors struct {
	Item  string `mapstructure:"item"`
	Title string `mapstructure:"title"`
	Link  string `mapstructure:"link"`
	Date  string `mapstructure:"date"`
}

// ScrapeConfig configures a ScrapeProvider.
type ScrapeConfig struct {
	// URL may contain a {symbol} placeholder.
	URL       string
	Publisher string
	Selectors Selectors
	MaxItems  int
	Timeout   time.Duration
}

// ScrapeProvider reads headlines from an HTML listing page.
type ScrapeProvider struct {
	cfg    ScrapeConfig
	client *http.Client
}

// NewScrapeProvider creates a scrape provider.
func NewScrapeProvider(cfg ScrapeConfig) *ScrapeProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10
	}
	return &ScrapeProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchNews scrapes the configured page for symbol.
func (p *ScrapeProvider) FetchNews(ctx context.Context, symbol string) ([]core.NewsItem, error) {
	if p.cfg.URL == "" || p.cfg.Selectors.Item == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("news: scrape url and item selector are required"))
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	pageURL := strings.ReplaceAll(p.cfg.URL, "{symbol}", url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrVendorFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrVendorFailed, fmt.Errorf("news: fetch %s: %w", pageURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrVendorStatus, fmt.Errorf("news: status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrVendorPayload, fmt.Errorf("news: parse html: %w", err))
	}

	base, _ := url.Parse(pageURL)
	sel := p.cfg.Selectors
	var items []core.NewsItem

	doc.Find(sel.Item).EachWithBreak(func(i int, s *goquery.Selection) bool {
		title := strings.TrimSpace(pick(s, sel.Title).Text())
		if title == "" {
			return true
		}

		link := ""
		if a := pick(s, sel.Link); a.Length() > 0 {
			if href, ok := a.Attr("href"); ok {
				link = resolve(base, href)
			}
		}

		items = append(items, core.NewsItem{
			Title:     title,
			Date:      strings.TrimSpace(pick(s, sel.Date).Text()),
			Sentiment: SentimentNeutral,
			Link:      link,
			Publisher: p.cfg.Publisher,
		})
		return len(items) < p.cfg.MaxItems
	})

	return items, nil
}

// pick evaluates selector under s, or returns s itself for an empty selector.
func pick(s *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return s
	}
	return s.Find(selector).First()
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
