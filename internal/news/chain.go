package news

import (
	"context"

	"github.com/newthinker/quotegate/internal/core"
	"go.uber.org/zap"
)

// Chain tries providers in order. The first provider that succeeds with
// at least one item wins.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain creates a chain over providers. A StaticProvider is appended
// when the list does not already end with one, so the chain always answers.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	var list []Provider
	for _, p := range providers {
		if p != nil {
			list = append(list, p)
		}
	}
	if len(list) == 0 {
		list = append(list, NewStaticProvider())
	} else if _, ok := list[len(list)-1].(*StaticProvider); !ok {
		list = append(list, NewStaticProvider())
	}
	return &Chain{providers: list, logger: logger}
}

// FetchNews returns the first non-empty result.
func (c *Chain) FetchNews(ctx context.Context, symbol string) ([]core.NewsItem, error) {
	var lastErr error
	for i, p := range c.providers {
		items, err := p.FetchNews(ctx, symbol)
		if err != nil {
			c.logger.Warn("news provider failed",
				zap.Int("provider", i),
				zap.String("symbol", symbol),
				zap.String("reason", core.Reason(err)),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return []core.NewsItem{}, nil
}
