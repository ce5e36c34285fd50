package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/newthinker/quotegate/internal/api/response"
	"github.com/newthinker/quotegate/internal/core"
	"go.uber.org/zap"
)

// MarketService defines the interface needed from market.Service.
type MarketService interface {
	Quote(ctx context.Context, symbol string) core.Quote
	History(ctx context.Context, symbol, period string) []core.Candle
	Fundamentals(ctx context.Context, symbol string) core.Fundamentals
	News(ctx context.Context, symbol string) []core.NewsItem
}

// SymbolQuery is the query string of /fundamentals and /news.
type SymbolQuery struct {
	Symbol string `validate:"required,max=64"`
}

// HistoryQuery is the query string of /history. Period is free-form;
// values the service does not recognise select the default window.
type HistoryQuery struct {
	Symbol string `validate:"required,max=64"`
	Period string `default:"1mo"`
}

// MarketHandler serves the market data endpoints.
type MarketHandler struct {
	svc      MarketService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(svc MarketService, logger *zap.Logger) *MarketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Quote handles GET /quote?symbol=
// The symbol is not validated here: an unusable one still answers 200
// with an "Invalid Symbol" quote built by the service.
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	response.JSON(w, http.StatusOK, h.svc.Quote(r.Context(), symbol))
}

// History handles GET /history?symbol=&period=
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := HistoryQuery{
		Symbol: strings.TrimSpace(params.Get("symbol")),
		Period: strings.TrimSpace(params.Get("period")),
	}
	if err := defaults.Set(&q); err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	if err := h.validate.StructCtx(r.Context(), q); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidRequest, err))
		return
	}
	response.JSON(w, http.StatusOK, h.svc.History(r.Context(), q.Symbol, q.Period))
}

// Fundamentals handles GET /fundamentals?symbol=
func (h *MarketHandler) Fundamentals(w http.ResponseWriter, r *http.Request) {
	q, ok := h.symbolQuery(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, h.svc.Fundamentals(r.Context(), q.Symbol))
}

// News handles GET /news?symbol=
func (h *MarketHandler) News(w http.ResponseWriter, r *http.Request) {
	q, ok := h.symbolQuery(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, h.svc.News(r.Context(), q.Symbol))
}

func (h *MarketHandler) symbolQuery(w http.ResponseWriter, r *http.Request) (SymbolQuery, bool) {
	q := SymbolQuery{Symbol: strings.TrimSpace(r.URL.Query().Get("symbol"))}
	if err := h.validate.StructCtx(r.Context(), q); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrInvalidRequest, err))
		return q, false
	}
	return q, true
}
