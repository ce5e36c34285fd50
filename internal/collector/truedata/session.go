package truedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/newthinker/quotegate/internal/collector"
	"github.com/newthinker/quotegate/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Credentials authenticate against the vendor
type Credentials struct {
	User     string
	Password string
}

// Valid reports whether a user name is configured
func (c Credentials) Valid() bool {
	return c.User != ""
}

// LiveConfig holds live session settings
type LiveConfig struct {
	URL              string
	Port             int
	Credentials      Credentials
	DialTimeout      time.Duration
	SubscribeTimeout time.Duration
}

// DefaultLiveConfig returns the equity/indices push endpoint settings
func DefaultLiveConfig() LiveConfig {
	return LiveConfig{
		URL:              "wss://push.truedata.in",
		Port:             8086,
		DialTimeout:      10 * time.Second,
		SubscribeTimeout: 3 * time.Second,
	}
}

type loginFrame struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type subscribeReply struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	SymbolList [][]any `json:"symbollist"`
}

// Session is a live WebSocket connection to the vendor push service.
// Ticks are cached per request id by a background reader.
type Session struct {
	conn    *websocket.Conn
	cfg     LiveConfig
	logger  *zap.Logger
	writeMu sync.Mutex

	subMu   sync.Mutex // one addsymbol in flight
	replies chan subscribeReply
	group   singleflight.Group

	mu    sync.RWMutex
	ids   map[string]string // symbol -> request id
	ticks map[string]collector.Tick

	done      chan struct{} // closed by Close
	lost      chan struct{} // closed when the reader exits
	closeOnce sync.Once
	closed    bool
}

// Dial connects and logs in to the push service
func Dial(ctx context.Context, cfg LiveConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Credentials.Valid() {
		return nil, core.WrapError(core.ErrConfigMissing, errors.New("truedata: user is required"))
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultLiveConfig().DialTimeout
	}
	if cfg.SubscribeTimeout <= 0 {
		cfg.SubscribeTimeout = DefaultLiveConfig().SubscribeTimeout
	}

	endpoint, err := liveURL(cfg)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, _, err := dialer.DialContext(dialCtx, endpoint, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrVendorFailed, fmt.Errorf("dial: %w", err))
	}

	conn.SetReadDeadline(time.Now().Add(cfg.DialTimeout))
	var login loginFrame
	if err := conn.ReadJSON(&login); err != nil {
		conn.Close()
		return nil, core.WrapError(core.ErrVendorFailed, fmt.Errorf("reading login frame: %w", err))
	}
	if !login.Success {
		conn.Close()
		return nil, core.WrapError(core.ErrVendorFailed, fmt.Errorf("login rejected: %s", login.Message))
	}
	conn.SetReadDeadline(time.Time{})

	s := &Session{
		conn:    conn,
		cfg:     cfg,
		logger:  logger,
		replies: make(chan subscribeReply, 1),
		ids:     make(map[string]string),
		ticks:   make(map[string]collector.Tick),
		done:    make(chan struct{}),
		lost:    make(chan struct{}),
	}
	go s.readLoop()

	logger.Info("truedata session established",
		zap.String("user", cfg.Credentials.User),
		zap.Int("port", cfg.Port),
		zap.String("message", login.Message),
	)
	return s, nil
}

func liveURL(cfg LiveConfig) (string, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parsing live url: %w", err)
	}
	if cfg.Port > 0 && u.Port() == "" {
		u.Host = fmt.Sprintf("%s:%d", u.Hostname(), cfg.Port)
	}
	q := u.Query()
	q.Set("user", cfg.Credentials.User)
	q.Set("password", cfg.Credentials.Password)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Subscribe returns request ids for the symbols the vendor accepted,
// in request order. Known symbols are answered from the local table.
func (s *Session) Subscribe(ctx context.Context, symbols []string) ([]string, error) {
	if s.isClosed() {
		return nil, core.ErrVendorDisconnected
	}

	missing := s.unknown(symbols)
	if len(missing) > 0 {
		key := strings.Join(missing, "\x00")
		_, err, _ := s.group.Do(key, func() (any, error) {
			return nil, s.addSymbols(ctx, missing)
		})
		if err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if id, ok := s.ids[sym]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Session) unknown(symbols []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, sym := range symbols {
		if _, ok := s.ids[sym]; !ok && sym != "" {
			missing = append(missing, sym)
		}
	}
	return missing
}

func (s *Session) addSymbols(ctx context.Context, symbols []string) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	// drop a stale reply left by an earlier timed-out request
	select {
	case <-s.replies:
	default:
	}

	if err := s.writeJSON(map[string]any{"method": "addsymbol", "symbols": symbols}); err != nil {
		return core.WrapError(core.ErrVendorFailed, fmt.Errorf("addsymbol: %w", err))
	}

	timer := time.NewTimer(s.cfg.SubscribeTimeout)
	defer timer.Stop()

	select {
	case reply := <-s.replies:
		s.recordSymbols(reply)
		if !reply.Success {
			s.logger.Debug("addsymbol rejected",
				zap.Strings("symbols", symbols),
				zap.String("message", reply.Message),
			)
		}
		return nil
	case <-timer.C:
		return core.WrapError(core.ErrVendorTimeout, errors.New("addsymbol reply"))
	case <-ctx.Done():
		return core.WrapError(core.ErrVendorTimeout, ctx.Err())
	case <-s.done:
		return core.ErrVendorDisconnected
	case <-s.lost:
		return core.ErrVendorDisconnected
	}
}

func (s *Session) recordSymbols(reply subscribeReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range reply.SymbolList {
		if len(row) < 2 {
			continue
		}
		sym, id := toString(row[0]), toString(row[1])
		if sym == "" || id == "" {
			continue
		}
		s.ids[sym] = id
	}
}

// LatestTick returns the cached tick for a request id
func (s *Session) LatestTick(id string) (collector.Tick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.ticks[id]
	return t, ok
}

// Lost is closed once the reader stops, whether the vendor dropped the
// socket or Close was called.
func (s *Session) Lost() <-chan struct{} {
	return s.lost
}

// Connected reports whether the socket is still open
func (s *Session) Connected() bool {
	return !s.isClosed()
}

// Close releases the connection. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()

		err = s.conn.Close()
		close(s.done)
		s.logger.Info("truedata session closed")
	})
	return err
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.SubscribeTimeout))
	return s.conn.WriteJSON(v)
}

func (s *Session) readLoop() {
	defer close(s.lost)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isClosed() {
				s.logger.Warn("truedata session lost", zap.Error(err))
			}
			s.markClosed()
			return
		}
		s.dispatch(data)
	}
}

// markClosed flags the session dead after the reader exits so that
// Subscribe fails fast. Close still owns releasing the socket.
func (s *Session) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) dispatch(data []byte) {
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Debug("ignoring non-object frame", zap.Int("bytes", len(data)))
		return
	}

	switch {
	case frame["trade"] != nil:
		s.applyFields(frame["trade"], parseTrade)
	case frame["bidaskl2"] != nil:
		s.applyFields(frame["bidaskl2"], parseDepth)
	case frame["bidask"] != nil:
		s.applyFields(frame["bidask"], parseBidAsk)
	case frame["symbollist"] != nil || isRejection(frame):
		var reply subscribeReply
		if err := json.Unmarshal(data, &reply); err != nil {
			s.logger.Debug("malformed subscribe reply", zap.Error(err))
			return
		}
		select {
		case s.replies <- reply:
		default:
		}
	}
}

func isRejection(frame map[string]json.RawMessage) bool {
	raw, ok := frame["success"]
	return ok && string(raw) == "false"
}

func (s *Session) applyFields(raw json.RawMessage, parse func([]any) (string, map[collector.Field]float64, bool)) {
	var row []any
	if err := json.Unmarshal(raw, &row); err != nil {
		return
	}
	id, fields, ok := parse(row)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[id] = s.ticks[id].Merge(fields, time.Now())
}

// trade: [id, ts, ltp, ltq, atp, volume, open, high, low, prev_close, ...,
// bid(15), bid_qty(16), ask(17), ask_qty(18)]
func parseTrade(row []any) (string, map[collector.Field]float64, bool) {
	if len(row) < 3 {
		return "", nil, false
	}
	id := toString(row[0])
	fields := make(map[collector.Field]float64)

	set := func(idx int, f collector.Field) {
		if idx < len(row) {
			if v, ok := toFloat(row[idx]); ok {
				fields[f] = v
			}
		}
	}
	set(2, collector.FieldLTP)
	set(5, collector.FieldVolume)
	set(7, collector.FieldDayHigh)
	set(8, collector.FieldDayLow)
	set(9, collector.FieldPrevClose)
	set(15, collector.BidRate(1))
	set(16, collector.BidQty(1))
	set(17, collector.AskRate(1))
	set(18, collector.AskQty(1))

	ltp, hasLTP := fields[collector.FieldLTP]
	prev, hasPrev := fields[collector.FieldPrevClose]
	if hasLTP && hasPrev && prev > 0 {
		fields[collector.FieldChange] = ltp - prev
		fields[collector.FieldChangePercent] = (ltp - prev) / prev * 100
	}
	return id, fields, id != ""
}

// bidask: [id, ts, bid, bid_qty, ask, ask_qty]
func parseBidAsk(row []any) (string, map[collector.Field]float64, bool) {
	if len(row) < 6 {
		return "", nil, false
	}
	id := toString(row[0])
	fields := make(map[collector.Field]float64)
	pairs := []struct {
		idx int
		f   collector.Field
	}{
		{2, collector.BidRate(1)}, {3, collector.BidQty(1)},
		{4, collector.AskRate(1)}, {5, collector.AskQty(1)},
	}
	for _, p := range pairs {
		if v, ok := toFloat(row[p.idx]); ok {
			fields[p.f] = v
		}
	}
	return id, fields, id != ""
}

// bidaskl2: [id, ts, [[rate, qty, orders], ...], [[rate, qty, orders], ...]]
func parseDepth(row []any) (string, map[collector.Field]float64, bool) {
	if len(row) < 4 {
		return "", nil, false
	}
	id := toString(row[0])
	fields := make(map[collector.Field]float64)

	side := func(levels any, rate, qty func(int) collector.Field) {
		list, ok := levels.([]any)
		if !ok {
			return
		}
		for i, lvl := range list {
			if i >= core.BookDepth {
				break
			}
			pair, ok := lvl.([]any)
			if !ok || len(pair) < 2 {
				continue
			}
			if v, ok := toFloat(pair[0]); ok {
				fields[rate(i+1)] = v
			}
			if v, ok := toFloat(pair[1]); ok {
				fields[qty(i+1)] = v
			}
		}
	}
	side(row[2], collector.BidRate, collector.BidQty)
	side(row[3], collector.AskRate, collector.AskQty)
	return id, fields, id != ""
}
