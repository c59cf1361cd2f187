package trader

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/courtline/courtline/internal/api"
	"github.com/courtline/courtline/internal/cache"
	"github.com/courtline/courtline/internal/discovery"
	"github.com/courtline/courtline/internal/model"
	"github.com/courtline/courtline/internal/value"
)

const (
	DefaultScanInterval = 60 * time.Second
	DefaultMinEdge      = 0.02
	DefaultMinEV        = 0.05
	DefaultMaxContracts = 10
)

// Order record statuses.
const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
	StatusDryRun    = "dry_run"
)

// Exchange is the slice of the venue client the trader needs.
type Exchange interface {
	GetPositions(ctx context.Context) ([]model.Position, error)
	SubmitOrder(ctx context.Context, ticker string, side model.Side, action string, count, price int) (*api.APIOrder, error)
	GetExchangeStatus(ctx context.Context) (*api.ExchangeStatusResponse, error)
}

// SnapshotSource is the read side of the market cache.
type SnapshotSource interface {
	Get() *cache.Snapshot
	Status() cache.Status
}

// Predictor supplies the modeled probability that the yes side of a
// contract resolves true.
type Predictor interface {
	Predict(ctx context.Context, mc model.MatchContext) (float64, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, mc model.MatchContext) (float64, error)

func (f PredictorFunc) Predict(ctx context.Context, mc model.MatchContext) (float64, error) {
	return f(ctx, mc)
}

// Recorder persists order records. Implementations must tolerate being
// called from the scan goroutine.
type Recorder interface {
	Record(ctx context.Context, rec OrderRecord) error
}

// OrderRecord is the trader's account of one order decision.
type OrderRecord struct {
	Ticker      string     `json:"ticker"`
	EventTicker string     `json:"event_ticker"`
	Side        model.Side `json:"side"`
	Count       int        `json:"count"`
	PriceCents  int        `json:"price_cents"`
	ModelProb   float64    `json:"model_prob"`
	ImpliedProb float64    `json:"implied_prob"`
	Edge        float64    `json:"edge"`
	EV          float64    `json:"ev"`
	Kelly       float64    `json:"kelly"`
	Status      string     `json:"status"`
	OrderID     string     `json:"order_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	At          time.Time  `json:"at"`
}

// Config controls scan cadence and order thresholds.
type Config struct {
	ScanInterval time.Duration
	MinEdge      float64
	MinEV        float64
	MinVolume    int64
	// MaxContracts caps position size; the Kelly fraction scales
	// within it.
	MaxContracts int
	KellyCeiling float64
	DryRun       bool
}

func (c *Config) applyDefaults() {
	if c.ScanInterval <= 0 {
		c.ScanInterval = DefaultScanInterval
	}
	if c.MinEdge <= 0 {
		c.MinEdge = DefaultMinEdge
	}
	if c.MinEV <= 0 {
		c.MinEV = DefaultMinEV
	}
	if c.MaxContracts <= 0 {
		c.MaxContracts = DefaultMaxContracts
	}
	if c.KellyCeiling <= 0 {
		c.KellyCeiling = value.DefaultKellyCeiling
	}
}

// AutoTrader runs the scan loop.
type AutoTrader struct {
	exchange  Exchange
	source    SnapshotSource
	predictor Predictor
	analyzer  *value.Analyzer
	recorder  Recorder
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	seenTickers map[string]struct{}
	seenEvents  map[string]struct{}
	records     []OrderRecord

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an AutoTrader.
type Option func(*AutoTrader)

func WithLogger(logger *slog.Logger) Option {
	return func(t *AutoTrader) { t.logger = logger }
}

// WithRecorder attaches an order journal.
func WithRecorder(r Recorder) Option {
	return func(t *AutoTrader) { t.recorder = r }
}

// WithClock overrides the trader's clock. Tests only.
func WithClock(now func() time.Time) Option {
	return func(t *AutoTrader) { t.now = now }
}

func New(exchange Exchange, source SnapshotSource, pred Predictor, cfg Config, opts ...Option) *AutoTrader {
	cfg.applyDefaults()
	t := &AutoTrader{
		exchange:    exchange,
		source:      source,
		predictor:   pred,
		analyzer:    value.NewAnalyzer(cfg.KellyCeiling),
		cfg:         cfg,
		logger:      slog.Default(),
		now:         time.Now,
		seenTickers: make(map[string]struct{}),
		seenEvents:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches the scan loop. It stops when ctx is cancelled or Stop
// is called.
func (t *AutoTrader) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.scanLoop(loopCtx)

	t.logger.Info("autotrader started",
		"interval", t.cfg.ScanInterval,
		"min_edge", t.cfg.MinEdge,
		"min_ev", t.cfg.MinEV,
		"dry_run", t.cfg.DryRun)
	return nil
}

// Stop halts the scan loop and waits for it to exit.
func (t *AutoTrader) Stop(ctx context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *AutoTrader) scanLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("scan loop stopped")
			return
		case <-ticker.C:
			if err := t.Scan(ctx); err != nil {
				t.logger.Error("scan failed", "error", err)
			}
		}
	}
}

// Records returns a copy of every order record so far, newest last.
func (t *AutoTrader) Records() []OrderRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]OrderRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Scan runs one pass over the current snapshot. Per-instrument failures
// are recorded and skipped; only snapshot- or portfolio-level problems
// abort the pass.
func (t *AutoTrader) Scan(ctx context.Context) error {
	st := t.source.Status()
	if st.Stale {
		t.logger.Warn("skipping scan on stale snapshot", "age_seconds", st.AgeSeconds)
		return nil
	}
	snap := t.source.Get()
	if snap == nil {
		return nil
	}

	if status, err := t.exchange.GetExchangeStatus(ctx); err != nil {
		t.logger.Warn("exchange status check failed", "error", err)
	} else if !status.TradingActive {
		t.logger.Warn("trading halted at venue, skipping scan")
		return nil
	}

	positions, err := t.exchange.GetPositions(ctx)
	if err != nil {
		return err
	}
	heldTickers := make(map[string]struct{}, len(positions))
	heldEvents := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		heldTickers[p.Ticker] = struct{}{}
		heldEvents[model.EventFromTicker(p.Ticker)] = struct{}{}
	}

	for _, in := range snap.Instruments {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.evaluate(ctx, in, heldTickers, heldEvents)
	}
	return nil
}

func (t *AutoTrader) evaluate(ctx context.Context, in model.Instrument, heldTickers, heldEvents map[string]struct{}) {
	if in.Volume < t.cfg.MinVolume {
		return
	}
	if t.guarded(in, heldTickers, heldEvents) {
		return
	}

	home, away, ok := discovery.ParseContest(in.Title)
	if !ok {
		return
	}
	mc := model.MatchContext{
		Ticker:      in.Ticker,
		EventTicker: in.EventTicker,
		Home:        home,
		Away:        away,
		CloseTime:   in.CloseTime,
	}

	prob, err := t.predictor.Predict(ctx, mc)
	if err != nil {
		t.logger.Warn("prediction failed", "ticker", in.Ticker, "error", err)
		return
	}

	op, ok := t.analyzer.Evaluate(in, prob)
	if !ok {
		return
	}
	if op.Edge < t.cfg.MinEdge || op.EV < t.cfg.MinEV || op.Kelly <= 0 {
		return
	}
	if op.AskCents <= 0 || op.AskCents >= 100 {
		t.logger.Debug("no executable ask", "ticker", in.Ticker)
		return
	}

	if !t.claim(in.Ticker, eventKey(in.Ticker, in.EventTicker)) {
		return
	}
	count := t.contractsFor(op.Kelly)
	t.place(ctx, op, count)
}

func eventKey(ticker, eventTicker string) string {
	if eventTicker != "" {
		return eventTicker
	}
	return model.EventFromTicker(ticker)
}

// guarded reports whether the instrument's market or event is already
// covered by a prior order or an open venue position.
func (t *AutoTrader) guarded(in model.Instrument, heldTickers, heldEvents map[string]struct{}) bool {
	event := eventKey(in.Ticker, in.EventTicker)
	if _, ok := heldTickers[in.Ticker]; ok {
		return true
	}
	if _, ok := heldEvents[event]; ok {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seenTickers[in.Ticker]; ok {
		return true
	}
	_, ok := t.seenEvents[event]
	return ok
}

// claim atomically marks a market and its event as taken. It returns
// false when another scan already claimed either, so concurrent scans
// cannot double-order one contest.
func (t *AutoTrader) claim(ticker, event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seenTickers[ticker]; ok {
		return false
	}
	if _, ok := t.seenEvents[event]; ok {
		return false
	}
	t.seenTickers[ticker] = struct{}{}
	t.seenEvents[event] = struct{}{}
	return true
}

// release undoes a claim after a failed submission so the next scan may
// retry.
func (t *AutoTrader) release(ticker, event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seenTickers, ticker)
	delete(t.seenEvents, event)
}

// contractsFor scales the position cap by how much of the Kelly ceiling
// the opportunity earns. Always at least one contract once thresholds
// pass.
func (t *AutoTrader) contractsFor(kelly float64) int {
	n := int(math.Round(float64(t.cfg.MaxContracts) * kelly / t.cfg.KellyCeiling))
	if n < 1 {
		n = 1
	}
	if n > t.cfg.MaxContracts {
		n = t.cfg.MaxContracts
	}
	return n
}

func (t *AutoTrader) place(ctx context.Context, op value.Opportunity, count int) {
	rec := OrderRecord{
		Ticker:      op.Ticker,
		EventTicker: op.EventTicker,
		Side:        op.Side,
		Count:       count,
		PriceCents:  op.AskCents,
		ModelProb:   op.ModelProb,
		ImpliedProb: op.ImpliedProb,
		Edge:        op.Edge,
		EV:          op.EV,
		Kelly:       op.Kelly,
		At:          t.now(),
	}

	if t.cfg.DryRun {
		rec.Status = StatusDryRun
		t.logger.Info("dry-run order",
			"ticker", op.Ticker, "side", op.Side, "count", count,
			"price", op.AskCents, "edge", op.Edge, "ev", op.EV)
		t.commit(ctx, rec)
		return
	}

	order, err := t.exchange.SubmitOrder(ctx, op.Ticker, op.Side, "buy", count, op.AskCents)
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		t.logger.Error("order submission failed",
			"ticker", op.Ticker, "side", op.Side, "error", err)
		t.release(op.Ticker, eventKey(op.Ticker, op.EventTicker))
		t.commit(ctx, rec)
		return
	}

	rec.Status = StatusSubmitted
	rec.OrderID = order.OrderID
	t.logger.Info("order submitted",
		"ticker", op.Ticker, "side", op.Side, "count", count,
		"price", op.AskCents, "order_id", order.OrderID)
	t.commit(ctx, rec)
}

func (t *AutoTrader) commit(ctx context.Context, rec OrderRecord) {
	t.mu.Lock()
	t.records = append(t.records, rec)
	t.mu.Unlock()

	if t.recorder != nil {
		if err := t.recorder.Record(ctx, rec); err != nil {
			t.logger.Warn("journal write failed", "ticker", rec.Ticker, "error", err)
		}
	}
}
