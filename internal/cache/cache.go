package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtline/courtline/internal/api"
	"github.com/courtline/courtline/internal/discovery"
	"github.com/courtline/courtline/internal/model"
)

const (
	DefaultPollInterval = 12 * time.Second
	DefaultEnrichTop    = 25
	DefaultMaxStaleness = 60 * time.Second

	// enrichWorkers bounds concurrent orderbook fetches per cycle.
	enrichWorkers = 5
)

// MarketSource is the slice of the exchange client the cache needs.
type MarketSource interface {
	ListInstruments(ctx context.Context, seriesTicker, status string, limit int) ([]model.Instrument, error)
	SearchEvents(ctx context.Context, search, status string, limit int) ([]api.APIEvent, error)
	GetOrderbook(ctx context.Context, ticker string, depth int) (*api.OrderbookResponse, error)
}

// Config controls the poll loop.
type Config struct {
	PollInterval time.Duration
	Series       []string
	// EnrichTop is how many of the highest-volume survivors get
	// orderbook enrichment each cycle.
	EnrichTop int
	// MaxStaleness is the snapshot age beyond which Status reports
	// the cache as stale.
	MaxStaleness time.Duration
	// FallbackQuery is the free-text event search used when every
	// configured series comes back empty.
	FallbackQuery string
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if len(c.Series) == 0 {
		c.Series = discovery.DefaultConfig().Series
	}
	if c.EnrichTop <= 0 {
		c.EnrichTop = DefaultEnrichTop
	}
	if c.MaxStaleness <= 0 {
		c.MaxStaleness = DefaultMaxStaleness
	}
	if c.FallbackQuery == "" {
		c.FallbackQuery = "tennis"
	}
}

// Snapshot is one immutable refresh result. Fields are never mutated
// after publish.
type Snapshot struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	Instruments   []model.Instrument `json:"instruments"`
	TotalCount    int                `json:"total_count"`
	EnrichedCount int                `json:"enriched_count"`
	Rejects       map[string]int     `json:"rejects,omitempty"`
	ViaFallback   bool               `json:"via_fallback,omitempty"`
}

// Status is the cache health view served on /health. Status is "ok"
// while the snapshot is within the staleness bound, "stale" otherwise.
type Status struct {
	Status        string    `json:"status"`
	GeneratedAt   time.Time `json:"generated_at"`
	PollingActive bool      `json:"polling_active"`
	AgeSeconds    float64   `json:"age_seconds"`
	Stale         bool      `json:"stale"`
	TotalCount    int       `json:"total_count"`
	EnrichedCount int       `json:"enriched_count"`
}

// MarketCache polls the venue and publishes snapshots.
type MarketCache struct {
	source   MarketSource
	pipeline *discovery.Pipeline
	cfg      Config
	logger   *slog.Logger

	snapshot atomic.Pointer[Snapshot]
	polling  atomic.Bool
	now      func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a MarketCache.
type Option func(*MarketCache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *MarketCache) { c.logger = logger }
}

func WithPipeline(p *discovery.Pipeline) Option {
	return func(c *MarketCache) { c.pipeline = p }
}

// WithClock overrides the cache's clock. Tests only.
func WithClock(now func() time.Time) Option {
	return func(c *MarketCache) { c.now = now }
}

func New(source MarketSource, cfg Config, opts ...Option) *MarketCache {
	cfg.applyDefaults()
	c := &MarketCache{
		source: source,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pipeline == nil {
		c.pipeline = discovery.NewPipeline(discovery.DefaultConfig())
	}
	return c
}

// Start performs one synchronous refresh so callers begin with data,
// then launches the poll loop. The loop stops when ctx is cancelled or
// Stop is called.
func (c *MarketCache) Start(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial refresh failed, starting with empty cache", "error", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.polling.Store(true)

	c.wg.Add(1)
	go c.pollLoop(loopCtx)
	return nil
}

// Stop halts the poll loop and waits for it to exit, or returns the
// context error if it expires first.
func (c *MarketCache) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *MarketCache) pollLoop(ctx context.Context) {
	defer c.wg.Done()
	defer c.polling.Store(false)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("poll loop stopped")
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Error("refresh failed, keeping previous snapshot", "error", err)
			}
		}
	}
}

// Get returns the current snapshot, or nil before the first successful
// refresh.
func (c *MarketCache) Get() *Snapshot {
	return c.snapshot.Load()
}

// Status reports cache health derived from the current snapshot age.
func (c *MarketCache) Status() Status {
	st := Status{PollingActive: c.polling.Load()}
	snap := c.snapshot.Load()
	if snap == nil {
		st.Status = "stale"
		st.Stale = true
		return st
	}
	age := c.now().Sub(snap.GeneratedAt)
	st.GeneratedAt = snap.GeneratedAt
	st.AgeSeconds = age.Seconds()
	st.Stale = age > c.cfg.MaxStaleness
	st.Status = "ok"
	if st.Stale {
		st.Status = "stale"
	}
	st.TotalCount = snap.TotalCount
	st.EnrichedCount = snap.EnrichedCount
	return st
}

// Refresh runs one full fetch/filter/enrich cycle and publishes the
// result. On error the previous snapshot stays in place.
func (c *MarketCache) Refresh(ctx context.Context) error {
	started := c.now()

	candidates, err := c.fetchSeries(ctx)
	if err != nil {
		return err
	}

	viaFallback := false
	if len(candidates) == 0 {
		candidates, err = c.fetchFallback(ctx)
		if err != nil {
			return err
		}
		viaFallback = true
	}

	accepted, rejects := c.filter(candidates)
	enriched := c.enrich(ctx, accepted)

	snap := &Snapshot{
		GeneratedAt:   started,
		Instruments:   accepted,
		TotalCount:    len(accepted),
		EnrichedCount: enriched,
		Rejects:       rejects,
		ViaFallback:   viaFallback,
	}
	c.snapshot.Store(snap)

	c.logger.Info("snapshot published",
		"total", snap.TotalCount,
		"enriched", snap.EnrichedCount,
		"rejected", len(candidates)-len(accepted),
		"fallback", viaFallback,
		"elapsed", c.now().Sub(started))
	return nil
}

type candidate struct {
	event      model.Event
	instrument model.Instrument
}

func (c *MarketCache) fetchSeries(ctx context.Context) ([]candidate, error) {
	var (
		mu  sync.Mutex
		out []candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, series := range c.cfg.Series {
		g.Go(func() error {
			instruments, err := c.source.ListInstruments(gctx, series, "open", 0)
			if err != nil {
				return fmt.Errorf("list %s: %w", series, err)
			}
			mu.Lock()
			for _, in := range instruments {
				out = append(out, candidate{instrument: in})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchFallback flattens free-text event search results through the
// same candidate shape. Lower precision than the series path, used only
// when the series path yields nothing.
func (c *MarketCache) fetchFallback(ctx context.Context) ([]candidate, error) {
	c.logger.Warn("series discovery empty, falling back to event search", "query", c.cfg.FallbackQuery)
	events, err := c.source.SearchEvents(ctx, c.cfg.FallbackQuery, "open", 0)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	var out []candidate
	for _, e := range events {
		ev := e.ToEvent()
		for _, m := range e.Markets {
			out = append(out, candidate{event: ev, instrument: m.ToInstrument()})
		}
	}
	return out, nil
}

func (c *MarketCache) filter(candidates []candidate) ([]model.Instrument, map[string]int) {
	var accepted []model.Instrument
	rejects := make(map[string]int)
	for _, cand := range candidates {
		if reason := c.pipeline.Evaluate(cand.event, cand.instrument); reason != "" {
			rejects[reason]++
			continue
		}
		accepted = append(accepted, cand.instrument)
	}
	return accepted, rejects
}

// enrich replaces venue-reported quotes with orderbook-derived best
// prices for the top instruments by volume. Mutates accepted in place
// before the snapshot is published; returns how many were enriched.
func (c *MarketCache) enrich(ctx context.Context, accepted []model.Instrument) int {
	if len(accepted) == 0 {
		return 0
	}

	order := make([]int, len(accepted))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return accepted[order[a]].Volume > accepted[order[b]].Volume
	})
	if len(order) > c.cfg.EnrichTop {
		order = order[:c.cfg.EnrichTop]
	}

	var enriched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)
	for _, idx := range order {
		g.Go(func() error {
			in := &accepted[idx]
			resp, err := c.source.GetOrderbook(gctx, in.Ticker, 0)
			if err != nil {
				c.logger.Debug("orderbook fetch failed", "ticker", in.Ticker, "error", err)
				return nil
			}
			yesBid, yesAsk, noBid, noAsk := resp.Orderbook.BestPrices()
			if yesBid > 0 {
				in.YesBid = yesBid
			}
			if yesAsk > 0 {
				in.YesAsk = yesAsk
			}
			if noBid > 0 {
				in.NoBid = noBid
			}
			if noAsk > 0 {
				in.NoAsk = noAsk
			}
			in.Enriched = true
			enriched.Add(1)
			return nil
		})
	}
	g.Wait()
	return int(enriched.Load())
}
