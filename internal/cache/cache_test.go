package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/courtline/courtline/internal/api"
	"github.com/courtline/courtline/internal/discovery"
	"github.com/courtline/courtline/internal/model"
)

type fakeSource struct {
	mu          sync.Mutex
	instruments map[string][]model.Instrument
	events      []api.APIEvent
	orderbooks  map[string]api.APIOrderbook
	listErr     error

	listCalls   int
	searchCalls int
	bookCalls   int
}

func (f *fakeSource) ListInstruments(_ context.Context, series, _ string, _ int) ([]model.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.instruments[series], nil
}

func (f *fakeSource) SearchEvents(_ context.Context, _, _ string, _ int) ([]api.APIEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.events, nil
}

func (f *fakeSource) GetOrderbook(_ context.Context, ticker string, _ int) (*api.OrderbookResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookCalls++
	ob, ok := f.orderbooks[ticker]
	if !ok {
		return nil, errors.New("no book")
	}
	return &api.OrderbookResponse{Orderbook: ob}, nil
}

var testNow = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

func testInstrument(ticker string, volume int64) model.Instrument {
	return model.Instrument{
		Ticker:       ticker,
		EventTicker:  model.EventFromTicker(ticker),
		SeriesTicker: model.SeriesFromTicker(ticker),
		Title:        "Navone vs Thompson",
		Status:       "open",
		YesBid:       44,
		YesAsk:       48,
		NoBid:        52,
		NoAsk:        56,
		Volume:       volume,
		CloseTime:    testNow.Add(24 * time.Hour),
	}
}

func newTestCache(src MarketSource, cfg Config) *MarketCache {
	dcfg := discovery.DefaultConfig()
	dcfg.Now = func() time.Time { return testNow }
	return New(src, cfg,
		WithPipeline(discovery.NewPipeline(dcfg)),
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
}

func TestRefresh_PublishesSnapshot(t *testing.T) {
	src := &fakeSource{
		instruments: map[string][]model.Instrument{
			"KXATPMATCH": {
				testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500),
				testInstrument("KXATPMATCH-26JAN03ALCSIN-ALC", 900),
			},
		},
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH", "KXWTAMATCH"}})

	if c.Get() != nil {
		t.Fatal("snapshot should be nil before first refresh")
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Get()
	if snap == nil {
		t.Fatal("snapshot not published")
	}
	if snap.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", snap.TotalCount)
	}
	if snap.ViaFallback {
		t.Error("ViaFallback should be false on the series path")
	}
	if src.searchCalls != 0 {
		t.Errorf("searchCalls = %d, want 0", src.searchCalls)
	}
}

func TestRefresh_FilterRejects(t *testing.T) {
	closed := testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500)
	closed.Status = "closed"
	stale := testInstrument("KXATPMATCH-26JAN03ALCSIN-ALC", 900)
	stale.CloseTime = testNow.Add(-time.Hour)

	src := &fakeSource{
		instruments: map[string][]model.Instrument{
			"KXATPMATCH": {
				closed,
				stale,
				testInstrument("KXATPMATCH-26JAN04SABGAU-SAB", 100),
			},
		},
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH"}})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Get()
	if snap.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", snap.TotalCount)
	}
	if snap.Rejects[discovery.ReasonStatus] != 1 {
		t.Errorf("status rejects = %d, want 1", snap.Rejects[discovery.ReasonStatus])
	}
	if snap.Rejects[discovery.ReasonHorizon] != 1 {
		t.Errorf("horizon rejects = %d, want 1", snap.Rejects[discovery.ReasonHorizon])
	}
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{
		instruments: map[string][]model.Instrument{
			"KXATPMATCH": {testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500)},
		},
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH"}})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	first := c.Get()

	src.mu.Lock()
	src.listErr = errors.New("venue down")
	src.mu.Unlock()

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := c.Get(); got != first {
		t.Error("failed refresh must not replace the previous snapshot")
	}
}

func TestStatus_Staleness(t *testing.T) {
	src := &fakeSource{
		instruments: map[string][]model.Instrument{
			"KXATPMATCH": {testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500)},
		},
	}
	clock := testNow
	dcfg := discovery.DefaultConfig()
	dcfg.Now = func() time.Time { return testNow }
	c := New(src, Config{Series: []string{"KXATPMATCH"}, MaxStaleness: 60 * time.Second},
		WithPipeline(discovery.NewPipeline(dcfg)),
		WithClock(func() time.Time { return clock }),
		WithLogger(slog.New(slog.DiscardHandler)),
	)

	st := c.Status()
	if !st.Stale || st.Status != "stale" {
		t.Errorf("empty cache: Stale=%v Status=%q, want stale", st.Stale, st.Status)
	}

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	st = c.Status()
	if st.Stale || st.AgeSeconds != 0 {
		t.Errorf("fresh snapshot: Stale=%v AgeSeconds=%v", st.Stale, st.AgeSeconds)
	}
	if st.Status != "ok" {
		t.Errorf("fresh snapshot: Status = %q, want ok", st.Status)
	}
	if !st.GeneratedAt.Equal(testNow) {
		t.Errorf("GeneratedAt = %v, want %v", st.GeneratedAt, testNow)
	}

	clock = testNow.Add(90 * time.Second)
	st = c.Status()
	if !st.Stale || st.Status != "stale" {
		t.Errorf("old snapshot: Stale=%v Status=%q, want stale", st.Stale, st.Status)
	}
	if st.AgeSeconds != 90 {
		t.Errorf("AgeSeconds = %v, want 90", st.AgeSeconds)
	}
}

func TestRefresh_FallbackWhenSeriesEmpty(t *testing.T) {
	in := testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500)
	src := &fakeSource{
		instruments: map[string][]model.Instrument{},
		events: []api.APIEvent{
			{
				EventTicker: "KXATPMATCH-26JAN03NAVTHO",
				Title:       "ATP Auckland: Navone vs Thompson",
				Markets: []api.APIMarket{
					{
						Ticker:    in.Ticker,
						Title:     in.Title,
						Status:    "open",
						YesBid:    44,
						YesAsk:    48,
						NoBid:     52,
						NoAsk:     56,
						Volume:    500,
						CloseTime: "2026-01-04T12:00:00Z",
					},
				},
			},
		},
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH"}})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Get()
	if !snap.ViaFallback {
		t.Error("ViaFallback should be set")
	}
	if snap.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", snap.TotalCount)
	}
	if src.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1", src.searchCalls)
	}
}

func TestRefresh_EnrichesTopByVolume(t *testing.T) {
	instruments := make([]model.Instrument, 0, 4)
	books := map[string]api.APIOrderbook{}
	for i := range 4 {
		ticker := fmt.Sprintf("KXATPMATCH-26JAN0%d-A", i+1)
		instruments = append(instruments, testInstrument(ticker, int64(100*(i+1))))
		books[ticker] = api.APIOrderbook{
			Yes: [][]int{{40 + i, 10}},
			No:  [][]int{{50 - i, 10}},
		}
	}
	src := &fakeSource{
		instruments: map[string][]model.Instrument{"KXATPMATCH": instruments},
		orderbooks:  books,
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH"}, EnrichTop: 2})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Get()
	if snap.EnrichedCount != 2 {
		t.Fatalf("EnrichedCount = %d, want 2", snap.EnrichedCount)
	}
	if src.bookCalls != 2 {
		t.Errorf("bookCalls = %d, want 2", src.bookCalls)
	}
	for _, in := range snap.Instruments {
		if in.Volume >= 300 && !in.Enriched {
			t.Errorf("%s (volume %d) should be enriched", in.Ticker, in.Volume)
		}
		if in.Volume < 300 && in.Enriched {
			t.Errorf("%s (volume %d) should not be enriched", in.Ticker, in.Volume)
		}
	}
}

func TestGet_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	src := &fakeSource{
		instruments: map[string][]model.Instrument{
			"KXATPMATCH": {testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500)},
		},
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH"}})

	done := make(chan struct{})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := c.Get()
				if snap == nil {
					continue
				}
				if len(snap.Instruments) != snap.TotalCount {
					t.Error("snapshot counts diverge from contents")
					return
				}
			}
		}()
	}

	for range 50 {
		if err := c.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
	}
	close(done)
	wg.Wait()
}

func TestStartStop(t *testing.T) {
	src := &fakeSource{
		instruments: map[string][]model.Instrument{
			"KXATPMATCH": {testInstrument("KXATPMATCH-26JAN03NAVTHO-THO", 500)},
		},
	}
	c := newTestCache(src, Config{Series: []string{"KXATPMATCH"}, PollInterval: 10 * time.Millisecond})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.Get() == nil {
		t.Error("Start should publish an initial snapshot")
	}
	if !c.Status().PollingActive {
		t.Error("PollingActive should be true after Start")
	}

	time.Sleep(35 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if c.Status().PollingActive {
		t.Error("PollingActive should be false after Stop")
	}

	src.mu.Lock()
	calls := src.listCalls
	src.mu.Unlock()
	if calls < 2 {
		t.Errorf("listCalls = %d, want at least initial + one tick", calls)
	}
}
