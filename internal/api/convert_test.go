package api

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"2026-01-03T18:00:00Z", false},
		{"2026-01-03T18:00:00", false},
		{"", true},
		{"not-a-time", true},
	}
	for _, tt := range tests {
		got := ParseTimestamp(tt.in)
		if got.IsZero() != tt.zero {
			t.Errorf("ParseTimestamp(%q).IsZero() = %v, want %v", tt.in, got.IsZero(), tt.zero)
		}
	}

	got := ParseTimestamp("2026-01-03T18:00:00Z")
	want := time.Date(2026, 1, 3, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp = %v, want %v", got, want)
	}
}

func TestToInstrument(t *testing.T) {
	m := APIMarket{
		Ticker:      "KXWTAMATCH-26JAN05SABGAU-SAB",
		EventTicker: "KXWTAMATCH-26JAN05SABGAU",
		Title:       "Sabalenka vs Gauff",
		Status:      "active",
		YesBid:      55,
		YesAsk:      58,
		NoBid:       42,
		NoAsk:       45,
		LastPrice:   56,
		Volume:      1200,
		CloseTime:   "2026-01-05T20:00:00Z",
	}

	in := m.ToInstrument()

	if in.SeriesTicker != "KXWTAMATCH" {
		t.Errorf("SeriesTicker = %q, want KXWTAMATCH", in.SeriesTicker)
	}
	if in.YesBid != 55 || in.YesAsk != 58 || in.NoBid != 42 || in.NoAsk != 45 {
		t.Errorf("prices = %d/%d/%d/%d", in.YesBid, in.YesAsk, in.NoBid, in.NoAsk)
	}
	if in.Volume != 1200 {
		t.Errorf("Volume = %d, want 1200", in.Volume)
	}
	if in.CloseTime.IsZero() {
		t.Error("CloseTime should be set")
	}
	if in.Enriched {
		t.Error("Enriched should be false before orderbook merge")
	}
}

func TestBestPrices(t *testing.T) {
	ob := APIOrderbook{
		Yes: [][]int{{40, 100}, {55, 30}, {50, 20}},
		No:  [][]int{{42, 50}, {38, 10}},
	}

	yesBid, yesAsk, noBid, noAsk := ob.BestPrices()

	if yesBid != 55 {
		t.Errorf("yesBid = %d, want 55", yesBid)
	}
	if noBid != 42 {
		t.Errorf("noBid = %d, want 42", noBid)
	}
	// Asks are implied from the opposite side's best resting bid.
	if yesAsk != 58 {
		t.Errorf("yesAsk = %d, want 58", yesAsk)
	}
	if noAsk != 45 {
		t.Errorf("noAsk = %d, want 45", noAsk)
	}
}

func TestBestPrices_EmptySides(t *testing.T) {
	ob := APIOrderbook{Yes: [][]int{{60, 5}}}

	yesBid, yesAsk, noBid, noAsk := ob.BestPrices()

	if yesBid != 60 {
		t.Errorf("yesBid = %d, want 60", yesBid)
	}
	if noAsk != 40 {
		t.Errorf("noAsk = %d, want 40", noAsk)
	}
	if noBid != 0 || yesAsk != 0 {
		t.Errorf("empty side should yield 0, got noBid=%d yesAsk=%d", noBid, yesAsk)
	}
}
