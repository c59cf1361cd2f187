package model

import (
	"strings"
	"time"
)

// Side identifies one of the two outcomes of an instrument.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Instrument is a single tradable two-outcome contract.
//
// Prices are integer cents (0-100) representing cents of probability;
// zero means the venue did not report the field. Instruments are replaced
// wholesale on every poll cycle and are never mutated in place.
type Instrument struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Status       string `json:"status"`

	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	NoBid     int `json:"no_bid"`
	NoAsk     int `json:"no_ask"`
	LastPrice int `json:"last_price"`

	Volume int64 `json:"volume"`

	// CloseTime is the scheduled close instant; zero when absent.
	CloseTime time.Time `json:"close_time"`

	// Enriched is set once best bid/ask have been refreshed from the
	// instrument's orderbook during a poll cycle.
	Enriched bool `json:"enriched"`
}

// HasYesPrice reports whether any yes-side price is known.
func (in Instrument) HasYesPrice() bool {
	return in.YesBid > 0 || in.YesAsk > 0 || in.LastPrice > 0
}

// HasNoPrice reports whether any no-side price is known.
func (in Instrument) HasNoPrice() bool {
	return in.NoBid > 0 || in.NoAsk > 0
}

// Ask returns the best ask in cents for the given side, 0 if unknown.
func (in Instrument) Ask(side Side) int {
	if side == SideYes {
		return in.YesAsk
	}
	return in.NoAsk
}

// Event is the parent grouping an instrument belongs to. One tennis match
// is one event; its instruments are the per-player contracts.
type Event struct {
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Category     string `json:"category,omitempty"`
}

// Position is an open portfolio position reported by the venue.
type Position struct {
	Ticker   string `json:"ticker"`
	Quantity int    `json:"position"`
	Exposure int64  `json:"market_exposure"`
}

// MatchContext is the input handed to the external predictor: the two
// competitors plus scheduling context. The model behind it is opaque.
type MatchContext struct {
	Ticker      string    `json:"ticker"`
	EventTicker string    `json:"event_ticker"`
	Home        string    `json:"home"`
	Away        string    `json:"away"`
	CloseTime   time.Time `json:"close_time"`
}

// SeriesFromTicker derives the parent series identifier from an instrument
// ticker: the leading token up to the first delimiter, uppercased.
// "KXATPMATCH-26JAN03NAVTHO-THO" -> "KXATPMATCH".
func SeriesFromTicker(ticker string) string {
	if ticker == "" {
		return ""
	}
	head, _, _ := strings.Cut(ticker, "-")
	return strings.ToUpper(head)
}

// EventFromTicker derives the event identifier from an instrument ticker by
// dropping the trailing outcome token. Instruments of one match share the
// result. "KXATPMATCH-26JAN03NAVTHO-THO" -> "KXATPMATCH-26JAN03NAVTHO".
func EventFromTicker(ticker string) string {
	i := strings.LastIndex(ticker, "-")
	if i <= 0 {
		return ticker
	}
	return ticker[:i]
}
