package api

import (
	"time"

	"github.com/courtline/courtline/internal/model"
)

// ParseTimestamp parses an ISO 8601 timestamp. Returns the zero time for
// empty or unparseable input; a malformed timestamp must not fail the
// whole batch.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t
}

// ToInstrument converts an APIMarket to the domain shape. A missing
// series identifier is derived from the market's own ticker.
func (m *APIMarket) ToInstrument() model.Instrument {
	return model.Instrument{
		Ticker:       m.Ticker,
		EventTicker:  m.EventTicker,
		SeriesTicker: model.SeriesFromTicker(m.Ticker),
		Title:        m.Title,
		Subtitle:     m.Subtitle,
		Status:       m.Status,
		YesBid:       m.YesBid,
		YesAsk:       m.YesAsk,
		NoBid:        m.NoBid,
		NoAsk:        m.NoAsk,
		LastPrice:    m.LastPrice,
		Volume:       m.Volume,
		CloseTime:    ParseTimestamp(m.CloseTime),
	}
}

// ToEvent converts an APIEvent to the domain shape.
func (e *APIEvent) ToEvent() model.Event {
	ev := model.Event{
		EventTicker:  e.EventTicker,
		SeriesTicker: e.SeriesTicker,
		Title:        e.Title,
		Subtitle:     e.Subtitle,
		Category:     e.Category,
	}
	if ev.SeriesTicker == "" {
		ev.SeriesTicker = model.SeriesFromTicker(e.EventTicker)
	}
	return ev
}

// BestPrices extracts best bid/ask for both sides from the orderbook, in
// cents. Each side's array holds resting bids; the opposite ask is
// implied as 100 minus the other side's best bid. Zero means no level.
func (o *APIOrderbook) BestPrices() (yesBid, yesAsk, noBid, noAsk int) {
	for _, level := range o.Yes {
		if len(level) >= 2 && level[0] > yesBid {
			yesBid = level[0]
		}
	}
	for _, level := range o.No {
		if len(level) >= 2 && level[0] > noBid {
			noBid = level[0]
		}
	}

	if noBid > 0 {
		yesAsk = 100 - noBid
	}
	if yesBid > 0 {
		noAsk = 100 - yesBid
	}
	return yesBid, yesAsk, noBid, noAsk
}
