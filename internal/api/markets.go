package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/courtline/courtline/internal/model"
)

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// ListInstruments fetches every market of one series in the given status,
// paginating as needed, and converts them to domain instruments. limit
// caps the total across pages; 0 means no cap.
func (c *Client) ListInstruments(ctx context.Context, seriesTicker, status string, limit int) ([]model.Instrument, error) {
	opts := GetMarketsOptions{
		SeriesTicker: seriesTicker,
		Status:       status,
		Limit:        1000, // max page size
	}

	var instruments []model.Instrument
	for {
		resp, err := c.GetMarkets(ctx, opts)
		if err != nil {
			return nil, err
		}

		for _, m := range resp.Markets {
			instruments = append(instruments, m.ToInstrument())
			if limit > 0 && len(instruments) >= limit {
				return instruments[:limit], nil
			}
		}

		if resp.Cursor == "" {
			return instruments, nil
		}
		opts.Cursor = resp.Cursor
	}
}

// GetOrderbook fetches the orderbook for a market.
func (c *Client) GetOrderbook(ctx context.Context, ticker string, depth int) (*OrderbookResponse, error) {
	query := url.Values{}
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}

	var resp OrderbookResponse
	if err := c.get(ctx, "/markets/"+ticker+"/orderbook", query, &resp); err != nil {
		return nil, fmt.Errorf("get orderbook %s: %w", ticker, err)
	}

	return &resp, nil
}

// GetExchangeStatus fetches the venue-wide trading status.
func (c *Client) GetExchangeStatus(ctx context.Context) (*ExchangeStatusResponse, error) {
	var resp ExchangeStatusResponse
	if err := c.get(ctx, "/exchange/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("get exchange status: %w", err)
	}
	return &resp, nil
}
