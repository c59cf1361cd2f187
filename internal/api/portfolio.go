package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/courtline/courtline/internal/model"
)

// GetPositions fetches all open market positions.
func (c *Client) GetPositions(ctx context.Context) ([]model.Position, error) {
	var resp PositionsResponse
	if err := c.get(ctx, "/portfolio/positions", nil, &resp); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	positions := make([]model.Position, 0, len(resp.MarketPositions))
	for _, p := range resp.MarketPositions {
		if p.Position == 0 {
			continue
		}
		positions = append(positions, model.Position{
			Ticker:   p.Ticker,
			Quantity: p.Position,
			Exposure: p.MarketExposure,
		})
	}

	return positions, nil
}

// GetBalance fetches the account balance in cents.
func (c *Client) GetBalance(ctx context.Context) (int64, error) {
	var resp BalanceResponse
	if err := c.get(ctx, "/portfolio/balance", nil, &resp); err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return resp.Balance, nil
}

// SubmitOrder places a limit order. A fresh client_order_id is attached
// so an accidental resubmission of the same intent is rejected venue-side.
// Price is in cents (1-99) and applies to the given side.
func (c *Client) SubmitOrder(ctx context.Context, ticker string, side model.Side, action string, count, price int) (*APIOrder, error) {
	if price < 1 || price > 99 {
		return nil, fmt.Errorf("submit order %s: price %d out of range 1-99", ticker, price)
	}
	if count < 1 {
		return nil, fmt.Errorf("submit order %s: count %d must be >= 1", ticker, count)
	}

	req := OrderRequest{
		Ticker:        ticker,
		ClientOrderID: uuid.NewString(),
		Side:          string(side),
		Action:        action,
		Count:         count,
		Type:          "limit",
	}
	switch side {
	case model.SideYes:
		req.YesPrice = price
	case model.SideNo:
		req.NoPrice = price
	default:
		return nil, fmt.Errorf("submit order %s: invalid side %q", ticker, side)
	}

	var resp OrderResponse
	if err := c.post(ctx, "/portfolio/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("submit order %s: %w", ticker, err)
	}

	return &resp.Order, nil
}
