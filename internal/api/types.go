package api

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// APIMarket is one market as returned by the venue.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
	MarketType  string `json:"market_type"`

	// Prices in cents (0-100); zero means absent.
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	NoBid     int `json:"no_bid"`
	NoAsk     int `json:"no_ask"`
	LastPrice int `json:"last_price"`

	Volume       int64 `json:"volume"`
	Volume24h    int64 `json:"volume_24h"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	OpenTime       string `json:"open_time"`
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`
}

// EventsResponse from GET /events
type EventsResponse struct {
	Events []APIEvent `json:"events"`
	Cursor string     `json:"cursor"`
}

// APIEvent is one event as returned by the venue, optionally with its
// nested markets when with_nested_markets is requested.
type APIEvent struct {
	EventTicker  string      `json:"event_ticker"`
	SeriesTicker string      `json:"series_ticker"`
	Title        string      `json:"title"`
	Subtitle     string      `json:"sub_title"`
	Category     string      `json:"category"`
	Markets      []APIMarket `json:"markets,omitempty"`
}

// OrderbookResponse from GET /markets/{ticker}/orderbook
type OrderbookResponse struct {
	Orderbook APIOrderbook `json:"orderbook"`
}

// APIOrderbook holds resting bids as [price_cents, quantity] pairs, one
// array per side. Asks are implied: the best yes ask is 100 minus the
// best no bid, and vice versa.
type APIOrderbook struct {
	Yes [][]int `json:"yes"`
	No  [][]int `json:"no"`
}

// PositionsResponse from GET /portfolio/positions
type PositionsResponse struct {
	MarketPositions []APIPosition `json:"market_positions"`
	Cursor          string        `json:"cursor"`
}

// APIPosition is one open market position.
type APIPosition struct {
	Ticker         string `json:"ticker"`
	Position       int    `json:"position"`
	MarketExposure int64  `json:"market_exposure"`
}

// BalanceResponse from GET /portfolio/balance
type BalanceResponse struct {
	Balance int64 `json:"balance"` // cents
}

// OrderRequest is the body of POST /portfolio/orders. Exactly one of
// YesPrice/NoPrice is set, matching Side.
type OrderRequest struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Side          string `json:"side"`
	Action        string `json:"action"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	YesPrice      int    `json:"yes_price,omitempty"`
	NoPrice       int    `json:"no_price,omitempty"`
}

// OrderResponse from POST /portfolio/orders
type OrderResponse struct {
	Order APIOrder `json:"order"`
}

// APIOrder is the venue's record of a submitted order.
type APIOrder struct {
	OrderID string `json:"order_id"`
	Ticker  string `json:"ticker"`
	Side    string `json:"side"`
	Action  string `json:"action"`
	Count   int    `json:"count"`
	Status  string `json:"status"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Status       string
}
