package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultAPITimeout       = 2 * time.Second
	DefaultRateLimit        = 10.0
	DefaultPredictorTimeout = 5 * time.Second
	DefaultPollInterval     = 12 * time.Second
	DefaultEnrichTop        = 25
	DefaultMaxStaleness     = 60 * time.Second
	DefaultFallbackQuery    = "tennis"
	DefaultMaxHorizon       = 72 * time.Hour
	DefaultScanInterval     = 60 * time.Second
	DefaultMinEdge          = 0.02
	DefaultMinEV            = 0.05
	DefaultMaxContracts     = 10
	DefaultKellyCeiling     = 0.25
	DefaultServerAddr       = ":8080"
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 5
	DefaultMinConns         = 1
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *TraderConfig) applyDefaults() {
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = DefaultRateLimit
	}

	if c.Predictor.Timeout == 0 {
		c.Predictor.Timeout = DefaultPredictorTimeout
	}

	if c.Cache.PollInterval == 0 {
		c.Cache.PollInterval = DefaultPollInterval
	}
	if c.Cache.EnrichTop == 0 {
		c.Cache.EnrichTop = DefaultEnrichTop
	}
	if c.Cache.MaxStaleness == 0 {
		c.Cache.MaxStaleness = DefaultMaxStaleness
	}
	if c.Cache.FallbackQuery == "" {
		c.Cache.FallbackQuery = DefaultFallbackQuery
	}

	if c.Discovery.MaxHorizon == 0 {
		c.Discovery.MaxHorizon = DefaultMaxHorizon
	}

	if c.Trader.ScanInterval == 0 {
		c.Trader.ScanInterval = DefaultScanInterval
	}
	if c.Trader.MinEdge == 0 {
		c.Trader.MinEdge = DefaultMinEdge
	}
	if c.Trader.MinEV == 0 {
		c.Trader.MinEV = DefaultMinEV
	}
	if c.Trader.MaxContracts == 0 {
		c.Trader.MaxContracts = DefaultMaxContracts
	}
	if c.Trader.KellyCeiling == 0 {
		c.Trader.KellyCeiling = DefaultKellyCeiling
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}

	if c.Journal.Enabled {
		applyDBDefaults(&c.Journal.DB)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
