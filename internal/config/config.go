package config

import "time"

// TraderConfig is the root configuration for a trader instance.
type TraderConfig struct {
	API       APIConfig       `yaml:"api"`
	Predictor PredictorConfig `yaml:"predictor"`
	Cache     CacheConfig     `yaml:"cache"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Trader    TraderSection   `yaml:"trader"`
	Server    ServerConfig    `yaml:"server"`
	Journal   JournalConfig   `yaml:"journal"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig holds venue API settings.
type APIConfig struct {
	RestURL        string        `yaml:"rest_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID (for the access-key header)
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	Timeout        time.Duration `yaml:"timeout"`
	RateLimit      float64       `yaml:"rate_limit"` // requests per second
}

// PredictorConfig points at the external probability model.
type PredictorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the market poll loop.
type CacheConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	Series        []string      `yaml:"series"`
	EnrichTop     int           `yaml:"enrich_top"`
	MaxStaleness  time.Duration `yaml:"max_staleness"`
	FallbackQuery string        `yaml:"fallback_query"`
}

// DiscoveryConfig tunes the contract filter.
type DiscoveryConfig struct {
	Keywords       []string      `yaml:"keywords"`
	ExclusionTerms []string      `yaml:"exclusion_terms"`
	MaxHorizon     time.Duration `yaml:"max_horizon"`
	MinVolume      int64         `yaml:"min_volume"`
}

// TraderSection controls the autotrader.
type TraderSection struct {
	Enabled      bool          `yaml:"enabled"`
	ScanInterval time.Duration `yaml:"scan_interval"`
	MinEdge      float64       `yaml:"min_edge"`
	MinEV        float64       `yaml:"min_ev"`
	MinVolume    int64         `yaml:"min_volume"`
	MaxContracts int           `yaml:"max_contracts"`
	KellyCeiling float64       `yaml:"kelly_ceiling"`
	DryRun       bool          `yaml:"dry_run"`
}

// ServerConfig holds the HTTP read surface settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// JournalConfig holds the optional Postgres order journal.
type JournalConfig struct {
	Enabled bool     `yaml:"enabled"`
	DB      DBConfig `yaml:"db"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
