package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *TraderConfig) Validate() error {
	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}

	if c.Trader.Enabled {
		if c.API.APIKey == "" {
			return errors.New("api.api_key is required when trader.enabled")
		}
		if c.API.PrivateKeyPath == "" {
			return errors.New("api.private_key_path is required when trader.enabled")
		}
		if c.Predictor.URL == "" {
			return errors.New("predictor.url is required when trader.enabled")
		}
		if c.Trader.MinEdge < 0 || c.Trader.MinEdge > 1 {
			return fmt.Errorf("trader.min_edge must be in [0,1], got %v", c.Trader.MinEdge)
		}
		if c.Trader.KellyCeiling <= 0 || c.Trader.KellyCeiling > 1 {
			return fmt.Errorf("trader.kelly_ceiling must be in (0,1], got %v", c.Trader.KellyCeiling)
		}
		if c.Trader.MaxContracts < 1 {
			return errors.New("trader.max_contracts must be >= 1")
		}
	}

	if c.Cache.PollInterval <= 0 {
		return errors.New("cache.poll_interval must be > 0")
	}
	if c.Cache.EnrichTop < 0 {
		return errors.New("cache.enrich_top must be >= 0")
	}

	if c.Journal.Enabled {
		if err := c.Journal.DB.validate("journal.db"); err != nil {
			return err
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
