package journal

import (
	"fmt"
	"net/url"

	"github.com/courtline/courtline/internal/config"
)

// BuildConnString assembles a pgx connection URL. Credentials are
// URL-escaped so passwords with reserved characters survive; the
// sslmode default is applied with the rest of the DB defaults in the
// config package.
func BuildConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)
}
