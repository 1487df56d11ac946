package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Config contains PostgreSQL-specific connection options.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // "disable", "require", "verify-ca", "verify-full"
}

// DefaultPort returns the default PostgreSQL port.
func DefaultPort() int {
	return 5432
}

// DefaultSSLMode returns the default SSL mode.
// Local dashboards usually talk to a plain localhost server.
func DefaultSSLMode() string {
	return "prefer"
}

// FromParams creates a Config from dashboard connection parameters.
func FromParams(params models.ConnectionParams) (*Config, error) {
	cfg := &Config{
		Host:     params.Host,
		Port:     DefaultPort(),
		User:     params.User,
		Password: params.Password,
		Database: params.Database,
		SSLMode:  DefaultSSLMode(),
	}

	if cfg.Host == "" {
		cfg.Host = "localhost"
	}

	if p := strings.TrimSpace(params.Port); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", params.Port, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}
