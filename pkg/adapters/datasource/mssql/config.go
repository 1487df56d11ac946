package mssql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Config contains SQL Server connection options for SQL authentication.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeout      int
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// FromParams creates a Config from dashboard connection parameters.
// Local servers are assumed to use self-signed certificates.
func FromParams(params models.ConnectionParams) (*Config, error) {
	cfg := &Config{
		Host:                   params.Host,
		Port:                   DefaultPort(),
		Database:               params.Database,
		Username:               params.User,
		Password:               params.Password,
		Encrypt:                true,
		TrustServerCertificate: true,
		ConnectionTimeout:      DefaultConnectionTimeout(),
	}

	if p := strings.TrimSpace(params.Port); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", params.Port, err)
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields SQL authentication needs.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required for SQL authentication")
	}
	return nil
}
