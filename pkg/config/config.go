package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// ConfigFile is read from the working directory when present.
const ConfigFile = "config.yaml"

// Config holds all configuration for the dashboard.
// Values come from config.yaml (optional) and environment variables, with the
// environment winning. A .env file in the working directory is loaded first.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8501"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"`

	// SessionSecret signs the session cookie. Any passphrase works; it is hashed to 32 bytes.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET" env-default:"vizboard-local-session-secret"`
	// SecureCookies sets the Secure flag on the session cookie (enable behind TLS).
	SecureCookies bool `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"false"`

	Staging    StagingConfig    `yaml:"staging"`
	LLM        LLMConfig        `yaml:"llm"`
	Connection ConnectionConfig `yaml:"connection"`
	UI         UIConfig         `yaml:"ui"`
}

// StagingConfig locates the two SQL files the dashboard executes from.
type StagingConfig struct {
	SchemaQueryPath string `yaml:"schema_query_path" env:"SCHEMA_QUERY_PATH" env-default:"sql_query/sql_query_schema.txt"`
	RequestPath     string `yaml:"request_path" env:"REQUEST_QUERY_PATH" env-default:"sql_query/sql_query_request.txt"`
}

// LLMConfig selects the text-to-SQL provider.
// The defaults talk to Gemini through its OpenAI-compatible endpoint.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:"gemini-1.5-pro"`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"2048"`
	// APIKey pre-fills the dashboard key field and is used by the MCP tools.
	APIKey string `yaml:"-" env:"GEMINI_API_KEY"`
}

// ConnectionConfig pre-fills the dashboard connection form.
type ConnectionConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Database string `yaml:"database" env:"PGDATABASE" env-default:"Vivekanand_bikes-Database"`
	User     string `yaml:"user" env:"PGUSER" env-default:"vivek"`
	Password string `yaml:"-" env:"PGPASSWORD"`
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
}

// UIConfig holds dashboard presentation settings.
type UIConfig struct {
	ContactName  string `yaml:"contact_name" env:"CONTACT_NAME" env-default:"Vivekanandreddy"`
	ContactEmail string `yaml:"contact_email" env:"CONTACT_EMAIL" env-default:"vivekanandreddy05@gmail.com"`
	PreviewRows  int    `yaml:"preview_rows" env:"PREVIEW_ROWS" env-default:"5"`
}

// Params converts the configured default connection into ConnectionParams.
func (c ConnectionConfig) Params() models.ConnectionParams {
	return models.ConnectionParams{
		Driver:   c.Driver,
		Database: c.Database,
		User:     c.User,
		Password: c.Password,
		Host:     c.Host,
		Port:     strconv.Itoa(c.Port),
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// Load reads configuration from .env, config.yaml and the environment.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(ConfigFile); err == nil {
		if err := cleanenv.ReadConfig(ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be openai or anthropic, got %q", c.LLM.Provider)
	}

	if c.Staging.SchemaQueryPath == "" || c.Staging.RequestPath == "" {
		return fmt.Errorf("both staging paths are required")
	}
	if c.Staging.SchemaQueryPath == c.Staging.RequestPath {
		return fmt.Errorf("schema query and request paths must differ")
	}

	if c.UI.PreviewRows <= 0 {
		c.UI.PreviewRows = 5
	}
	return nil
}
