package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR"        default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT"       default:"json"`

	Database Database
	LowStock LowStock
}

type Database struct {
	Driver      string `envconfig:"DB_DRIVER"    default:"postgres"`
	URL         string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// Used to build the DSN when DATABASE_URL is empty.
	Host     string `envconfig:"POSTGRES_HOST"     default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT"     default:"5432"`
	User     string `envconfig:"POSTGRES_USER"     default:"catalog"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"catalog"`
	Name     string `envconfig:"POSTGRES_DB"       default:"catalog"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE"  default:"disable"`
}

type LowStock struct {
	Threshold int           `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
	Interval  time.Duration `envconfig:"LOW_STOCK_INTERVAL"  default:"1h"`
	Enabled   bool          `envconfig:"LOW_STOCK_ENABLED"   default:"true"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Database.URL == "" {
			return errors.New("config: DATABASE_URL is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.LowStock.Interval <= 0 {
		return fmt.Errorf("config: LOW_STOCK_INTERVAL must be positive, got %s", c.LowStock.Interval)
	}
	if c.LowStock.Threshold < 0 {
		return fmt.Errorf("config: LOW_STOCK_THRESHOLD must not be negative, got %d", c.LowStock.Threshold)
	}
	return nil
}

// DSN returns the connection string of the configured database.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
