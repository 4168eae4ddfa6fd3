package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Database struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	Name     string `envconfig:"DB_NAME" default:"fleetledger"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

func (d Database) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Ledger struct {
	// Summaries over more events than this are folded in parallel shards.
	ParallelThreshold int `envconfig:"LEDGER_PARALLEL_THRESHOLD" default:"50000"`
	Shards            int `envconfig:"LEDGER_SHARDS" default:"0"`
}

type Fuel struct {
	DefaultBufferPercent int `envconfig:"FUEL_DEFAULT_BUFFER_PERCENT" default:"5"`
}

func (f Fuel) validate() error {
	if f.DefaultBufferPercent < 0 || f.DefaultBufferPercent > 100 {
		return fmt.Errorf("FUEL_DEFAULT_BUFFER_PERCENT must be within 0..100, got %d", f.DefaultBufferPercent)
	}

	return nil
}

type Import struct {
	// ProfilesFile points at a YAML file of extra statement layouts. Empty means built-ins only.
	ProfilesFile string `envconfig:"IMPORT_PROFILES_FILE" default:""`
}

type Snapshot struct {
	// Schedule is a five-field cron spec; empty disables snapshots.
	Schedule  string        `envconfig:"SNAPSHOT_SCHEDULE" default:""`
	Companies []string      `envconfig:"SNAPSHOT_COMPANIES"`
	Dir       string        `envconfig:"SNAPSHOT_DIR" default:"./exports/snapshots"`
	Formats   []string      `envconfig:"SNAPSHOT_FORMATS" default:"xlsx,pdf"`
	Timeout   time.Duration `envconfig:"SNAPSHOT_TIMEOUT" default:"5m"`
}

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"FleetLedger"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB Database

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret string `envconfig:"JWT_SECRET" required:"true"`
		Issuer string `envconfig:"JWT_ISSUER" default:"fleetledger"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Ledger   Ledger
	Fuel     Fuel
	Import   Import
	Snapshot Snapshot
}

func (c *Config) ConnectionString() string {
	return c.DB.ConnectionString()
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Fuel.validate(); err != nil {
		return nil, err
	}

	if cfg.Snapshot.Schedule != "" && len(cfg.Snapshot.Companies) == 0 {
		return nil, fmt.Errorf("SNAPSHOT_COMPANIES is required when SNAPSHOT_SCHEDULE is set")
	}

	return &cfg, nil
}

// TUI is the configuration of the terminal client. It talks to the database
// directly on behalf of a single company, so it needs no JWT settings.
type TUI struct {
	DB        Database
	CompanyID string `envconfig:"TUI_COMPANY_ID" required:"true"`
	Ledger    Ledger
	Fuel      Fuel
	Import    Import
}

func LoadTUI() (*TUI, error) {
	var cfg TUI
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Fuel.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
