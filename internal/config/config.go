package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the sync job configuration
type Config struct {
	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Catalog struct {
		BaseURL           string        `yaml:"base_url" env:"CATALOG_BASE_URL"`
		SearchPath        string        `yaml:"search_path" env:"CATALOG_SEARCH_PATH"`
		DetailPath        string        `yaml:"detail_path" env:"CATALOG_DETAIL_PATH"`
		Timeout           time.Duration `yaml:"timeout" env:"CATALOG_TIMEOUT"`
		MaxAttempts       int           `yaml:"max_attempts" env:"CATALOG_MAX_ATTEMPTS"`
		InterRequestDelay time.Duration `yaml:"inter_request_delay" env:"CATALOG_INTER_REQUEST_DELAY"`
		RequestsPerSecond float64       `yaml:"requests_per_second" env:"CATALOG_RPS"`
		PageSize          int           `yaml:"page_size" env:"CATALOG_PAGE_SIZE"`
		MaxPages          int           `yaml:"max_pages" env:"CATALOG_MAX_PAGES"`
	} `yaml:"catalog"`

	Aggregator struct {
		GraphQLURL        string        `yaml:"graphql_url" env:"AGGREGATOR_GRAPHQL_URL"`
		SchoolName        string        `yaml:"school_name" env:"AGGREGATOR_SCHOOL_NAME"`
		AuthToken         string        `yaml:"auth_token" env:"AGGREGATOR_AUTH_TOKEN"`
		Timeout           time.Duration `yaml:"timeout" env:"AGGREGATOR_TIMEOUT"`
		MaxAttempts       int           `yaml:"max_attempts" env:"AGGREGATOR_MAX_ATTEMPTS"`
		InterRequestDelay time.Duration `yaml:"inter_request_delay" env:"AGGREGATOR_INTER_REQUEST_DELAY"`
		PageSize          int           `yaml:"page_size" env:"AGGREGATOR_PAGE_SIZE"`
	} `yaml:"aggregator"`

	Sync struct {
		Workers        int    `yaml:"workers" env:"SYNC_WORKERS"`
		CheckpointPath string `yaml:"checkpoint_path" env:"SYNC_CHECKPOINT_PATH"`
		MigrationsDir  string `yaml:"migrations_dir" env:"SYNC_MIGRATIONS_DIR"`
	} `yaml:"sync"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Config file is optional; env vars alone can drive a run
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "courseatlas"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.Catalog.SearchPath = "/api/search"
	config.Catalog.DetailPath = "/api/details"
	config.Catalog.Timeout = 20 * time.Second
	config.Catalog.MaxAttempts = 4
	config.Catalog.InterRequestDelay = 150 * time.Millisecond
	config.Catalog.RequestsPerSecond = 4
	config.Catalog.PageSize = 50
	config.Catalog.MaxPages = 200

	config.Aggregator.Timeout = 20 * time.Second
	config.Aggregator.MaxAttempts = 4
	config.Aggregator.InterRequestDelay = 250 * time.Millisecond
	config.Aggregator.PageSize = 20

	config.Sync.Workers = 8
	config.Sync.CheckpointPath = "sync-checkpoint.json"
	config.Sync.MigrationsDir = "internal/app/migrations/sql"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required")
	}

	if config.Catalog.MaxAttempts < 1 {
		return fmt.Errorf("catalog max attempts must be at least 1")
	}

	if config.Sync.Workers < 1 {
		return fmt.Errorf("sync workers must be at least 1")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime format: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
