package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "bencher.yaml"

// CLIFlags holds command-line flag values. Nil pointers indicate unset flags
// that should not override the config. Use ParseFlags to populate this struct.
type CLIFlags struct {
	ConfigPath *string
	Port       *string
	LogLevel   *string
	DSN        *string
	NatsURL    *string
}

// ParseFlags parses command-line arguments into CLIFlags.
// Call this before Load/LoadWithCLI. Passing nil args parses os.Args[1:].
func ParseFlags(args []string) (CLIFlags, error) {
	var flags CLIFlags

	fs := flag.NewFlagSet("bencher", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	fs.StringVar(configPath, "c", "", "path to YAML config file (shorthand)")
	port := fs.String("port", "", "HTTP server port")
	fs.StringVar(port, "p", "", "HTTP server port (shorthand)")
	logLevel := fs.String("log-level", "", "logging level (debug, info, warn, error)")
	dsn := fs.String("dsn", "", "PostgreSQL connection string")
	natsURL := fs.String("nats-url", "", "NATS server URL")

	if err := fs.Parse(args); err != nil {
		return flags, fmt.Errorf("parse flags: %w", err)
	}

	// Only set pointers for flags that were explicitly provided.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "c":
			flags.ConfigPath = configPath
		case "port", "p":
			flags.Port = port
		case "log-level":
			flags.LogLevel = logLevel
		case "dsn":
			flags.DSN = dsn
		case "nats-url":
			flags.NatsURL = natsURL
		}
	})

	return flags, nil
}

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadWithCLI returns a Config using the full hierarchy:
// defaults < YAML < ENV < CLI flags. The YAML path can be overridden
// via CLIFlags.ConfigPath.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	yamlPath := DefaultConfigFile
	if flags.ConfigPath != nil {
		yamlPath = *flags.ConfigPath
	}

	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, "", fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, "", fmt.Errorf("config validate: %w", err)
	}

	return &cfg, yamlPath, nil
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// applyCLI overlays CLI flag values onto cfg. Only non-nil flags override.
func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.DSN != nil {
		cfg.Postgres.DSN = *flags.DSN
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "BENCHER_PORT")
	setString(&cfg.Server.CORSOrigin, "BENCHER_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "BENCHER_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "BENCHER_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "BENCHER_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "BENCHER_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "BENCHER_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Logging.Level, "BENCHER_LOG_LEVEL")
	setString(&cfg.Logging.Service, "BENCHER_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "BENCHER_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "BENCHER_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "BENCHER_BREAKER_TIMEOUT")
	setFloat64(&cfg.Rate.RequestsPerSecond, "BENCHER_RATE_RPS")
	setInt(&cfg.Rate.Burst, "BENCHER_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "BENCHER_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "BENCHER_RATE_MAX_IDLE_TIME")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "BENCHER_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "BENCHER_CACHE_TTL")

	// OpenTelemetry
	setBool(&cfg.OTEL.Enabled, "BENCHER_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "BENCHER_OTEL_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "BENCHER_OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "BENCHER_OTEL_INSECURE")
	setFloat64(&cfg.OTEL.SampleRate, "BENCHER_OTEL_SAMPLE_RATE")

	// Auth
	setBool(&cfg.Auth.Enabled, "BENCHER_AUTH_ENABLED")
	setString(&cfg.Auth.JWTSecret, "BENCHER_AUTH_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "BENCHER_AUTH_ACCESS_EXPIRY")
	setDuration(&cfg.Auth.RefreshTokenExpiry, "BENCHER_AUTH_REFRESH_EXPIRY")
	setDuration(&cfg.Auth.InviteTokenExpiry, "BENCHER_AUTH_INVITE_EXPIRY")
	setDuration(&cfg.Auth.OAuthStateExpiry, "BENCHER_AUTH_OAUTH_STATE_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "BENCHER_AUTH_BCRYPT_COST")
	setString(&cfg.Auth.DefaultAdminEmail, "BENCHER_AUTH_ADMIN_EMAIL")
	setString(&cfg.Auth.DefaultAdminPass, "BENCHER_AUTH_ADMIN_PASS")
	setBool(&cfg.Auth.AutoGenerateInitialPassword, "BENCHER_AUTH_AUTOGEN_ADMIN_PASS")
	setString(&cfg.Auth.InitialPasswordFile, "BENCHER_AUTH_ADMIN_PASS_FILE")
	setInt(&cfg.Auth.SetupTimeoutMinutes, "BENCHER_AUTH_SETUP_TIMEOUT_MINUTES")

	// Ingestion
	setInt(&cfg.Ingestion.MaxResultBlobBytes, "BENCHER_INGEST_MAX_BLOB_BYTES")
	setInt(&cfg.Ingestion.DetectorConcurrency, "BENCHER_INGEST_DETECTOR_CONCURRENCY")
}

// validate checks that required fields are set and security constraints are met.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}

	// Auth validation: reject empty JWT secret when auth is enabled.
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth.enabled is true")
	}

	// Auth validation: enforce minimum bcrypt cost for security.
	if cfg.Auth.BcryptCost < 10 {
		return errors.New("auth.bcrypt_cost must be >= 10")
	}

	// Auth validation: warn about default admin password in production.
	if cfg.Auth.Enabled {
		p := cfg.Auth.DefaultAdminPass
		if p == "changeme123" || p == "Changeme123" || p == "CHANGE_ME_ON_FIRST_BOOT" {
			slog.Warn("auth.default_admin_pass is set to a well-known default; change it before production use")
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
