package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/meridian-ops/ioops-portal/internal/api"
	"github.com/meridian-ops/ioops-portal/internal/archive"
	"github.com/meridian-ops/ioops-portal/internal/backend"
	"github.com/meridian-ops/ioops-portal/internal/lockfile"
	"github.com/meridian-ops/ioops-portal/internal/session"
	"github.com/meridian-ops/ioops-portal/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for portal state data
	DefaultStateDir = "/var/lib/ioops-portal"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "sessions.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Only one portal instance may serve a state directory
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	// Build module options
	storeOpts := buildStoreOptions(flags)
	backendOpts := buildBackendOptions(flags)
	apiOpts := buildAPIOptions(flags, config)

	slog.Info("Bootstrapping verification portal with configured modules")
	slog.Debug("Module options counts", "store", len(storeOpts), "backend", len(backendOpts), "api", len(apiOpts))
	if err := api.Run(storeOpts, backendOpts, apiOpts); err != nil {
		slog.Error("Portal failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Portal exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir       string
	SessionDSN     string
	RedisAddr      string
	BackendURL     string
	EventsURL      string
	APIAddr        string
	SweepSchedule  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSSL       bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir      *string
	sessionDSN    *string
	redisAddr     *string
	backendURL    *string
	eventsURL     *string
	apiAddr       *string
	sweepSchedule *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:       os.Getenv("PORTAL_STATE_DIR"),
		SessionDSN:     os.Getenv("SESSION_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		BackendURL:     os.Getenv("BACKEND_URL"),
		EventsURL:      os.Getenv("EVENTS_WS_URL"),
		APIAddr:        os.Getenv("API_ADDR"),
		SweepSchedule:  os.Getenv("SWEEP_SCHEDULE"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioSSL:       util.ParseBoolEnv("MINIO_SSL", false),
	}

	if config.SessionDSN == "" {
		config.SessionDSN = os.Getenv("DATABASE_URL")
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No PORTAL_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no DSN and no Redis is provided, default to SQLite in the state directory
	if config.SessionDSN == "" && config.RedisAddr == "" {
		config.SessionDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No session DSN provided, defaulting to SQLite", "sqlite_path", config.SessionDSN)
	}

	slog.Debug("environment variables loaded",
		"PORTAL_STATE_DIR", config.StateDir,
		"SESSION_DSN_SET", config.SessionDSN != "",
		"REDIS_ADDR", config.RedisAddr,
		"BACKEND_URL_SET", config.BackendURL != "",
		"EVENTS_WS_URL_SET", config.EventsURL != "",
		"API_ADDR", config.APIAddr,
		"SWEEP_SCHEDULE", config.SweepSchedule,
		"MINIO_ENDPOINT_SET", config.MinioEndpoint != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for portal data (overrides $PORTAL_STATE_DIR)"),
		sessionDSN:    flag.String("session-dsn", config.SessionDSN, "session store DSN, SQLite path or Postgres URL (overrides $SESSION_DSN or $DATABASE_URL)"),
		redisAddr:     flag.String("redis-addr", config.RedisAddr, "Redis address for the session store (overrides $REDIS_ADDR)"),
		backendURL:    flag.String("backend-url", config.BackendURL, "verification backend base URL (overrides $BACKEND_URL)"),
		eventsURL:     flag.String("events-url", config.EventsURL, "backend WebSocket events URL (overrides $EVENTS_WS_URL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		sweepSchedule: flag.String("sweep-schedule", config.SweepSchedule, "cron schedule for the session sweeper (overrides $SWEEP_SCHEDULE)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"sessionDSN_set", *flags.sessionDSN != "",
		"redisAddr", *flags.redisAddr,
		"backendURL_set", *flags.backendURL != "",
		"eventsURL_set", *flags.eventsURL != "",
		"apiAddr", *flags.apiAddr,
		"sweepSchedule", *flags.sweepSchedule)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if *flags.sessionDSN != "" && !strings.Contains(*flags.sessionDSN, "postgres://") && !strings.Contains(*flags.sessionDSN, "host=") {
		stateDir := filepath.Dir(*flags.sessionDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs session store configuration options
func buildStoreOptions(flags Flags) []session.Option {
	var storeOpts []session.Option
	if *flags.redisAddr != "" {
		slog.Debug("Configuring Redis session store", "redis_addr", *flags.redisAddr)
		storeOpts = append(storeOpts, session.WithRedisAddr(*flags.redisAddr))
		storeOpts = append(storeOpts, session.WithTTL(session.DefaultSessionTTL))
		return storeOpts
	}
	if *flags.sessionDSN != "" {
		slog.Debug("Configuring database session store", "dsn_set", true)
		storeOpts = append(storeOpts, session.WithDSN(*flags.sessionDSN))
	} else {
		slog.Debug("No session DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildBackendOptions constructs backend client configuration options
func buildBackendOptions(flags Flags) []backend.Option {
	var backendOpts []backend.Option
	if *flags.backendURL != "" {
		backendOpts = append(backendOpts, backend.WithBaseURL(*flags.backendURL))
	}
	backendOpts = append(backendOpts, backend.WithTimeout(30*time.Second))
	return backendOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags, config Config) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.sweepSchedule != "" {
		apiOpts = append(apiOpts, api.WithSweepSchedule(*flags.sweepSchedule))
	}
	if *flags.eventsURL != "" {
		apiOpts = append(apiOpts, api.WithEventsURL(*flags.eventsURL))
	}
	if config.MinioEndpoint != "" {
		archOpts := []archive.Option{
			archive.WithEndpoint(config.MinioEndpoint),
			archive.WithCredentials(config.MinioAccessKey, config.MinioSecretKey),
			archive.WithSSL(config.MinioSSL),
		}
		if config.MinioBucket != "" {
			archOpts = append(archOpts, archive.WithBucket(config.MinioBucket))
		}
		arch, err := archive.New(archOpts...)
		if err != nil {
			slog.Warn("Failed to configure media archive, continuing without it", "error", err)
		} else {
			apiOpts = append(apiOpts, api.WithArchive(arch))
		}
	}
	return apiOpts
}
