package app

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/joho/godotenv"
)

type Config struct {
	// Upstream endpoints
	LoginStartURL  string        // Fusion SSO entry point
	CASLoginURL    string        // CAS login form
	ServiceURL     string        // Optional: CAS service callback (default: derived from the login-start redirect)
	LoginFinishURL string        // Ticket to token exchange
	BarcodeURL     string        // Barcode mint endpoint
	TokenHeader    string        // Response header carrying the fusion token (default: X-Fusion-Token)
	HTTPTimeout    time.Duration // Per-request timeout towards Fusion and CAS (default: 30s)
	DemoMode       bool          // Accept the offline demo account (default: true)

	TokenTTL       time.Duration // Client-side fusion token lifetime (default: 1h)
	BarcodeRefresh time.Duration // Barcode rotation period for --watch (default: 12s)

	DatabaseFile  string // Path to SQLite database file (default: ./srcode.db)
	MasterKeyPath string // Optional: file holding the vault key material
	MasterKey     string // Optional: vault key material, used when MasterKeyPath is unset
	APIToken      string // Optional: bearer token required on /v1 routes

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired token sweep interval (default: 15m)

	// LogOutput overrides where logs go. Not read from the environment.
	LogOutput io.Writer
}

// LoadConfig reads the configuration from the environment, after loading a
// .env file from the working directory when one exists.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	endpoints := fusionauth.DefaultEndpoints()
	cfg := Config{
		LoginStartURL:  getEnvOrDefault("SRCODE_LOGIN_START_URL", endpoints.LoginStart),
		CASLoginURL:    getEnvOrDefault("SRCODE_CAS_LOGIN_URL", endpoints.CASLogin),
		ServiceURL:     os.Getenv("SRCODE_SERVICE_URL"),
		LoginFinishURL: getEnvOrDefault("SRCODE_LOGIN_FINISH_URL", endpoints.LoginFinish),
		BarcodeURL:     getEnvOrDefault("SRCODE_BARCODE_URL", endpoints.Barcode),
		TokenHeader:    getEnvOrDefault("SRCODE_TOKEN_HEADER", fusionauth.DefaultTokenHeader),
		HTTPTimeout:    getEnvDurationOrDefault("SRCODE_HTTP_TIMEOUT", fusionauth.DefaultTimeout),
		DemoMode:       getEnvBoolOrDefault("SRCODE_DEMO_MODE", true),

		TokenTTL:       getEnvDurationOrDefault("SRCODE_TOKEN_TTL", fusionauth.DefaultTokenTTL),
		BarcodeRefresh: getEnvDurationOrDefault("SRCODE_BARCODE_REFRESH", fusionauth.DefaultBarcodeRefresh),

		DatabaseFile:  getEnvOrDefault("SRCODE_DATABASE_FILE", "srcode.db"),
		MasterKeyPath: os.Getenv("SRCODE_MASTER_KEY_PATH"),
		MasterKey:     os.Getenv("SRCODE_MASTER_KEY"),
		APIToken:      os.Getenv("SRCODE_API_TOKEN"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
	}

	return cfg, nil
}

// Endpoints returns the fusion endpoints described by cfg.
func (cfg Config) Endpoints() fusionauth.Endpoints {
	return fusionauth.Endpoints{
		LoginStart:  cfg.LoginStartURL,
		CASLogin:    cfg.CASLoginURL,
		ServiceURL:  cfg.ServiceURL,
		LoginFinish: cfg.LoginFinishURL,
		Barcode:     cfg.BarcodeURL,
		TokenHeader: cfg.TokenHeader,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds ("30" == "30s")
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
