// Package config loads service configuration from the environment, with an
// optional .env file.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration.
type Config struct {
	Port        string
	CORSOrigin  string
	LogLevel    slog.Level
	ServiceName string

	NATSURL string

	Neo4jURL  string
	Neo4jUser string
	Neo4jPass string

	VPICURL     string
	VPICEnabled bool
	VPICRPS     float64

	RateLimitRPS   float64
	RateLimitBurst int

	WMIFile string

	RequireCheckDigit  bool
	AssumeNACheckDigit bool

	ShutdownTimeout time.Duration
}

// Load reads .env (when present) and then the environment. Unparseable
// numeric and boolean values fall back to their defaults.
func Load() Config {
	// Missing .env files are fine.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:               envOr("PORT", "8080"),
		CORSOrigin:         envOr("CORS_ORIGIN", "*"),
		LogLevel:           ParseLevel(envOr("LOG_LEVEL", "info")),
		ServiceName:        envOr("SERVICE_NAME", "wessley-vin"),
		NATSURL:            envOr("NATS_URL", "nats://localhost:4222"),
		Neo4jURL:           envOr("NEO4J_URL", ""),
		Neo4jUser:          envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:          envOr("NEO4J_PASS", "password"),
		VPICURL:            envOr("VPIC_URL", "https://vpic.nhtsa.dot.gov/api/vehicles"),
		VPICEnabled:        boolEnv("VPIC_ENABLED", false),
		VPICRPS:            floatEnv("VPIC_RPS", 5),
		RateLimitRPS:       floatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst:     intEnv("RATE_LIMIT_BURST", 100),
		WMIFile:            envOr("WMI_FILE", ""),
		RequireCheckDigit:  boolEnv("VIN_REQUIRE_CHECK_DIGIT", false),
		AssumeNACheckDigit: boolEnv("VIN_ASSUME_NA_CHECK_DIGIT", true),
		ShutdownTimeout:    durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// DecodeOptions returns the service-wide decode defaults.
func (c Config) DecodeOptions() []vin.Option {
	return []vin.Option{
		vin.WithRequireValidCheckDigit(c.RequireCheckDigit),
		vin.WithAssumeNACheckDigit(c.AssumeNACheckDigit),
	}
}

// Logger builds the JSON slog logger every binary uses.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel})).
		With("service", c.ServiceName)
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ReadWMIFile parses a JSON object of WMI → manufacturer name.
func ReadWMIFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wmi file: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse wmi file %s: %w", path, err)
	}
	return entries, nil
}

// LoadWMIs registers the entries of c.WMIFile, if set, and returns how many
// were read.
func (c Config) LoadWMIs() (int, error) {
	if c.WMIFile == "" {
		return 0, nil
	}
	entries, err := ReadWMIFile(c.WMIFile)
	if err != nil {
		return 0, err
	}
	vin.RegisterWMIs(entries)
	return len(entries), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
