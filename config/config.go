// Package config loads server configuration from a .env file and the
// environment. Command-line flags in cmd/ override what is loaded here.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "config")

// Config holds all configuration for the server.
type Config struct {
	// Core settings
	Port         int
	DatabasePath string
	LogLevel     string

	// Extra rate tables merged over the built-in ones (JSON or YAML)
	TablesPath string

	// History retention; zero disables pruning
	HistoryRetention time.Duration
	PruneInterval    time.Duration

	// Result cache lifetime for identical calculation requests
	CacheTTL time.Duration

	// CORS
	AllowedOrigins []string
}

// Load reads .env (current or parent directory) and then the environment.
// A missing .env file is normal in production and only logged.
func Load() *Config {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}
	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Debug("No .env file found, relying on OS environment variables")
		} else {
			log.Warnf("Error loading .env file: %v. Relying on OS environment variables", errEnv)
		}
	} else {
		log.Debug(".env file loaded")
	}

	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		DatabasePath:     getEnv("DATABASE_PATH", "payroll.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TablesPath:       getEnv("TABLES_PATH", ""),
		HistoryRetention: getEnvAsDuration("HISTORY_RETENTION", 30*24*time.Hour),
		PruneInterval:    getEnvAsPositiveDuration("PRUNE_INTERVAL", time.Hour),
		CacheTTL:         getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		AllowedOrigins:   getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}
}

// LogLevels maps LOG_LEVEL values to logrus levels.
var LogLevels = map[string]logrus.Level{
	"trace": logrus.TraceLevel,
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
}

// ApplyLogLevel sets the global logrus level, defaulting to info.
func ApplyLogLevel(level string) {
	l, ok := LogLevels[strings.ToLower(level)]
	if !ok {
		log.Warnf("Invalid LOG_LEVEL %q, defaulting to info", level)
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Warnf("Invalid integer value for %s (%q), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Warnf("Invalid duration value for %s (%q), using default: %s", key, valueStr, fallback)
	return fallback
}

func getEnvAsPositiveDuration(key string, fallback time.Duration) time.Duration {
	value := getEnvAsDuration(key, fallback)
	if value <= 0 {
		log.Warnf("Non-positive duration for %s (%s), using default: %s", key, value, fallback)
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
