package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/panda"
)

const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// tokenKeys lists where a token may be configured, newest first. The older
// keys are the ones used by earlier releases of the Panda plugins.
var tokenKeys = []string{
	"PANDA_TOKEN",
	"PANDAVIDEO_PANDA_TOKEN",
	"SUPERVIDEO_PANDA",
}

type Config struct {
	Token           string
	Port            int
	DBPath          string
	CacheBackend    string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	APIBaseURL      string
	DataBaseURL     string
	DashboardURL    string
	ManageURL       string
	RootLabel       string
	HTTPTimeout     time.Duration
	RateLimitPerMin int
	LogLevel        string
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys
func FromEnv(lookup func(string) string) *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".panda-repository")

	cfg := &Config{
		Token:           ResolveToken(lookup),
		Port:            intOr(lookup("PORT"), 8080),
		DBPath:          stringOr(lookup("PANDA_DB_PATH"), filepath.Join(dataDir, "panda-repository.db")),
		CacheBackend:    stringOr(lookup("PANDA_CACHE"), CacheSQLite),
		RedisAddr:       stringOr(lookup("REDIS_ADDR"), "localhost:6379"),
		RedisPassword:   lookup("REDIS_PASSWORD"),
		RedisDB:         intOr(lookup("REDIS_DB"), 0),
		APIBaseURL:      stringOr(lookup("PANDA_API_URL"), panda.BaseURL),
		DataBaseURL:     stringOr(lookup("PANDA_DATA_URL"), panda.DataURL),
		DashboardURL:    stringOr(lookup("PANDA_DASHBOARD_URL"), panda.DashboardURL),
		ManageURL:       lookup("PANDA_MANAGE_URL"),
		RootLabel:       stringOr(lookup("PANDA_ROOT_LABEL"), "Panda Video"),
		HTTPTimeout:     durationOr(lookup("PANDA_HTTP_TIMEOUT"), 30*time.Second),
		RateLimitPerMin: intOr(lookup("PANDA_RATE_LIMIT"), panda.RateLimitPerMin),
		LogLevel:        stringOr(lookup("LOG_LEVEL"), "info"),
	}
	return cfg
}

// ResolveToken returns the first usable token among the known keys
func ResolveToken(lookup func(string) string) string {
	for _, key := range tokenKeys {
		if token := lookup(key); panda.ValidToken(token) {
			return token
		}
	}
	return ""
}

// PandaToken lets the config act as the client's token source
func (c *Config) PandaToken() string {
	return c.Token
}

// EnsureDataDir creates the directory holding the database file
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(filepath.Dir(c.DBPath), 0755)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durationOr(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
