package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CardOrderFixed  = "fixed"
	CardOrderRandom = "random"

	BackendGorm   = "gorm"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port                     string
	MaxRounds                int
	CardOrder                string
	DefaultLanguage          string
	CardsDir                 string
	StoreBackend             string
	DatabaseURL              string
	DBDriver                 string
	SQLitePath               string
	CacheTTLSeconds          int
	CacheSize                int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	BackendURL               string
	GameAPIKey               string
	GameSlug                 string
	BackendTimeoutSeconds    int
}

func Default() Config {
	return Config{
		Port:                     "8080",
		MaxRounds:                8,
		CardOrder:                CardOrderFixed,
		DefaultLanguage:          "en",
		DBDriver:                 "postgres",
		SQLitePath:               "bravepulse.db",
		CacheTTLSeconds:          30,
		CacheSize:                128,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		BackendURL:               "http://menteeno.local/api",
		GameSlug:                 "default",
		BackendTimeoutSeconds:    10,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	positiveInt("MAX_ROUNDS", &cfg.MaxRounds)
	if raw := strings.ToLower(os.Getenv("CARD_ORDER")); raw == CardOrderFixed || raw == CardOrderRandom {
		cfg.CardOrder = raw
	}
	if raw := os.Getenv("DEFAULT_LANGUAGE"); raw != "" {
		cfg.DefaultLanguage = raw
	}
	if raw := os.Getenv("CARDS_DIR"); raw != "" {
		cfg.CardsDir = raw
	}
	if raw := strings.ToLower(os.Getenv("STORE_BACKEND")); raw != "" {
		cfg.StoreBackend = raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := strings.ToLower(os.Getenv("DB_DRIVER")); raw != "" {
		cfg.DBDriver = raw
	}
	if raw := os.Getenv("SQLITE_PATH"); raw != "" {
		cfg.SQLitePath = raw
	}
	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.CacheTTLSeconds = value
		}
	}
	if raw := os.Getenv("CACHE_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.CacheSize = value
		}
	}
	positiveInt("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	positiveInt("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	positiveInt("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)
	positiveInt("DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleTimeSeconds)
	if raw := os.Getenv("BACKEND_URL"); raw != "" {
		cfg.BackendURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("GAME_API_KEY"); raw != "" {
		cfg.GameAPIKey = raw
	}
	if raw := os.Getenv("GAME_SLUG"); raw != "" {
		cfg.GameSlug = raw
	}
	positiveInt("BACKEND_TIMEOUT_SECONDS", &cfg.BackendTimeoutSeconds)
	return cfg
}

func positiveInt(name string, target *int) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	if value, err := strconv.Atoi(raw); err == nil && value > 0 {
		*target = value
	}
}

func (c Config) ShuffleCards() bool {
	return c.CardOrder == CardOrderRandom
}

// Backend picks the state store. An explicit STORE_BACKEND wins, then DATABASE_URL, then the
// local SQLite file.
func (c Config) Backend() string {
	switch c.StoreBackend {
	case BackendGorm, BackendSQLite, BackendMemory:
		return c.StoreBackend
	}
	if c.DatabaseURL != "" {
		return BackendGorm
	}
	if c.SQLitePath != "" {
		return BackendSQLite
	}
	return BackendMemory
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

// ReporterEnabled reports whether remote score reporting has credentials.
func (c Config) ReporterEnabled() bool {
	return c.BackendURL != "" && c.GameAPIKey != ""
}
