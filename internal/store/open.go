package store

import (
	"log"

	"bravepulse/internal/config"
	"bravepulse/internal/db"
)

// Open builds the configured backend. Local SQLite reads go through a cache when CACHE_TTL_SECONDS
// and CACHE_SIZE are both positive.
func Open(cfg config.Config) (Backend, error) {
	switch cfg.Backend() {
	case config.BackendGorm:
		conn, err := db.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(conn); err != nil {
			return nil, err
		}
		log.Printf("store opened backend=gorm driver=%s", cfg.DBDriver)
		return NewGorm(conn), nil
	case config.BackendSQLite:
		kv, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Printf("store opened backend=sqlite path=%s cache_ttl=%s", cfg.SQLitePath, cfg.CacheTTL())
		return NewRecordStore(withCache(kv, cfg)), nil
	default:
		log.Printf("store opened backend=memory")
		return NewMemory(), nil
	}
}

func withCache(kv KV, cfg config.Config) KV {
	if cfg.CacheTTLSeconds <= 0 || cfg.CacheSize <= 0 {
		return kv
	}
	return NewCachedKV(kv, cfg.CacheSize, cfg.CacheTTL())
}
