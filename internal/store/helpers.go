package store

import (
	"log/slog"
	"strings"
)

// DetectDSNType classifies a DSN as "postgres" or "sqlite" from its shape.
// PostgreSQL DSNs use the postgres:// scheme or key=value form; everything
// else is treated as an SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// New creates a store from options: Postgres or SQLite when a DSN is
// configured, in-memory otherwise.
func New(opts ...Option) (StateStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("store.New using in-memory store")
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("store.New using PostgreSQL store")
		return NewPostgresStore(opts...)
	}
	slog.Debug("store.New using SQLite store", "path", cfg.DSN)
	return NewSQLiteStore(opts...)
}
