package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkiryanov/gopherauth/internal/repository"
	"github.com/nkiryanov/gopherauth/internal/repository/postgres"
	"github.com/nkiryanov/gopherauth/internal/repository/sqlite"
)

const sqliteScheme = "sqlite://"

// Open credential store chosen by dsn scheme, migrate it and return with close function
//
//	postgres://... or postgresql://...  PostgreSQL
//	sqlite://path/to/file.db            SQLite file
//	sqlite://:memory:                   SQLite in memory
func Open(ctx context.Context, dsn string) (repository.Storage, func(), error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := ConnectAndMigrate(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStorage(pool), pool.Close, nil

	case strings.HasPrefix(dsn, sqliteScheme):
		path := strings.TrimPrefix(dsn, sqliteScheme)
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite database path is empty")
		}

		storage, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() { _ = storage.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database dsn, expected postgres:// or sqlite:// scheme")
	}
}
