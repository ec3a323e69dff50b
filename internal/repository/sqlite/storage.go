package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"

	"github.com/nkiryanov/gopherauth/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Storage over SQLite database
// Use ":memory:" as path to get in-memory database (handy in tests)
type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error while opening sqlite db. Err: %w", err)
	}

	// SQLite allows one writer only. Also every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("error while setting pragma %q. Err: %w", pragma, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	source, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, source)
	if err != nil {
		return fmt.Errorf("error while preparing migrator. Err: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("error while applying migrations. Err: %w", err)
	}

	return nil
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{DB: s.db}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Timestamps stored as unix microseconds: comparable as numbers and precise as postgres timestamptz
func toUnix(t time.Time) int64 {
	return t.UnixMicro()
}

func fromUnix(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}
