package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Open opens a SQLite database at the given path and runs migrations.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// All writes go through one connection; this also keeps a :memory:
	// database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := Migrate(context.Background(), db, Migrations(), LatestVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + q.Encode()
	}
	q.Add("_pragma", "journal_mode(WAL)")
	return path + "?" + q.Encode()
}

// Migrate applies every migration above the database's current version, in
// order, each in its own transaction. The version reached is returned. A
// version short of latest means a migration is missing from the list; it
// is logged and the database is left usable.
func Migrate(ctx context.Context, db *sql.DB, migrations []Migration, latest int64) (int64, error) {
	goMigrations := make([]*goose.Migration, 0, len(migrations))
	for _, m := range migrations {
		goMigrations = append(goMigrations, goose.NewGoMigration(
			m.ToVersion,
			&goose.GoFunc{RunTx: m.Up},
			nil,
		))
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(goMigrations...),
	)
	if err != nil {
		return 0, fmt.Errorf("new migration provider: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Debug("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}

	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get db version: %w", err)
	}
	if version != latest {
		slog.Warn("schema version does not match latest, missing migration?", "version", version, "latest", latest)
	}
	return version, nil
}
