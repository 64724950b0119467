package database

import (
	"context"
	"database/sql"
	"fmt"
)

// LatestVersion is the schema version the code expects after Open.
const LatestVersion int64 = 3

// Migration moves the schema forward to ToVersion. There are no downgrades.
type Migration struct {
	ToVersion int64
	Up        func(ctx context.Context, tx *sql.Tx) error
}

// Migrations returns the ordered list of schema migrations.
func Migrations() []Migration {
	return []Migration{
		{ToVersion: 1, Up: migrateInit},
		{ToVersion: 2, Up: migrateTodoWeekdays},
		{ToVersion: 3, Up: migrateGeneratedUnique},
	}
}

func execAll(ctx context.Context, tx *sql.Tx, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

func migrateInit(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE todos (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			repeat_on TEXT NOT NULL DEFAULT '[]',
			is_template INTEGER NOT NULL DEFAULT 0,
			date_start TEXT,
			date_end TEXT,
			time_start TEXT NOT NULL,
			time_end TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		// todo_id is advisory: events outlive the todo they came from.
		`CREATE TABLE events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			time_start TEXT NOT NULL,
			time_end TEXT NOT NULL,
			source_type TEXT NOT NULL CHECK (source_type IN ('manual', 'generated', 'template')),
			todo_id TEXT,
			is_dismissed INTEGER NOT NULL DEFAULT 0,
			completed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_events_date ON events (date)`,
		`CREATE INDEX idx_events_todo_date ON events (todo_id, date)`,
		`CREATE TABLE settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	)
}

// migrateTodoWeekdays moves the JSON repeat_on column into a join table.
func migrateTodoWeekdays(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE todo_weekdays (
			todo_id TEXT NOT NULL REFERENCES todos (id) ON DELETE CASCADE,
			weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
			PRIMARY KEY (todo_id, weekday)
		)`,
		`INSERT OR IGNORE INTO todo_weekdays (todo_id, weekday)
		 SELECT t.id, CAST(j.value AS INTEGER)
		 FROM todos t, json_each(CASE WHEN json_valid(t.repeat_on) THEN t.repeat_on ELSE '[]' END) j
		 WHERE CAST(j.value AS INTEGER) BETWEEN 0 AND 6`,
		`ALTER TABLE todos DROP COLUMN repeat_on`,
	)
}

func migrateGeneratedUnique(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE UNIQUE INDEX idx_events_generated_once ON events (todo_id, date)
		 WHERE source_type = 'generated' AND todo_id IS NOT NULL`,
		`INSERT OR IGNORE INTO settings (key, value) VALUES
			('auto_cleanup', 'true'),
			('keep_events_days', '30'),
			('auto_generate', 'true'),
			('weeks_ahead', '2')`,
	)
}
