// Package backup writes and restores passphrase-encrypted snapshots of the
// daybook database.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Snapshot writes a consistent encrypted copy of db to dst. It works on
// in-memory databases too, since the copy is taken with VACUUM INTO.
func Snapshot(ctx context.Context, db *sql.DB, dst, passphrase string) error {
	if passphrase == "" {
		return errors.New("backup passphrase is empty")
	}

	tmpDir, err := os.MkdirTemp("", "daybook-backup-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plain := filepath.Join(tmpDir, "daybook.db")
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, plain); err != nil {
		return fmt.Errorf("vacuum into: %w", err)
	}

	data, err := os.ReadFile(plain)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	enc, err := seal(data, passphrase)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dst, enc); err != nil {
		return err
	}

	slog.Info("backup written", "path", dst, "bytes", len(enc))
	return nil
}

// Restore decrypts src, checks it is an intact SQLite database, and moves it
// over dbPath. The database at dbPath must be closed.
func Restore(ctx context.Context, src, dbPath, passphrase string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	plain, err := open(data, passphrase)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".daybook-restore-*.db")
	if err != nil {
		return fmt.Errorf("create temp db: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(plain); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp db: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp db: %w", err)
	}

	if err := checkIntegrity(ctx, tmpName); err != nil {
		return err
	}

	if err := os.Rename(tmpName, dbPath); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")

	slog.Info("backup restored", "path", dbPath)
	return nil
}

func checkIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".daybook-backup-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp backup: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod backup: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename backup: %w", err)
	}
	return nil
}
