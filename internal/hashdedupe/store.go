package hashdedupe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"curator/internal/fileutil"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS md5s (md5 TEXT, path TEXT)`

var backupPattern = regexp.MustCompile(`^(\d{4,})_`)

// Store persists the final hash table into the md5s table of a SQLite
// database shared with other tools. Every Replace copies the previous
// database into a numbered backup first.
type Store struct {
	path      string
	backupDir string
	simulate  bool
}

// NewStore returns a store for the database at path with backups in backupDir.
func NewStore(path, backupDir string, simulate bool) *Store {
	return &Store{path: path, backupDir: backupDir, simulate: simulate}
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Replace swaps the table content for table in one transaction and returns a
// human-readable summary. In simulate mode nothing is written.
func (s *Store) Replace(ctx context.Context, table map[string]string) (string, error) {
	if s.simulate {
		return "Simulate mode enabled.\nDatabase not updated.", nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}

	backup := ""
	if fileutil.Exists(s.path) {
		var err error
		backup, err = s.backup()
		if err != nil {
			return "", err
		}
	}

	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	hashes := make([]string, 0, len(table))
	for hash := range table {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	err = retryOnBusy(ctx, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin replace tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM md5s"); err != nil {
			return fmt.Errorf("clear md5s: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO md5s (md5, path) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, hash := range hashes {
			if _, err := stmt.ExecContext(ctx, hash, table[hash]); err != nil {
				return fmt.Errorf("insert %s: %w", hash, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if backup != "" {
		fmt.Fprintf(&b, "Previous database backed up to %s\n", backup)
	}
	fmt.Fprintf(&b, "Database now contains %d entries\nDatabase update completed.", len(table))
	return b.String(), nil
}

// Load reads the full md5s table. A missing database yields an empty table.
func (s *Store) Load(ctx context.Context) (map[string]string, error) {
	table := map[string]string{}
	if !fileutil.Exists(s.path) {
		return table, nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT md5, path FROM md5s")
	if err != nil {
		return nil, fmt.Errorf("query md5s: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var hash, path string
		if err := rows.Scan(&hash, &path); err != nil {
			return nil, fmt.Errorf("scan md5s: %w", err)
		}
		table[hash] = path
	}
	return table, rows.Err()
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create md5s table: %w", err)
	}
	return db, nil
}

// backup copies the current database into the next numbered slot.
func (s *Store) backup() (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	next, err := NextBackupNumber(s.backupDir)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.backupDir, fmt.Sprintf("%04d_%s", next, filepath.Base(s.path)))
	if err := fileutil.CopyFile(s.path, target); err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}
	return target, nil
}

// NextBackupNumber returns one more than the highest numbered backup in dir,
// or 1 when there is none. Gaps left by deleted backups are never reused.
func NextBackupNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 1, nil
		}
		return 0, fmt.Errorf("read backup directory: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		match := backupPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		if n, err := strconv.Atoi(match[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
