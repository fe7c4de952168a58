package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"blindrelay/internal/domain"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS invitations (
	id               BLOB PRIMARY KEY,
	inner_nonce      BLOB NOT NULL,
	inner_ciphertext BLOB NOT NULL,
	created_at       INTEGER NOT NULL,
	expires_at       INTEGER NOT NULL,
	fetched          INTEGER NOT NULL DEFAULT 0
)`

// Upgrades databases created before tombstones, which also stored times in
// milliseconds rather than nanoseconds.
var sqliteMigrateFetched = []string{
	`ALTER TABLE invitations ADD COLUMN fetched INTEGER NOT NULL DEFAULT 0`,
	`UPDATE invitations SET created_at = created_at * 1000000,
	 expires_at = CASE WHEN expires_at = 0 THEN 0 ELSE expires_at * 1000000 END`,
}

// SQLiteStore persists records in a SQLite database. The pool holds a single
// connection so writers never race for the database lock.
type SQLiteStore struct {
	sqlDB *sql.DB
	opts  options
}

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite store: ping: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite store: schema: %w", err)
	}
	if err := migrateFetched(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{sqlDB: sqlDB, opts: buildOptions(opts)}, nil
}

// Put inserts rec unless a live record or an unexpired tombstone exists for
// id. An expired row for the same id is replaced inside the same transaction.
func (s *SQLiteStore) Put(ctx context.Context, id domain.InvitationID, rec domain.StoredRecord) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM invitations WHERE id = ? AND expires_at != 0 AND expires_at <= ?`,
		id[:], toNanos(s.opts.now()),
	); err != nil {
		return fmt.Errorf("sqlite store: drop expired: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO invitations (id, inner_nonce, inner_ciphertext, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id[:], rec.InnerNonce[:], rec.InnerCiphertext,
		toNanos(rec.CreatedAt), toNanos(rec.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite store: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite store: insert: %w", err)
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return tx.Commit()
}

// GetAndDelete takes the live record for id, leaving a tombstone row behind.
// The single pooled connection is held for the whole transaction, so no other
// caller can observe the row between the read and the update.
func (s *SQLiteStore) GetAndDelete(ctx context.Context, id domain.InvitationID) (domain.StoredRecord, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoredRecord{}, fmt.Errorf("sqlite store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		nonce              []byte
		rec                domain.StoredRecord
		createdAt, expires int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT inner_nonce, inner_ciphertext, created_at, expires_at
		 FROM invitations WHERE id = ? AND fetched = 0`,
		id[:],
	).Scan(&nonce, &rec.InnerCiphertext, &createdAt, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.StoredRecord{}, fmt.Errorf("sqlite store: take: %w", err)
	}
	if len(nonce) != domain.NonceSize {
		return domain.StoredRecord{}, fmt.Errorf("sqlite store: stored nonce has %d bytes", len(nonce))
	}
	copy(rec.InnerNonce[:], nonce)
	rec.CreatedAt = fromNanos(createdAt)
	rec.ExpiresAt = fromNanos(expires)

	if rec.Expired(s.opts.now()) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id[:]); err != nil {
			return domain.StoredRecord{}, fmt.Errorf("sqlite store: drop expired: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return domain.StoredRecord{}, fmt.Errorf("sqlite store: commit: %w", err)
		}
		return domain.StoredRecord{}, domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE invitations SET fetched = 1, inner_nonce = x'', inner_ciphertext = x'' WHERE id = ?`,
		id[:],
	); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("sqlite store: tombstone: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("sqlite store: commit: %w", err)
	}
	return rec, nil
}

// DeleteExpired drops every record and tombstone expired at now. Only
// unfetched records are counted.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`DELETE FROM invitations WHERE expires_at != 0 AND expires_at <= ?
		 RETURNING fetched`,
		toNanos(now),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite store: sweep: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var fetched bool
		if err := rows.Scan(&fetched); err != nil {
			return 0, fmt.Errorf("sqlite store: sweep: %w", err)
		}
		if !fetched {
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("sqlite store: sweep: %w", err)
	}
	return n, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// migrateFetched upgrades an older database that lacks the fetched column.
func migrateFetched(sqlDB *sql.DB) error {
	var n int
	if err := sqlDB.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('invitations') WHERE name = 'fetched'`,
	).Scan(&n); err != nil {
		return fmt.Errorf("sqlite store: inspect schema: %w", err)
	}
	if n > 0 {
		return nil
	}
	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("sqlite store: migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range sqliteMigrateFetched {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite store: migrate: %w", err)
		}
	}
	return tx.Commit()
}

// toNanos maps the zero time to 0, meaning "never". Nanoseconds match the
// precision the other backends keep.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromNanos(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v).UTC()
}

// Compile-time assertion that SQLiteStore implements domain.RecordStore.
var _ domain.RecordStore = (*SQLiteStore)(nil)
