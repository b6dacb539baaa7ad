package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"duit/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository is the Store backend for installs that want the Sheets
// sync worker: each row carries a synced flag and a version so the worker
// can find pending work after a crash or a missed message.
type SQLiteRepository struct {
	db      *sql.DB
	version atomic.Uint64
	now     func() time.Time
}

// PendingTransaction is the minimal row shape queued for Sheets sync.
type PendingTransaction struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db, now: time.Now}
	if err := repo.seedIfEmpty(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed transactions: %w", err)
	}
	return repo, nil
}

// migrateSchema brings the transactions schema up to date from the
// embedded migration files. The migrator gets its own connection because
// closing it tears the connection down with it; the repository's pool
// must outlive the migration. An already-current schema is not an error.
func migrateSchema(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		migrateDB.Close()
		return fmt.Errorf("prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		migrateDB.Close()
		return fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) seedIfEmpty(ctx context.Context) error {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if count > 0 {
		return nil
	}
	seed := SeedTransactions(r.now())
	// Insert oldest-first so rowid order matches "most recently added
	// first" when listing.
	for i := len(seed) - 1; i >= 0; i-- {
		if err := r.insert(ctx, seed[i]); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "Seeded transaction store", "backend", "sqlite", "count", len(seed))
	return nil
}

func (r *SQLiteRepository) insert(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, title, amount, category, type, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Title, tx.Amount.Rupiah, tx.Category, string(tx.Type),
		tx.Date.Format(time.RFC3339), tx.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func scanTransaction(scan func(dest ...any) error) (core.Transaction, error) {
	var (
		tx            core.Transaction
		typ           string
		date, created string
	)
	if err := scan(&tx.ID, &tx.Title, &tx.Amount.Rupiah, &tx.Category, &typ, &date, &created); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.Type(typ)
	var err error
	if tx.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse date: %w", tx.ID, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse created_at: %w", tx.ID, err)
	}
	return tx, nil
}

const txColumns = `id, title, amount, category, type, date, created_at`

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := r.now()
	tx.ID = NewID(now)
	tx.CreatedAt = now
	if err := r.insert(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"title", tx.Title,
		"amount", tx.Amount.Rupiah,
		"type", string(tx.Type))
	return tx, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, amount = ?, category = ?, type = ?, date = ?,
		     version = version + 1, synced = 0, sync_error = 0
		 WHERE id = ?`,
		tx.Title, tx.Amount.Rupiah, tx.Category, string(tx.Type),
		tx.Date.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Transaction updated", "id", id, "title", tx.Title)
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove transaction %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.version.Add(1)
	slog.InfoContext(ctx, "Transaction removed", "id", id)
	return nil
}

func (r *SQLiteRepository) Version() uint64 {
	return r.version.Load()
}

// GetPending returns transactions awaiting Sheets sync, oldest first.
func (r *SQLiteRepository) GetPending(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM transactions
		 WHERE synced = 0 AND sync_error = 0
		 ORDER BY rowid ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingTransaction
	for rows.Next() {
		var (
			p       PendingTransaction
			created string
		)
		if err := rows.Scan(&p.ID, &p.Version, &created); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("pending transaction %s: parse created_at: %w", p.ID, err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records a successful Sheets append.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError parks a transaction so the periodic scan stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
