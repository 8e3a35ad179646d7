package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the storage engine: a durable, queryable table of
// transactions backed by an embedded SQLite database. One instance is opened
// per process and held for the process lifetime.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert implements store.TransactionWriter. The input is validated before
// anything is written; the table's CHECK constraint on type is the backstop.
func (r *SQLiteRepository) Insert(ctx context.Context, in core.TransactionInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (type, amount, description, category, date)
		VALUES (?, ?, ?, ?, ?)`,
		in.Type.String(), in.Amount, nullableText(in.Description), in.Category, in.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		applog.FieldTransactionID, id,
		applog.FieldType, in.Type.String(),
		applog.FieldAmount, in.Amount,
		applog.FieldCategory, in.Category,
		applog.FieldDate, in.Date.String())

	return id, nil
}

// ListByMonth implements store.TransactionLister. The month is matched with a
// half-open date range; ordering is date descending, then creation time
// descending with id as the tiebreak (created_at has second granularity).
func (r *SQLiteRepository) ListByMonth(ctx context.Context, key core.MonthKey) ([]core.Transaction, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("list by month: %w", err)
	}
	from, to := key.Range()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, description, category, date, created_at
		FROM transactions
		WHERE date >= ? AND date < ?
		ORDER BY date DESC, created_at DESC, id DESC`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("query transactions by month: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// Delete implements store.TransactionWriter. A missing id is a successful
// no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id, applog.FieldRowsAffected, affected)

	return nil
}

// Update implements store.TransactionWriter. All mutable fields are replaced;
// id and created_at never change. The rows-affected count lets callers detect
// a missing id without making it an error.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, in core.TransactionInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, amount = ?, description = ?, category = ?, date = ?
		WHERE id = ?`,
		in.Type.String(), in.Amount, nullableText(in.Description), in.Category, in.Date.String(), id)
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", applog.FieldTransactionID, id, applog.FieldRowsAffected, affected)

	return affected, nil
}

// SummaryByMonth implements store.SummaryReader. Rows are grouped by
// (type, category); the order is type ascending then category ascending,
// chosen for determinism rather than required by callers.
func (r *SQLiteRepository) SummaryByMonth(ctx context.Context, key core.MonthKey) ([]core.TypeCategoryTotal, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("summary by month: %w", err)
	}
	from, to := key.Range()

	rows, err := r.db.QueryContext(ctx, `
		SELECT type, category, SUM(amount) AS total, COUNT(*) AS count
		FROM transactions
		WHERE date >= ? AND date < ?
		GROUP BY type, category
		ORDER BY type ASC, category ASC`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("query month summary: %w", err)
	}
	defer rows.Close()

	summary := []core.TypeCategoryTotal{}
	for rows.Next() {
		var row core.TypeCategoryTotal
		var typ string
		if err := rows.Scan(&typ, &row.Category, &row.Total, &row.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		row.Type = core.TransactionType(typ)
		summary = append(summary, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}

	return summary, nil
}

// CategorySummary implements store.SummaryReader. Largest total first;
// category name ascending breaks ties deterministically.
func (r *SQLiteRepository) CategorySummary(ctx context.Context, typ core.TransactionType, key core.MonthKey) ([]core.CategoryTotal, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("category summary: %w: %q", core.ErrInvalidType, typ)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	from, to := key.Range()

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount) AS total, COUNT(*) AS count
		FROM transactions
		WHERE type = ? AND date >= ? AND date < ?
		GROUP BY category
		ORDER BY total DESC, category ASC`,
		typ.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("query category summary: %w", err)
	}
	defer rows.Close()

	summary := []core.CategoryTotal{}
	for rows.Next() {
		var row core.CategoryTotal
		if err := rows.Scan(&row.Category, &row.Total, &row.Count); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		summary = append(summary, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(rs rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		typ       string
		desc      sql.NullString
		date      string
		createdAt string
	)
	if err := rs.Scan(&tx.ID, &typ, &tx.Amount, &desc, &tx.Category, &date, &createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Type = core.TransactionType(typ)
	tx.Description = desc.String

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date: %w", err)
	}
	tx.Date = d

	tx.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}

	return tx, nil
}

// parseTimestamp accepts the formats SQLite emits for CURRENT_TIMESTAMP
// defaults and driver-bound time values.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// nullableText keeps empty descriptions as NULL, matching the optional
// column semantics.
func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
