// Package storage keeps the last successfully fetched ledger collections in
// SQLite, along with the keys of notifications already sent.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finpanel/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when a source has never been saved.
var ErrNoSnapshot = errors.New("no stored snapshot")

// Fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SourceState describes the stored copy of one source.
type SourceState struct {
	Source    string
	FetchedAt time.Time
	Records   int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between the worker and the server.
	db.SetMaxOpenConns(1)

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

// SaveTransactions replaces the stored copy of a transaction source.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, source string, recs []core.TransactionRecord, at time.Time) error {
	return r.replace(ctx, source, len(recs), at, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE source = ?`, source); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
			(source, position, id, type, is_bill, issuer, amount_cents, due_date, category, status, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, t := range recs {
			var conf sql.NullFloat64
			if t.Confidence != nil {
				conf = sql.NullFloat64{Float64: *t.Confidence, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, source, i, t.ID, string(t.Type), t.IsBill, t.Issuer,
				t.Amount.Cents, nullDate(t.DueDate), t.Category, string(t.Status), conf); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// SaveInvestments replaces the stored investments.
func (r *SQLiteRepository) SaveInvestments(ctx context.Context, source string, recs []core.InvestmentRecord, at time.Time) error {
	return r.replace(ctx, source, len(recs), at, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM investments`); err != nil {
			return fmt.Errorf("clear investments: %w", err)
		}
		for i, inv := range recs {
			var current sql.NullInt64
			if inv.CurrentValue != nil {
				current = sql.NullInt64{Int64: inv.CurrentValue.Cents, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO investments
				(position, id, name, type, amount_invested_cents, current_value_cents, purchase_date, sell_date)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				i, inv.ID, inv.Name, string(inv.Type), inv.AmountInvested.Cents, current,
				nullDate(inv.PurchaseDate), nullDate(inv.SellDate)); err != nil {
				return fmt.Errorf("insert investment %s: %w", inv.ID, err)
			}
		}
		return nil
	})
}

// SaveGoals replaces the stored savings goals.
func (r *SQLiteRepository) SaveGoals(ctx context.Context, source string, goals []core.SavingsGoal, at time.Time) error {
	return r.replace(ctx, source, len(goals), at, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM goals`); err != nil {
			return fmt.Errorf("clear goals: %w", err)
		}
		for i, g := range goals {
			if _, err := tx.ExecContext(ctx, `INSERT INTO goals
				(position, id, name, description, target_amount_cents, current_amount_cents, deadline, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				i, g.ID, g.Name, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents,
				nullDate(g.Deadline), string(g.Status)); err != nil {
				return fmt.Errorf("insert goal %s: %w", g.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) replace(ctx context.Context, source string, n int, at time.Time, fill func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fill(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO source_state (source, fetched_at, records) VALUES (?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET fetched_at = excluded.fetched_at, records = excluded.records`,
		source, at.UTC().Format(timeLayout), n); err != nil {
		return fmt.Errorf("update source state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s snapshot: %w", source, err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite", "source", source, "records", n)
	return nil
}

// SourceState returns the stored state of a source, or ErrNoSnapshot.
func (r *SQLiteRepository) SourceState(ctx context.Context, source string) (SourceState, error) {
	st := SourceState{Source: source}
	var fetched string
	err := r.db.QueryRowContext(ctx, `SELECT fetched_at, records FROM source_state WHERE source = ?`, source).
		Scan(&fetched, &st.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("%s: %w", source, ErrNoSnapshot)
	}
	if err != nil {
		return st, fmt.Errorf("get source state: %w", err)
	}
	st.FetchedAt, err = time.Parse(timeLayout, fetched)
	if err != nil {
		return st, fmt.Errorf("parse fetched_at %q: %w", fetched, err)
	}
	return st, nil
}

// LoadTransactions returns the stored records of a transaction source in
// their original order.
func (r *SQLiteRepository) LoadTransactions(ctx context.Context, source string) ([]core.TransactionRecord, error) {
	if _, err := r.SourceState(ctx, source); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, is_bill, issuer, amount_cents, due_date, category, status, confidence
		FROM transactions WHERE source = ? ORDER BY position`, source)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.TransactionRecord{}
	for rows.Next() {
		var (
			t          core.TransactionRecord
			typ, st    string
			due        sql.NullString
			confidence sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &typ, &t.IsBill, &t.Issuer, &t.Amount.Cents, &due, &t.Category, &st, &confidence); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.ParseTxType(typ)
		t.Status = core.ParseStatus(st)
		t.DueDate = scanDate(due)
		if confidence.Valid {
			c := confidence.Float64
			t.Confidence = &c
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) LoadInvestments(ctx context.Context, source string) ([]core.InvestmentRecord, error) {
	if _, err := r.SourceState(ctx, source); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, amount_invested_cents, current_value_cents, purchase_date, sell_date
		FROM investments ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	out := []core.InvestmentRecord{}
	for rows.Next() {
		var (
			inv            core.InvestmentRecord
			typ            string
			current        sql.NullInt64
			purchase, sold sql.NullString
		)
		if err := rows.Scan(&inv.ID, &inv.Name, &typ, &inv.AmountInvested.Cents, &current, &purchase, &sold); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		inv.Type = core.ParseInvestmentType(typ)
		if current.Valid {
			inv.CurrentValue = &core.Money{Cents: current.Int64}
		}
		inv.PurchaseDate = scanDate(purchase)
		inv.SellDate = scanDate(sold)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) LoadGoals(ctx context.Context, source string) ([]core.SavingsGoal, error) {
	if _, err := r.SourceState(ctx, source); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, target_amount_cents, current_amount_cents, deadline, status
		FROM goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	out := []core.SavingsGoal{}
	for rows.Next() {
		var (
			g        core.SavingsGoal
			deadline sql.NullString
			st       string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &deadline, &st); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Deadline = scanDate(deadline)
		g.Status = core.ParseGoalStatus(st)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// NotificationSent reports whether a notification with key was recorded.
func (r *SQLiteRepository) NotificationSent(ctx context.Context, key string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM notifications_sent WHERE key = ?`, key).Scan(&n); err != nil {
		return false, fmt.Errorf("check notification %s: %w", key, err)
	}
	return n > 0, nil
}

// MarkNotificationSent records key; recording it twice is not an error.
func (r *SQLiteRepository) MarkNotificationSent(ctx context.Context, key, kind string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO notifications_sent (key, kind, sent_at) VALUES (?, ?, ?)`,
		key, kind, at.UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("mark notification %s: %w", key, err)
	}
	return nil
}

// PruneNotifications deletes records sent before cutoff and returns the count.
func (r *SQLiteRepository) PruneNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications_sent WHERE sent_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	return res.RowsAffected()
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanDate(s sql.NullString) core.Date {
	if !s.Valid {
		return core.Date{}
	}
	return core.ParseDueDate(s.String)
}
