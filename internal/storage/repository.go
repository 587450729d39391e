package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"coachpay/internal/core"
	"coachpay/internal/sheets"

	_ "modernc.org/sqlite"
)

var _ sheets.RecordStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// PendingRecord is a stored record not yet mirrored to the spreadsheet.
type PendingRecord struct {
	Seq    int64
	Record core.TrainingRecord
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection keeps SQLITE_BUSY out of the request path.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
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

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const insertRecord = `INSERT INTO records
	(id, first_name, last_name, category, role, units, home_games, away_games, month, days, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `seq, id, first_name, last_name, category, role, units, home_games, away_games, month, days, created_at`

// Append inserts the records in one transaction, preserving their order.
func (r *SQLiteRepository) Append(ctx context.Context, records []core.TrainingRecord) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		created := ""
		if !rec.CreatedAt.IsZero() {
			created = rec.CreatedAt.Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.FirstName, rec.LastName, string(rec.Category), string(rec.Role),
			rec.Units, rec.HomeGames, rec.AwayGames, int(rec.Month), formatDays(rec.Days), created,
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}

	slog.InfoContext(ctx, "Records saved to SQLite", "count", len(records))
	return nil
}

// ReadAll returns every record in insertion order.
func (r *SQLiteRepository) ReadAll(ctx context.Context) ([]core.TrainingRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	pending, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, core.ErrNotFound
	}
	out := make([]core.TrainingRecord, len(pending))
	for i, p := range pending {
		out[i] = p.Record
	}
	return out, nil
}

// Clear deletes every record, synced or not.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Records cleared from SQLite", "count", n)
	return nil
}

// PendingSync returns up to limit records that have not been mirrored yet,
// oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM records WHERE synced_at IS NULL ORDER BY seq LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending records: %w", err)
	}
	return scanRecords(rows)
}

// CountPending returns how many records are waiting to be mirrored.
func (r *SQLiteRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE synced_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending records: %w", err)
	}
	return n, nil
}

// MarkSynced stamps the given sequence numbers as mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, seqs []int64, at time.Time) error {
	if len(seqs) == 0 {
		return nil
	}
	placeholders := make([]string, len(seqs))
	args := make([]any, 0, len(seqs)+1)
	args = append(args, at.UTC().Format(time.RFC3339Nano))
	for i, s := range seqs {
		placeholders[i] = "?"
		args = append(args, s)
	}
	query := `UPDATE records SET synced_at = ? WHERE seq IN (` + strings.Join(placeholders, ",") + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark records synced: %w", err)
	}
	slog.InfoContext(ctx, "Records marked as synced", "count", len(seqs))
	return nil
}

func scanRecords(rows *sql.Rows) ([]PendingRecord, error) {
	defer rows.Close()
	var out []PendingRecord
	for rows.Next() {
		var (
			p                    PendingRecord
			category, role, days string
			created              string
			month                int
		)
		rec := &p.Record
		if err := rows.Scan(&p.Seq, &rec.ID, &rec.FirstName, &rec.LastName, &category, &role,
			&rec.Units, &rec.HomeGames, &rec.AwayGames, &month, &days, &created); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Category = core.Category(category)
		rec.Role = core.Role(role)
		rec.Month = core.Month(month)
		var err error
		if rec.Days, err = parseDays(days); err != nil {
			return nil, fmt.Errorf("record %d: %w", p.Seq, err)
		}
		if created != "" {
			if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
				return nil, fmt.Errorf("record %d: parse created_at: %w", p.Seq, err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func formatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, " ")
}

func parseDays(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Fields(s) {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid day %q", f)
		}
		out = append(out, d)
	}
	return out, nil
}
