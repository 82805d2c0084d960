package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"sheet-sync/internal/config"
	"sheet-sync/internal/storage"
)

var ErrRunNotFound = errors.New("run not found")

// DDL совместим и с MySQL, и с SQLite
const schema = `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id          VARCHAR(36)  NOT NULL PRIMARY KEY,
		operation   VARCHAR(32)  NOT NULL,
		doc_id      VARCHAR(128) NOT NULL,
		status      VARCHAR(16)  NOT NULL,
		detail      TEXT,
		started_at  DATETIME     NOT NULL,
		finished_at DATETIME     NOT NULL
	)
`

type Storage struct {
	db *sql.DB
}

func New(cfg config.Journal) (*Storage, error) {
	const op = "storage.journal.New"

	switch cfg.Driver {
	case "mysql", "sqlite3":
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, cfg.Driver)
	}

	dsn, err := driverDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: create schema: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// driverDSN для mysql включает parseTime, без него DATETIME не сканируется в time.Time
func driverDSN(cfg config.Journal) (string, error) {
	if cfg.Driver != "mysql" {
		return cfg.DSN, nil
	}

	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) SaveRun(ctx context.Context, run storage.Run) error {
	const op = "storage.journal.SaveRun"

	stmt := `INSERT INTO sync_runs (id, operation, doc_id, status, detail, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, stmt,
		run.ID,
		run.Operation,
		run.DocID,
		string(run.Status),
		string(run.Detail),
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	const op = "storage.journal.GetRun"

	query := `
		SELECT id, operation, doc_id, status, detail, started_at, finished_at
		FROM sync_runs
		WHERE id = ?
	`

	run := &storage.Run{}
	var (
		status string
		detail sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Operation,
		&run.DocID,
		&status,
		&detail,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id='%s': %w", op, id, ErrRunNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	run.Status = storage.Status(status)
	if detail.Valid && detail.String != "" {
		run.Detail = []byte(detail.String)
	}
	return run, nil
}

// ListRuns - последние запуски по документу, новые первыми
func (s *Storage) ListRuns(ctx context.Context, docID string, limit int) ([]*storage.Run, error) {
	const op = "storage.journal.ListRuns"

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, doc_id, status, started_at, finished_at
		FROM sync_runs
		WHERE doc_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, docID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var runs []*storage.Run
	for rows.Next() {
		run := &storage.Run{}
		var status string
		if err := rows.Scan(&run.ID, &run.Operation, &run.DocID, &status, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		run.Status = storage.Status(status)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}
	return runs, nil
}

// Prune удаляет записи старше before, возвращает число удаленных
func (s *Storage) Prune(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.journal.Prune"

	res, err := s.db.ExecContext(ctx, `DELETE FROM sync_runs WHERE started_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.RowsAffected()
}
