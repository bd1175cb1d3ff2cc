package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/common"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

// SQLiteStore persists jobs in a local SQLite file so a restart does not
// lose history. The extracted aggregate is stored as a JSON blob — the
// engine owns the shape, the store just keeps bytes.
type SQLiteStore struct {
	db *sql.DB
}

const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	input_type    TEXT NOT NULL,
	status        TEXT NOT NULL,
	filename      TEXT NOT NULL DEFAULT '',
	file_path     TEXT NOT NULL DEFAULT '',
	raw_response  TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	result_json   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_kind_created ON jobs(kind, created_at DESC);
`

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(jobsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate jobs table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, job *Job) error {
	if job == nil || job.ID == "" {
		return common.ErrInvalidInput
	}
	result, err := marshalResult(job)
	if err != nil {
		return common.WrapError(err, "encode job result")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, input_type, status, filename, file_path, raw_response, error_message, result_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			raw_response = excluded.raw_response,
			error_message = excluded.error_message,
			result_json = excluded.result_json,
			updated_at = excluded.updated_at`,
		job.ID, job.Kind, job.InputType, job.Status, job.Filename, job.FilePath,
		job.RawResponse, job.ErrorMessage, result, job.CreatedAt.UTC(), job.UpdatedAt.UTC(),
	)
	if err != nil {
		return common.WrapError(err, "persist job")
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, input_type, status, filename, file_path, raw_response, error_message, result_json, created_at, updated_at
		FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "load job")
	}
	return job, nil
}

func (s *SQLiteStore) List(ctx context.Context, kind constants.DocumentKind, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, kind, input_type, status, filename, file_path, raw_response, error_message, result_json, created_at, updated_at
		FROM jobs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list jobs")
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan job")
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return common.WrapError(err, "delete job")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*Job, error) {
	var (
		job     Job
		result  string
		created time.Time
		updated time.Time
	)
	if err := r.Scan(&job.ID, &job.Kind, &job.InputType, &job.Status, &job.Filename,
		&job.FilePath, &job.RawResponse, &job.ErrorMessage, &result, &created, &updated); err != nil {
		return nil, err
	}
	job.CreatedAt = created
	job.UpdatedAt = updated
	if result != "" {
		if err := unmarshalResult(&job, result); err != nil {
			return nil, err
		}
	}
	return &job, nil
}

func marshalResult(job *Job) (string, error) {
	switch {
	case job.Invoice != nil:
		b, err := json.Marshal(job.Invoice)
		return string(b), err
	case job.Order != nil:
		b, err := json.Marshal(job.Order)
		return string(b), err
	}
	return "", nil
}

func unmarshalResult(job *Job, result string) error {
	switch job.Kind {
	case constants.KindOrder:
		var ord entity.Order
		if err := json.Unmarshal([]byte(result), &ord); err != nil {
			return err
		}
		job.Order = &ord
	default:
		var inv entity.Invoice
		if err := json.Unmarshal([]byte(result), &inv); err != nil {
			return err
		}
		job.Invoice = &inv
	}
	return nil
}
