package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists jobs to a local database file so history
// survives daemon restarts.
type SQLiteStore struct {
	db *sql.DB
}

const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	video_id TEXT NOT NULL,
	status TEXT NOT NULL,
	current_stage INTEGER NOT NULL DEFAULT 0,
	stage_label TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	completed_at TEXT,
	result_json TEXT,
	error TEXT,
	log_lines_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_started_at ON jobs(started_at);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(jobsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, job *Job) error {
	resultJSON, logJSON, err := encodeJob(job)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, source_url, video_id, status, current_stage, stage_label,
			started_at, completed_at, result_json, error, log_lines_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.SourceURL, job.VideoID, string(job.Status), job.CurrentStage, job.StageLabel,
		formatTime(job.StartedAt), nullableTime(job.CompletedAt), resultJSON, nullableString(job.Error), logJSON)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, video_id, status, current_stage, stage_label,
			started_at, completed_at, result_json, error, log_lines_json
		FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func (s *SQLiteStore) Update(ctx context.Context, job *Job) error {
	resultJSON, logJSON, err := encodeJob(job)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, current_stage = ?, stage_label = ?,
			completed_at = ?, result_json = ?, error = ?, log_lines_json = ?
		WHERE id = ?`,
		string(job.Status), job.CurrentStage, job.StageLabel,
		nullableTime(job.CompletedAt), resultJSON, nullableString(job.Error), logJSON, job.ID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, status Status) ([]*Job, error) {
	query := `
		SELECT id, source_url, video_id, status, current_stage, stage_label,
			started_at, completed_at, result_json, error, log_lines_json
		FROM jobs`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY started_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job         Job
		status      string
		startedAt   string
		completedAt sql.NullString
		resultJSON  sql.NullString
		errMsg      sql.NullString
		logJSON     sql.NullString
	)
	err := row.Scan(&job.ID, &job.SourceURL, &job.VideoID, &status, &job.CurrentStage,
		&job.StageLabel, &startedAt, &completedAt, &resultJSON, &errMsg, &logJSON)
	if err != nil {
		return nil, err
	}

	job.Status = Status(status)
	if job.StartedAt, err = parseTimeString(startedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid && completedAt.String != "" {
		if job.CompletedAt, err = parseTimeString(completedAt.String); err != nil {
			return nil, err
		}
	}
	if resultJSON.Valid && resultJSON.String != "" {
		job.Result = &Result{}
		if err := json.Unmarshal([]byte(resultJSON.String), job.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	job.Error = errMsg.String
	if logJSON.Valid && logJSON.String != "" {
		if err := json.Unmarshal([]byte(logJSON.String), &job.LogLines); err != nil {
			return nil, fmt.Errorf("decode log lines: %w", err)
		}
	}
	return &job, nil
}

func encodeJob(job *Job) (resultJSON, logJSON sql.NullString, err error) {
	if job.Result != nil {
		data, marshalErr := json.Marshal(job.Result)
		if marshalErr != nil {
			return resultJSON, logJSON, fmt.Errorf("encode result: %w", marshalErr)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}
	if len(job.LogLines) > 0 {
		data, marshalErr := json.Marshal(job.LogLines)
		if marshalErr != nil {
			return resultJSON, logJSON, fmt.Errorf("encode log lines: %w", marshalErr)
		}
		logJSON = sql.NullString{String: string(data), Valid: true}
	}
	return resultJSON, logJSON, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseTimeString(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return t, nil
}
