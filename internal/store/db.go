package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-scout-export/internal/model"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("job not found")

// Store persists export jobs, their progress and their errors.
type Store struct {
	db *sql.DB
}

// JobRecord is the stored view of one export job.
type JobRecord struct {
	ID            string       `json:"id"`
	Teams         []model.Team `json:"teams"`
	Mode          model.Mode   `json:"mode"`
	Status        model.State  `json:"status"`
	ChunksTotal   int          `json:"chunksTotal"`
	ChunksLoaded  int          `json:"chunksLoaded"`
	ArtifactCount int          `json:"artifactCount"`
	Destination   string       `json:"destination,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// JobError is one error recorded for a job.
type JobError struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Open opens the job database at dbPath and creates its tables.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Create tables if not exists
	jobTable := `
	CREATE TABLE IF NOT EXISTS export_jobs (
		id TEXT PRIMARY KEY,
		teams TEXT,
		mode TEXT,
		status TEXT,
		chunks_total INTEGER DEFAULT 0,
		chunks_loaded INTEGER DEFAULT 0,
		artifact_count INTEGER DEFAULT 0,
		destination TEXT DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS export_job_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := db.Exec(jobTable); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(errorTable); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveJob stores a new export job
func (s *Store) SaveJob(ctx context.Context, job *model.ExportJob) error {
	teamsJSON, err := json.Marshal(job.Teams)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `INSERT INTO export_jobs (id, teams, mode, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, string(teamsJSON), string(job.Mode), string(model.StateIdle), now, now)
	return err
}

// UpdateJobStatus updates job status
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status model.State) error {
	return s.update(ctx, jobID, `status = ?`, string(status))
}

// SaveChunkProgress records how many chunks are loaded out of total
func (s *Store) SaveChunkProgress(ctx context.Context, jobID string, total, loaded int) error {
	return s.update(ctx, jobID, `chunks_total = ?, chunks_loaded = ?`, total, loaded)
}

// SaveLoaded records the number of artifacts being produced and where they go
func (s *Store) SaveLoaded(ctx context.Context, jobID string, artifacts int, destination string) error {
	return s.update(ctx, jobID, `artifact_count = ?, destination = ?`, artifacts, destination)
}

func (s *Store) update(ctx context.Context, jobID, set string, args ...any) error {
	args = append(args, time.Now().UTC(), jobID)
	result, err := s.db.ExecContext(ctx, `UPDATE export_jobs SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return nil
}

// SaveJobError records an error for a job
func (s *Store) SaveJobError(ctx context.Context, jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.ExecContext(ctx, `INSERT INTO export_job_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// GetJobErrors returns the errors of a job, oldest first
func (s *Store) GetJobErrors(ctx context.Context, jobID string) ([]JobError, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT error_message, created_at FROM export_job_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := []JobError{}
	for rows.Next() {
		var je JobError
		if err := rows.Scan(&je.Message, &je.CreatedAt); err != nil {
			return nil, err
		}
		errs = append(errs, je)
	}
	return errs, rows.Err()
}

const jobColumns = `id, teams, mode, status, chunks_total, chunks_loaded, artifact_count, destination, created_at, updated_at`

// ListJobs returns all jobs, newest first
func (s *Store) ListJobs(ctx context.Context) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM export_jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []JobRecord{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// GetJob fetches one job
func (s *Store) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM export_jobs WHERE id = ?`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*JobRecord, error) {
	var job JobRecord
	var teamsJSON, mode, status string
	if err := row.Scan(&job.ID, &teamsJSON, &mode, &status, &job.ChunksTotal, &job.ChunksLoaded,
		&job.ArtifactCount, &job.Destination, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(teamsJSON), &job.Teams); err != nil {
		return nil, fmt.Errorf("decode teams of job %s: %w", job.ID, err)
	}
	job.Mode = model.Mode(mode)
	job.Status = model.State(status)
	return &job, nil
}
