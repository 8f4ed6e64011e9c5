package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/store"
)

// CreateJob inserts a new job row. The inputs, options, outputs and
// metadata sub-documents are stored as JSON text.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	query := `
		INSERT INTO jobs (id, pipeline, status, inputs, options, outputs, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	inputs, options, outputs, metadata, err := marshalDocs(j)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		j.ID,
		j.Pipeline,
		j.Status,
		inputs,
		options,
		outputs,
		metadata,
		j.Metadata.CreatedAt,
	)
	return err
}

// GetJob returns a job by its id.
func (s *Store) GetJob(ctx context.Context, id string) (*job.Job, error) {
	query := "SELECT id, pipeline, status, inputs, options, outputs, metadata FROM jobs WHERE id = ?"

	j, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return j, nil
}

// UpdateJob persists the full current state of the job.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	query := `
		UPDATE jobs
		SET status = ?, inputs = ?, options = ?, outputs = ?, metadata = ?
		WHERE id = ?
	`

	inputs, options, outputs, metadata, err := marshalDocs(j)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query,
		j.Status,
		inputs,
		options,
		outputs,
		metadata,
		j.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ClaimJob transitions a queued job to running. The conditional
// update serializes concurrent execution attempts: only one caller
// observes a claimed=true result.
func (s *Store) ClaimJob(ctx context.Context, id string) (bool, error) {
	query := "UPDATE jobs SET status = ? WHERE id = ? AND status = ?"

	res, err := s.db.ExecContext(ctx, query, job.StatusRunning, id, job.StatusQueued)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListJobs returns jobs ordered by creation time descending.
func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]*job.Job, error) {
	query := `
		SELECT id, pipeline, status, inputs, options, outputs, metadata
		FROM jobs
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountByStatus returns the number of jobs in the given status.
func (s *Store) CountByStatus(ctx context.Context, status job.Status) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE status = ?", status).Scan(&count)
	return count, err
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*job.Job, error) {
	var (
		j                                  job.Job
		inputs, options, outputs, metadata []byte
	)
	if err := row.Scan(&j.ID, &j.Pipeline, &j.Status, &inputs, &options, &outputs, &metadata); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(inputs, &j.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs for job %s: %w", j.ID, err)
	}
	if err := json.Unmarshal(options, &j.Options); err != nil {
		return nil, fmt.Errorf("decode options for job %s: %w", j.ID, err)
	}
	if err := json.Unmarshal(outputs, &j.Outputs); err != nil {
		return nil, fmt.Errorf("decode outputs for job %s: %w", j.ID, err)
	}
	if err := json.Unmarshal(metadata, &j.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata for job %s: %w", j.ID, err)
	}
	return &j, nil
}

func marshalDocs(j *job.Job) (inputs, options, outputs, metadata []byte, err error) {
	if inputs, err = json.Marshal(j.Inputs); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode inputs: %w", err)
	}
	if options, err = json.Marshal(j.Options); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode options: %w", err)
	}
	if outputs, err = json.Marshal(j.Outputs); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode outputs: %w", err)
	}
	if metadata, err = json.Marshal(j.Metadata); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode metadata: %w", err)
	}
	return inputs, options, outputs, metadata, nil
}
