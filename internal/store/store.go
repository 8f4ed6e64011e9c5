// Package store contains the persistence layer for job records.
package store

import (
	"context"
	"errors"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

// JobStore handles the persistence of job records. Implementations
// must support concurrent create/update from multiple in-flight
// executions; updates to a single job are serialized by the executor
// holding the only active execution for that job.
type JobStore interface {
	// CreateJob inserts a new job record.
	CreateJob(ctx context.Context, j *job.Job) error

	// GetJob returns a job by its id, or ErrNotFound.
	GetJob(ctx context.Context, id string) (*job.Job, error)

	// UpdateJob persists the full current state of the job.
	UpdateJob(ctx context.Context, j *job.Job) error

	// ClaimJob transitions a job from queued to running. It reports
	// false when the job was not in the queued state, which guarantees
	// a single execution attempt per job.
	ClaimJob(ctx context.Context, id string) (bool, error)

	// ListJobs returns up to limit jobs ordered by creation time
	// descending, skipping offset records.
	ListJobs(ctx context.Context, limit, offset int) ([]*job.Job, error)

	// CountByStatus returns the number of jobs in the given status.
	CountByStatus(ctx context.Context, status job.Status) (int64, error)

	// Ping verifies the underlying storage is reachable.
	Ping(ctx context.Context) error
}
