package sqlite

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func sampleJob() *job.Job {
	j := job.New("text_to_image", job.Inputs{Text: "a red fox"}, job.Options{"style": "cinematic"})
	j.ID = "a8098c1a-f86e-11da-bd1a-00112444be1e"
	return j
}

func jobColumns() []string {
	return []string{"id", "pipeline", "status", "inputs", "options", "outputs", "metadata"}
}

func jobRow(t *testing.T, j *job.Job) []driverValue {
	t.Helper()
	inputs, _ := json.Marshal(j.Inputs)
	options, _ := json.Marshal(j.Options)
	outputs, _ := json.Marshal(j.Outputs)
	metadata, _ := json.Marshal(j.Metadata)
	return []driverValue{j.ID, j.Pipeline, string(j.Status), inputs, options, outputs, metadata}
}

type driverValue = driver.Value

func TestCreateJob(t *testing.T) {
	s, mock := newMockStore(t)
	j := sampleJob()

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(j.ID, j.Pipeline, j.Status, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), j.Metadata.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetJob(t *testing.T) {
	s, mock := newMockStore(t)
	j := sampleJob()
	j.Outputs["image_url"] = "http://img.example.com/1.png"
	j.Status = job.StatusCompleted

	mock.ExpectQuery("SELECT id, pipeline, status, inputs, options, outputs, metadata FROM jobs WHERE id = ?").
		WithArgs(j.ID).
		WillReturnRows(sqlmock.NewRows(jobColumns()).AddRow(jobRow(t, j)...))

	got, err := s.GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != j.ID || got.Pipeline != j.Pipeline || got.Status != job.StatusCompleted {
		t.Errorf("got %+v", got)
	}
	if got.Inputs.Text != "a red fox" {
		t.Errorf("inputs not decoded: %+v", got.Inputs)
	}
	if got.Outputs["image_url"] != "http://img.example.com/1.png" {
		t.Errorf("outputs not decoded: %+v", got.Outputs)
	}
	if got.Options["style"] != "cinematic" {
		t.Errorf("options not decoded: %+v", got.Options)
	}
}

func TestGetJobNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, pipeline, status, inputs, options, outputs, metadata FROM jobs WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	_, err := s.GetJob(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateJob(t *testing.T) {
	s, mock := newMockStore(t)
	j := sampleJob()
	j.Status = job.StatusFailed
	j.Metadata.ErrorMessage = "worker image: timeout"

	mock.ExpectExec("UPDATE jobs").
		WithArgs(j.Status, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), j.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.UpdateJob(context.Background(), j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateJobNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	j := sampleJob()

	mock.ExpectExec("UPDATE jobs").
		WithArgs(j.Status, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), j.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdateJob(context.Background(), j); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimJob(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantClaimed  bool
	}{
		{"claims queued job", 1, true},
		{"does not claim running job", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectExec("UPDATE jobs SET status = \\? WHERE id = \\? AND status = \\?").
				WithArgs(job.StatusRunning, "some-id", job.StatusQueued).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			claimed, err := s.ClaimJob(context.Background(), "some-id")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claimed != tt.wantClaimed {
				t.Errorf("got claimed=%v want %v", claimed, tt.wantClaimed)
			}
		})
	}
}

func TestListJobs(t *testing.T) {
	s, mock := newMockStore(t)

	j1 := sampleJob()
	j2 := job.New("speech_to_text", job.Inputs{AudioURL: "http://example.com/a.wav"}, nil)
	j2.Metadata.CreatedAt = j1.Metadata.CreatedAt.Add(time.Minute)

	// Newest first
	rows := sqlmock.NewRows(jobColumns()).
		AddRow(jobRow(t, j2)...).
		AddRow(jobRow(t, j1)...)

	mock.ExpectQuery("SELECT id, pipeline, status, inputs, options, outputs, metadata\\s+FROM jobs\\s+ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(rows)

	jobs, err := s.ListJobs(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != j2.ID {
		t.Errorf("order not preserved: %s first", jobs[0].ID)
	}
}

func TestListJobsEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, pipeline, status, inputs, options, outputs, metadata\\s+FROM jobs").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	jobs, err := s.ListJobs(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
}

func TestCountByStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM jobs WHERE status = \\?").
		WithArgs(job.StatusRunning).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.CountByStatus(context.Background(), job.StatusRunning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("got %d want 3", count)
	}
}
