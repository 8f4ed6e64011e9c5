// Package job defines the job model shared by the store, the executor
// and the gateway API.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a job.
// Transitions are one-directional: queued -> running -> completed|failed.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Inputs holds the sparse input record for a job. Only the fields
// relevant to the pipeline type are expected to be populated.
type Inputs struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// Input field names as they appear in pipeline step mappings.
const (
	FieldText     = "text"
	FieldImageURL = "image_url"
	FieldAudioURL = "audio_url"
)

// Field returns the value of the named input field, or "" if the name
// is not an input field.
func (i Inputs) Field(name string) string {
	switch name {
	case FieldText:
		return i.Text
	case FieldImageURL:
		return i.ImageURL
	case FieldAudioURL:
		return i.AudioURL
	}
	return ""
}

// Options holds optional generation parameters (style, language,
// quality, model override, ...). They are passed through to workers
// verbatim; unrecognized keys are ignored by workers, not rejected.
type Options map[string]any

// Outputs is the sparse output record, populated incrementally as
// pipeline steps complete. Fields are never cleared once set.
type Outputs map[string]string

// Metadata tracks timestamps and diagnostics for one job.
type Metadata struct {
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	WorkerTrail  []string   `json:"worker_trail,omitempty"`
}

// Job is the persisted unit of work tracking one pipeline invocation.
type Job struct {
	ID       string   `json:"job_id"`
	Pipeline string   `json:"pipeline"`
	Inputs   Inputs   `json:"inputs"`
	Options  Options  `json:"options"`
	Status   Status   `json:"status"`
	Outputs  Outputs  `json:"outputs"`
	Metadata Metadata `json:"metadata"`
}

// Clone returns a deep copy sharing no mutable state with j. The
// gateway hands the executor a clone so the HTTP response can encode
// the queued record while execution mutates its own copy.
func (j *Job) Clone() *Job {
	c := *j
	c.Options = make(Options, len(j.Options))
	for k, v := range j.Options {
		c.Options[k] = v
	}
	c.Outputs = make(Outputs, len(j.Outputs))
	for k, v := range j.Outputs {
		c.Outputs[k] = v
	}
	if j.Metadata.StartedAt != nil {
		t := *j.Metadata.StartedAt
		c.Metadata.StartedAt = &t
	}
	if j.Metadata.CompletedAt != nil {
		t := *j.Metadata.CompletedAt
		c.Metadata.CompletedAt = &t
	}
	c.Metadata.WorkerTrail = append([]string(nil), j.Metadata.WorkerTrail...)
	return &c
}

// New creates a queued job with a fresh id and creation timestamp.
func New(pipeline string, inputs Inputs, options Options) *Job {
	if options == nil {
		options = Options{}
	}
	return &Job{
		ID:       uuid.NewString(),
		Pipeline: pipeline,
		Inputs:   inputs,
		Options:  options,
		Status:   StatusQueued,
		Outputs:  Outputs{},
		Metadata: Metadata{
			CreatedAt: time.Now().UTC(),
		},
	}
}
