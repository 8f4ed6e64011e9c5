// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the gateway.
package api

import "time"

// JobInputs is the sparse input record for a job request.
type JobInputs struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// CreateJobRequest is the request body for creating a new job.
// Options are passed through to workers verbatim.
type CreateJobRequest struct {
	Pipeline string         `json:"pipeline"`
	Inputs   JobInputs      `json:"inputs"`
	Options  map[string]any `json:"options,omitempty"`
}

// JobMetadata mirrors the job metadata sub-document.
type JobMetadata struct {
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	WorkerTrail  []string   `json:"worker_trail,omitempty"`
}

// JobRecord is the full job representation returned by the gateway.
type JobRecord struct {
	JobID    string            `json:"job_id"`
	Pipeline string            `json:"pipeline"`
	Inputs   JobInputs         `json:"inputs"`
	Options  map[string]any    `json:"options"`
	Status   string            `json:"status"`
	Outputs  map[string]string `json:"outputs"`
	Metadata JobMetadata       `json:"metadata"`
}

// PipelineInfo describes one registered pipeline type.
type PipelineInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// PipelinesResponse is the response body for GET /pipelines.
type PipelinesResponse struct {
	Pipelines []PipelineInfo `json:"pipelines"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
