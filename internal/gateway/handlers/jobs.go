package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/logger"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/store"
	"github.com/amine-mosbah/genesis-multimodal-ai/pkg/api"
)

// CreateJob handles POST /jobs.
// Validation errors are rejected synchronously before a job record
// exists; everything that can go wrong afterwards is captured inside
// the job record and observed by polling.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)

	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	def, err := h.registry.Resolve(req.Pipeline)
	if err != nil {
		h.httpError(w, fmt.Sprintf("Unknown pipeline: %s", req.Pipeline), http.StatusBadRequest)
		return
	}

	inputs := job.Inputs{
		Text:     strings.TrimSpace(req.Inputs.Text),
		ImageURL: strings.TrimSpace(req.Inputs.ImageURL),
		AudioURL: strings.TrimSpace(req.Inputs.AudioURL),
	}

	if missing := missingInputs(def.RequiredInputs(), inputs); len(missing) > 0 {
		h.httpError(w,
			fmt.Sprintf("Missing required input for pipeline %s: %s", req.Pipeline, strings.Join(missing, ", ")),
			http.StatusBadRequest)
		return
	}

	j := job.New(req.Pipeline, inputs, req.Options)

	if err := h.store.CreateJob(ctx, j); err != nil {
		log.Error("failed to create job", "error", err)
		h.httpError(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	// Fire-and-forget: the caller gets the queued record back without
	// waiting for completion. The detached context keeps request
	// values but survives the response being written. The executor
	// gets its own copy of the job so its mutations cannot race the
	// response encoder below.
	execCtx := context.WithoutCancel(ctx)
	execJob := j.Clone()
	go func() {
		if err := h.runner.Execute(execCtx, execJob); err != nil {
			log.Error("execution error", "job_id", execJob.ID, "error", err)
		}
	}()

	log.Info("job created", "job_id", j.ID, "pipeline", j.Pipeline)
	h.respondJson(w, http.StatusCreated, j)
}

// GetJob handles GET /jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	j, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Job not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context(), h.logger).Error("failed to get job", "job_id", id, "error", err)
		h.httpError(w, "Failed to get job", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, j)
}

// ListJobs handles GET /jobs?limit=&offset=.
// Results are ordered by creation time descending and capped at the
// configured maximum page size.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", h.pages.Default)
	if err != nil {
		h.httpError(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.httpError(w, "Invalid offset", http.StatusBadRequest)
		return
	}
	if limit > h.pages.Max {
		limit = h.pages.Max
	}

	jobs, err := h.store.ListJobs(r.Context(), limit, offset)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).Error("failed to list jobs", "error", err)
		h.httpError(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, jobs)
}

func missingInputs(required []string, inputs job.Inputs) []string {
	var missing []string
	for _, field := range required {
		if inputs.Field(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}
