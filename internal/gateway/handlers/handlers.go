// Package handlers contains HTTP handlers for the gateway API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/pipeline"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/store"
	"github.com/amine-mosbah/genesis-multimodal-ai/pkg/api"
)

// Runner triggers asynchronous pipeline execution for a queued job.
type Runner interface {
	Execute(ctx context.Context, j *job.Job) error
}

// PageLimits bounds the list endpoint's pagination.
type PageLimits struct {
	Default int
	Max     int
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    store.JobStore
	registry *pipeline.Registry
	runner   Runner
	logger   *slog.Logger
	pages    PageLimits
}

// New creates a new Handlers instance with the given dependencies.
func New(s store.JobStore, r *pipeline.Registry, runner Runner, logger *slog.Logger, pages PageLimits) *Handlers {
	if pages.Default <= 0 {
		pages.Default = 50
	}
	if pages.Max < pages.Default {
		pages.Max = pages.Default
	}
	return &Handlers{
		store:    s,
		registry: r,
		runner:   runner,
		logger:   logger,
		pages:    pages,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
