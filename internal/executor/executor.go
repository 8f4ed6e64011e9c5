// Package executor contains the pipeline execution engine. It maps a
// job's pipeline type to an ordered sequence of worker calls, threads
// intermediate data between steps and converts any step failure into
// a terminal failed state.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amine-mosbah/genesis-multimodal-ai/internal/job"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/pipeline"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/store"
	"github.com/amine-mosbah/genesis-multimodal-ai/internal/worker"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Executor orchestrates pipeline execution. One Execute call owns a
// job's entire lifecycle from claim to terminal state; distinct jobs
// run concurrently without shared mutable state.
type Executor struct {
	store    store.JobStore
	registry *pipeline.Registry
	invoker  worker.Invoker
	logger   *slog.Logger

	tracer       trace.Tracer
	jobsExecuted metric.Int64Counter
	stepDuration metric.Float64Histogram
}

// New creates an executor backed by the given store, registry and
// worker invoker.
func New(s store.JobStore, r *pipeline.Registry, inv worker.Invoker, logger *slog.Logger) *Executor {
	meter := otel.Meter("genesis-executor")

	jobsExecuted, err := meter.Int64Counter("genesis.jobs.executed",
		metric.WithDescription("Jobs that reached a terminal state, by pipeline and status"),
	)
	if err != nil {
		logger.Warn("failed to register jobs counter", "error", err)
	}

	stepDuration, err := meter.Float64Histogram("genesis.pipeline.step.duration",
		metric.WithDescription("Worker call duration per pipeline step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Warn("failed to register step duration histogram", "error", err)
	}

	return &Executor{
		store:        s,
		registry:     r,
		invoker:      inv,
		logger:       logger,
		tracer:       otel.Tracer("pipeline-executor"),
		jobsExecuted: jobsExecuted,
		stepDuration: stepDuration,
	}
}

// Execute runs the job's pipeline to a terminal state, mutating and
// persisting the job as it progresses. Worker-side errors never
// escape: they become a failed job with a diagnostic message. A job
// that is not in the queued state is left untouched.
func (e *Executor) Execute(ctx context.Context, j *job.Job) error {
	claimed, err := e.store.ClaimJob(ctx, j.ID)
	if err != nil {
		return fmt.Errorf("claim job %s: %w", j.ID, err)
	}
	if !claimed {
		e.logger.Warn("job not claimable, skipping", "job_id", j.ID, "status", j.Status)
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "execute_pipeline",
		trace.WithAttributes(
			attribute.String("job.id", j.ID),
			attribute.String("job.pipeline", j.Pipeline),
		),
	)
	defer span.End()

	now := time.Now().UTC()
	j.Status = job.StatusRunning
	j.Metadata.StartedAt = &now
	if err := e.store.UpdateJob(ctx, j); err != nil {
		e.logger.Error("failed to persist running state", "job_id", j.ID, "error", err)
	}

	// Orchestration bugs must not leave a job stuck in running.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during execution", "job_id", j.ID, "panic", r)
			e.fail(ctx, j, fmt.Sprintf("internal error: %v", r))
		}
	}()

	def, err := e.registry.Resolve(j.Pipeline)
	if err != nil {
		// Pipeline types are validated at creation; hitting this means
		// the registry changed underneath a queued job.
		span.RecordError(err)
		return e.fail(ctx, j, err.Error())
	}

	wctx := workingContext(j)

	for i, step := range def.Steps {
		if step.RequiresOption != "" && !optionSet(j.Options, step.RequiresOption) {
			e.logger.Debug("skipping conditional step",
				"job_id", j.ID, "capability", string(step.Capability), "option", step.RequiresOption)
			continue
		}

		result, err := e.runStep(ctx, j, i, step, wctx)
		if err != nil {
			if step.Optional {
				e.logger.Warn("optional step failed, continuing",
					"job_id", j.ID, "capability", string(step.Capability), "error", err)
				continue
			}
			span.RecordError(err)
			return e.fail(ctx, j, err.Error())
		}

		// Merge declared outputs into the working context so later
		// steps see them, and into job outputs so partial results
		// survive a later failure. A missing response field is a
		// silent no-op for that field.
		for _, out := range step.Outputs {
			v, ok := stringField(result, out.Field)
			if !ok {
				continue
			}
			wctx[out.Key()] = v
			if !out.ContextOnly {
				j.Outputs[out.Key()] = v
			}
		}
		j.Metadata.WorkerTrail = append(j.Metadata.WorkerTrail, string(step.Capability))

		if err := e.store.UpdateJob(ctx, j); err != nil {
			e.logger.Error("failed to persist step progress", "job_id", j.ID, "error", err)
		}
	}

	completed := time.Now().UTC()
	j.Status = job.StatusCompleted
	j.Metadata.CompletedAt = &completed
	if err := e.store.UpdateJob(ctx, j); err != nil {
		e.logger.Error("failed to persist completed state", "job_id", j.ID, "error", err)
		return fmt.Errorf("persist completed job %s: %w", j.ID, err)
	}

	e.recordTerminal(ctx, j)
	e.logger.Info("job completed", "job_id", j.ID, "pipeline", j.Pipeline,
		"workers", strings.Join(j.Metadata.WorkerTrail, ","))
	return nil
}

// runStep builds the step payload from the working context and
// invokes the capability's worker.
func (e *Executor) runStep(ctx context.Context, j *job.Job, index int, step pipeline.Step, wctx map[string]any) (map[string]any, error) {
	stepCtx, span := e.tracer.Start(ctx, "pipeline_step",
		trace.WithAttributes(
			attribute.String("job.id", j.ID),
			attribute.String("step.capability", string(step.Capability)),
			attribute.Int("step.index", index),
		),
	)
	defer span.End()

	payload := buildPayload(step, wctx, j.Options)

	start := time.Now()
	result, err := e.invoker.Invoke(stepCtx, string(step.Capability), payload)
	if e.stepDuration != nil {
		e.stepDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(
				attribute.String("pipeline", j.Pipeline),
				attribute.String("capability", string(step.Capability)),
				attribute.Bool("success", err == nil),
			),
		)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// fail marks the job terminally failed with the given diagnostic.
// Outputs produced by earlier steps are left in place. A persist
// error is returned so callers can surface a job left stuck in the
// running state.
func (e *Executor) fail(ctx context.Context, j *job.Job, message string) error {
	now := time.Now().UTC()
	j.Status = job.StatusFailed
	j.Metadata.ErrorMessage = message
	j.Metadata.CompletedAt = &now

	e.recordTerminal(ctx, j)
	e.logger.Error("job failed", "job_id", j.ID, "pipeline", j.Pipeline, "error", message)

	if err := e.store.UpdateJob(ctx, j); err != nil {
		e.logger.Error("failed to persist failed state", "job_id", j.ID, "error", err)
		return fmt.Errorf("persist failed job %s: %w", j.ID, err)
	}
	return nil
}

func (e *Executor) recordTerminal(ctx context.Context, j *job.Job) {
	if e.jobsExecuted == nil {
		return
	}
	e.jobsExecuted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", j.Pipeline),
		attribute.String("status", string(j.Status)),
	))
}

// workingContext seeds the per-execution context from job inputs and
// options. Steps read from and write into it as they run.
func workingContext(j *job.Job) map[string]any {
	wctx := make(map[string]any, len(j.Options)+3)
	for k, v := range j.Options {
		wctx[k] = v
	}
	for _, field := range []string{job.FieldText, job.FieldImageURL, job.FieldAudioURL} {
		if v := j.Inputs.Field(field); v != "" {
			wctx[field] = v
		}
	}
	return wctx
}

// buildPayload selects the context fields the step declares, applies
// the optional text template and attaches the job options verbatim.
func buildPayload(step pipeline.Step, wctx map[string]any, options job.Options) map[string]any {
	payload := make(map[string]any, len(step.Inputs)+1)
	for field, ctxKey := range step.Inputs {
		if v, ok := wctx[ctxKey]; ok {
			payload[field] = v
		}
	}
	if step.Template != "" {
		payload["text"] = expandTemplate(step.Template, wctx)
	}
	payload["options"] = options
	return payload
}

// expandTemplate substitutes {field} placeholders with working
// context values. Unknown placeholders are left as-is.
func expandTemplate(tmpl string, wctx map[string]any) string {
	out := tmpl
	for k, v := range wctx {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

func optionSet(options job.Options, name string) bool {
	v, ok := options[name]
	if !ok {
		return false
	}
	return strings.TrimSpace(fmt.Sprint(v)) != ""
}

func stringField(result map[string]any, field string) (string, bool) {
	v, ok := result[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
