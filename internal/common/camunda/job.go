package camunda

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/common/metrics"
	"accelerator-portal/internal/common/observability"
	"accelerator-portal/internal/common/validation"
)

// ExecFunc runs one job. variables is the raw job variable document.
type ExecFunc func(ctx context.Context, variables string) (interface{}, error)

// Runner carries the plumbing every portal worker shares: schema validation, a bounded
// context, metrics, tracing, job completion and error mapping.
type Runner struct {
	taskType string
	timeout  time.Duration
	schema   *validation.Schema
	logger   logger.Logger
	errors   *errors.ErrorHandler
	obs      *observability.Observability
}

func NewRunner(taskType string, timeout time.Duration, schema *validation.Schema, log logger.Logger, obs *observability.Observability) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		taskType: taskType,
		timeout:  timeout,
		schema:   schema,
		logger:   log,
		errors:   errors.NewErrorHandler(log),
		obs:      obs,
	}
}

// Run executes exec for job and reports the outcome back to the broker.
func (r *Runner) Run(client worker.JobClient, job entities.Job, exec ExecFunc) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.taskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	ctx, span := r.obs.StartSpan(ctx, r.taskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey),
	)
	defer span.End()

	r.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	output, err := r.execute(ctx, job.Variables, exec)
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(elapsed.Seconds())

	if err != nil {
		std := errors.Normalize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(std.Code))
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(std.Code)).Inc()
		r.obs.RecordJobProcessed(ctx, r.taskType, "failed")
		r.obs.RecordJobDuration(ctx, r.taskType, elapsed, "failed")

		// Report on a fresh context so a timed-out job can still be failed.
		r.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.obs.RecordJobProcessed(ctx, r.taskType, "completed")
	r.obs.RecordJobDuration(ctx, r.taskType, elapsed, "completed")

	r.complete(client, job, output)
}

func (r *Runner) execute(ctx context.Context, variables string, exec ExecFunc) (interface{}, error) {
	if r.schema != nil {
		if err := r.schema.Validate(variables); err != nil {
			return nil, err
		}
	}
	return exec(ctx, variables)
}

func (r *Runner) complete(client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	r.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
}

// Decode unmarshals job variables into v. Malformed variables become a ValidationError.
func Decode(variables string, v interface{}) error {
	if err := json.Unmarshal([]byte(variables), v); err != nil {
		return errors.NewValidationError("", "parse input: "+err.Error())
	}
	return nil
}
