package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spboyer/lineagebench/internal/artifacts"
	"github.com/spboyer/lineagebench/internal/config"
	"github.com/spboyer/lineagebench/internal/execution"
	"github.com/spboyer/lineagebench/internal/metrics"
	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/prompts"
	"github.com/spboyer/lineagebench/internal/validation"
	"golang.org/x/sync/semaphore"
)

// Observer is notified about requests and finished jobs. Implementations
// must be safe for concurrent use.
type Observer interface {
	RequestFinished(model string, repair bool, d time.Duration, err error)
	JobFinished(job models.Job, state models.JobState, repairAttempted bool)
}

// Dispatcher expands models, tasks, repetitions and prompt variants into
// jobs and runs them under a concurrency ceiling.
type Dispatcher struct {
	cfg        *config.RunConfig
	client     execution.Client
	writer     *artifacts.Writer
	aggregator *metrics.Aggregator
	observers  []Observer
	logger     *slog.Logger
	now        func() time.Time
	runID      string

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAggregator sets the statistics aggregator fed by successful jobs.
func WithAggregator(a *metrics.Aggregator) Option {
	return func(d *Dispatcher) {
		d.aggregator = a
	}
}

// WithObserver adds an observer, e.g. a metrics.Recorder.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observers = append(d.observers, o)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithClock replaces time.Now for run start and end times.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(d *Dispatcher) {
		d.runID = id
	}
}

// NewDispatcher creates a dispatcher. Without WithAggregator a fresh
// aggregator for the configured models is used.
func NewDispatcher(cfg *config.RunConfig, client execution.Client, writer *artifacts.Writer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		client: client,
		writer: writer,
		logger: slog.Default(),
		now:    time.Now,
		runID:  uuid.NewString(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.aggregator == nil {
		d.aggregator = metrics.NewAggregator(cfg.Models())
	}
	d.logger = d.logger.With("run_id", d.runID)
	return d
}

// RunID identifies this dispatcher's run in logs and reports.
func (d *Dispatcher) RunID() string {
	return d.runID
}

// Aggregator returns the statistics aggregator.
func (d *Dispatcher) Aggregator() *metrics.Aggregator {
	return d.aggregator
}

// JobOutcome is the terminal result of one job.
type JobOutcome struct {
	Job   models.Job
	State models.JobState
	// Path is the written artifact; empty when even the error record could not be written.
	Path            string
	Err             error
	Corrected       bool
	RepairAttempted bool
	Duration        time.Duration
	CharCount       int
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	JobCount    int
	Written     int
	Failed      int
	Outcomes    []JobOutcome
	Summaries   map[string]models.ModelSummary
	SummaryPath string
}

// AllWritten reports whether every job produced a result record.
func (r *RunResult) AllWritten() bool {
	return r.Failed == 0
}

// Ping sends one trivial request to the first configured model.
func (d *Dispatcher) Ping(ctx context.Context) (execution.RawResponse, error) {
	modelIDs := d.cfg.Models()
	if len(modelIDs) == 0 {
		return execution.RawResponse{}, errors.New("ping: no model configured")
	}
	d.logger.Info("Pinging service", "model", modelIDs[0])
	resp, err := d.client.Ping(ctx, modelIDs[0])
	if err != nil {
		return resp, err
	}
	d.logger.Info("Ping succeeded", "model", modelIDs[0], "reply", resp.Text, "duration_s", resp.Duration.Seconds())
	return resp, nil
}

// Run executes every job once. Variants run one after another; within a
// variant all jobs start together and hold a permit only while a request
// is in flight. Job failures never abort the run; an error is returned only
// for an invalid configuration.
func (d *Dispatcher) Run(ctx context.Context, tasks []models.Task) (*RunResult, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	if limit := d.cfg.Limit(); limit > 0 && limit < len(tasks) {
		d.logger.Info("Limiting cases", "limit", limit, "available", len(tasks))
		tasks = tasks[:limit]
	}

	modelIDs := d.cfg.Models()
	variants := d.cfg.Variants()
	repeat := d.cfg.Repeat()
	perVariant := len(modelIDs) * len(tasks) * repeat
	total := perVariant * len(variants)

	result := &RunResult{
		RunID:     d.runID,
		StartedAt: d.now(),
		JobCount:  total,
		Outcomes:  make([]JobOutcome, total),
	}
	sem := semaphore.NewWeighted(int64(d.cfg.Concurrency()))
	var completed atomic.Int64

	d.logger.Info("Starting run",
		"models", modelIDs,
		"cases", len(tasks),
		"repeat", repeat,
		"variants", len(variants),
		"jobs", total,
		"concurrency", d.cfg.Concurrency())
	d.notifyProgress(ProgressEvent{EventType: EventRunStart, TotalJobs: total, TotalVariants: len(variants)})

	for v, variant := range variants {
		d.logger.Info("Running prompt variant", "variant", v+1, "total", len(variants), "name", variant.Name)
		d.notifyProgress(ProgressEvent{
			EventType:     EventVariantStart,
			VariantIndex:  v,
			VariantName:   variant.Name,
			TotalVariants: len(variants),
			TotalJobs:     total,
		})

		var wg sync.WaitGroup
		idx := v * perVariant
		for _, model := range modelIDs {
			for _, task := range tasks {
				for r := range repeat {
					job := models.Job{Task: task, Model: model, VariantIndex: v, Repeat: r}
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						outcome := d.runJob(ctx, sem, variant, job)
						result.Outcomes[i] = outcome

						ev := jobEvent(EventJobComplete, job, variant)
						ev.State = outcome.State
						ev.Completed = int(completed.Add(1))
						ev.TotalJobs = total
						ev.DurationMs = outcome.Duration.Milliseconds()
						ev.Details = map[string]any{"path": outcome.Path, "corrected": outcome.Corrected}
						if outcome.Err != nil {
							ev.Details["error"] = outcome.Err.Error()
						}
						d.notifyProgress(ev)
					}(idx)
					idx++
				}
			}
		}
		wg.Wait()

		d.notifyProgress(ProgressEvent{
			EventType:     EventVariantComplete,
			VariantIndex:  v,
			VariantName:   variant.Name,
			TotalVariants: len(variants),
			TotalJobs:     total,
			Completed:     int(completed.Load()),
		})
	}

	for _, o := range result.Outcomes {
		if o.State == models.JobWritten {
			result.Written++
		} else {
			result.Failed++
		}
	}

	result.Summaries = d.aggregator.SummarizeAll()
	if path, err := d.writer.WriteSummary(result.Summaries); err != nil {
		d.logger.Error("Failed to write run summary", "error", err)
	} else {
		result.SummaryPath = path
	}
	result.FinishedAt = d.now()

	d.logger.Info("Run complete",
		"jobs", total,
		"written", result.Written,
		"failed", result.Failed,
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	d.notifyProgress(ProgressEvent{
		EventType:  EventRunComplete,
		TotalJobs:  total,
		Completed:  int(completed.Load()),
		DurationMs: result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		Details:    map[string]any{"written": result.Written, "failed": result.Failed},
	})
	return result, nil
}

// jobRun tracks one job through its state machine.
type jobRun struct {
	d       *Dispatcher
	sem     *semaphore.Weighted
	job     models.Job
	variant models.PromptVariant
	state   models.JobState
	outcome JobOutcome
}

func (r *jobRun) advance(next models.JobState) {
	if !r.state.CanTransition(next) {
		panic(fmt.Sprintf("job %s: invalid transition %s -> %s", r.job.Key(), r.state, next))
	}
	r.state = next
	ev := jobEvent(EventJobState, r.job, r.variant)
	ev.State = next
	r.d.notifyProgress(ev)
}

func (d *Dispatcher) runJob(ctx context.Context, sem *semaphore.Weighted, variant models.PromptVariant, job models.Job) JobOutcome {
	run := &jobRun{
		d:       d,
		sem:     sem,
		job:     job,
		variant: variant,
		state:   models.JobPending,
		outcome: JobOutcome{Job: job},
	}
	d.logger.Info("Starting job", "job", job.Key())
	d.notifyProgress(jobEvent(EventJobStart, job, variant))

	outcome := d.execute(ctx, run)
	for _, o := range d.observers {
		o.JobFinished(job, outcome.State, outcome.RepairAttempted)
	}
	return outcome
}

func (d *Dispatcher) execute(ctx context.Context, run *jobRun) JobOutcome {
	job := run.job

	userPrompt, err := prompts.Build(run.variant, job.Task)
	if err != nil {
		return d.fail(run, err)
	}

	run.advance(models.JobAwaitingPermit)
	resp, err := d.request(ctx, run, run.variant.SystemPrompt, userPrompt, false)
	if err != nil {
		return d.fail(run, err)
	}

	run.advance(models.JobValidating)
	answer, err := validation.Parse(resp.Text)
	final := resp
	if err != nil {
		if !validation.IsAnswerError(err) {
			return d.fail(run, err)
		}
		run.advance(models.JobRepairing)
		run.outcome.RepairAttempted = true

		answer, final, err = d.repair(ctx, run, run.variant.SystemPrompt, resp, err)
		if err != nil {
			return d.fail(run, err)
		}
		run.outcome.Corrected = true
	}

	chars := utf8.RuneCountInString(final.Text)
	seconds := metrics.Round(run.outcome.Duration.Seconds(), 3)
	record := models.ResultRecord{
		StructuredAnswer:    *answer,
		SourceFile:          job.Task.SourceFile,
		Model:               job.Model,
		DurationSeconds:     seconds,
		ResponseCharCount:   chars,
		CorrectionAttempted: run.outcome.Corrected,
	}

	path, err := d.writer.Write(record, job.Model, job.Task, job.VariantIndex, job.Repeat)
	if err != nil {
		return d.fail(run, err)
	}

	d.aggregator.Record(job.Model, seconds, chars)
	run.advance(models.JobWritten)
	run.outcome.State = models.JobWritten
	run.outcome.Path = path
	run.outcome.CharCount = chars

	d.logger.Info("Job written",
		"job", job.Key(),
		"path", path,
		"duration_s", seconds,
		"chars", chars,
		"corrected", run.outcome.Corrected)
	return run.outcome
}

// request sends one prompt while holding a permit. The permit is released
// as soon as the response (or error) arrives.
func (d *Dispatcher) request(ctx context.Context, run *jobRun, systemPrompt, userPrompt string, repair bool) (execution.RawResponse, error) {
	if err := run.sem.Acquire(ctx, 1); err != nil {
		return execution.RawResponse{}, fmt.Errorf("waiting for request permit: %w", err)
	}
	if !repair {
		run.advance(models.JobRequesting)
	}
	resp, err := d.client.Send(ctx, run.job.Model, systemPrompt, userPrompt)
	run.sem.Release(1)

	for _, o := range d.observers {
		o.RequestFinished(run.job.Model, repair, resp.Duration, err)
	}
	if err != nil {
		return resp, err
	}
	run.outcome.Duration += resp.Duration
	d.logger.Debug("Received response", "job", run.job.Key(), "repair", repair, "chars", len(resp.Text))
	return resp, nil
}

// fail moves the job to FAILED and persists an error record.
func (d *Dispatcher) fail(run *jobRun, err error) JobOutcome {
	job := run.job
	run.advance(models.JobFailed)
	run.outcome.State = models.JobFailed
	run.outcome.Err = err

	d.logger.Error("Job failed",
		"job", job.Key(),
		"error", err,
		"after_s", metrics.Round(run.outcome.Duration.Seconds(), 3))

	rec := models.ErrorRecord{CaseID: job.TaskIDOrUnknown(), Error: err.Error()}
	path, werr := d.writer.WriteError(rec, job.Model, job.Task, job.VariantIndex, job.Repeat)
	if werr != nil {
		d.logger.Error("Failed to write error record", "job", job.Key(), "error", werr)
		run.outcome.Err = errors.Join(err, werr)
		return run.outcome
	}
	run.outcome.Path = path
	return run.outcome
}
