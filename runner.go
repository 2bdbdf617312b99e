package commcheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atd-dts/commcheck/internal/pinger"
	"github.com/atd-dts/commcheck/internal/pool"
)

// Documented defaults for the batch tunables. These mirror the production
// schedule the comm check has always run with.
const (
	// DefaultWorkerCount is the default number of concurrent probe workers.
	DefaultWorkerCount = 300

	// DefaultMaxAttempts is the default retry budget for timed-out probes.
	DefaultMaxAttempts = 2

	// DefaultTimeout is the default per-probe timeout.
	DefaultTimeout = 20 * time.Second
)

// Runner orchestrates one full comm-check batch pass.
//
// Runner validates and admits targets, runs the worker pool to completion,
// and returns the terminal results in the same order as the admitted targets
// for deterministic downstream serialization. It is created with [New] and
// holds no state between runs; the same Runner may execute multiple batches.
type Runner struct {
	workers     int
	maxAttempts int
	timeout     time.Duration
	prober      pinger.Prober
	logger      *slog.Logger
	callbacks   []func(ProbeResult)
}

// New creates a [Runner] with the given options.
//
// All tunables have documented defaults: [DefaultWorkerCount] workers,
// [DefaultMaxAttempts] retries, [DefaultTimeout] per probe, and an ICMP
// prober in unprivileged mode.
//
// Configuration errors (zero or negative worker count or timeout, negative
// attempt budget) surface here, before any probing starts.
func New(opts ...Option) (*Runner, error) {
	cfg := &runnerConfig{
		workers:     DefaultWorkerCount,
		maxAttempts: DefaultMaxAttempts,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	var prober pinger.Prober
	if cfg.prober != nil {
		prober = proberAdapter{prober: cfg.prober}
	} else {
		prober = pinger.NewICMP(cfg.privileged)
	}

	return &Runner{
		workers:     cfg.workers,
		maxAttempts: cfg.maxAttempts,
		timeout:     cfg.timeout,
		prober:      prober,
		logger:      logger,
		callbacks:   cfg.callbacks,
	}, nil
}

// Execute runs one batch pass over the given targets.
//
// Targets failing their construction invariant are dropped and counted, never
// a batch failure. The remainder are loaded into the pool's FIFO queue and
// probed until every admitted target has a terminal result. Execute returns
// the results in admitted-target order.
//
// On context cancellation Execute returns ctx.Err() together with the results
// completed before the cancellation was observed; every returned result is
// terminal. There is no partially-completed silent state: a run either fully
// completes, aborts up front on bad configuration, or reports the
// cancellation error.
func (r *Runner) Execute(ctx context.Context, targets []Target) ([]ProbeResult, error) {
	runID := uuid.NewString()

	admitted := make([]Target, 0, len(targets))
	dropped := 0
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			dropped++
			continue
		}
		admitted = append(admitted, t)
	}
	if dropped > 0 {
		r.logger.Warn("invalid targets dropped", "run_id", runID, "dropped", dropped)
	}

	r.logger.Info("comm check starting",
		"run_id", runID,
		"targets", len(admitted),
		"workers", r.workers,
		"max_attempts", r.maxAttempts,
		"timeout", r.timeout.String(),
	)

	tasks := make([]pool.Task, len(admitted))
	for i, t := range admitted {
		tasks[i] = pool.Task{ID: t.ID(), Address: t.IPAddress()}
	}

	p := pool.New(r.prober, pool.RetryPolicy{MaxAttempts: r.maxAttempts}, r.timeout, r.logger)
	byID, runErr := p.Run(ctx, tasks, r.workers)
	if runErr != nil && byID == nil {
		// contract violation, surfaced before any probing started
		return nil, runErr
	}

	results := make([]ProbeResult, 0, len(admitted))
	for _, t := range admitted {
		taskResult, ok := byID[t.ID()]
		if !ok {
			// cancelled before this target was dequeued
			continue
		}

		res := ProbeResult{
			Target:     t,
			StatusCode: StatusFromOutcome(outcomeFromInternal(taskResult.Outcome)),
			Timestamp:  taskResult.CheckedAt,
			Attempts:   taskResult.Attempts,
		}
		if taskResult.Outcome == pinger.Success {
			delay := taskResult.Delay
			res.Delay = &delay
		}

		for _, cb := range r.callbacks {
			r.invokeCallbackSafe(cb, res)
		}
		results = append(results, res)
	}

	if runErr != nil {
		r.logger.Warn("comm check cancelled",
			"run_id", runID,
			"completed", len(results),
			"targets", len(admitted),
		)
		return results, runErr
	}

	summary := make([]any, 0, 12)
	summary = append(summary, "run_id", runID)
	for desc, count := range Summary(results) {
		summary = append(summary, desc, count)
	}
	r.logger.Info("comm check complete", summary...)

	return results, nil
}

// invokeCallbackSafe calls a result callback with panic recovery.
// Panics are logged with a correlation id but do not propagate.
func (r *Runner) invokeCallbackSafe(cb func(ProbeResult), result ProbeResult) {
	defer func() {
		if rec := recover(); rec != nil {
			correlationID := uuid.NewString()
			r.logger.Error("result callback panicked",
				"correlation_id", correlationID,
				"panic", rec,
				"target", result.Target.ID(),
			)
		}
	}()
	cb(result)
}
