package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atd-dts/commcheck/internal/pinger"
)

// Task is one unit of work for the pool: a record id and the address to probe.
type Task struct {
	// ID is the task's record id, unique within the batch.
	ID string

	// Address is the IP address or hostname to probe.
	Address string
}

// Result is the terminal outcome of one task.
type Result struct {
	// TaskID identifies the task this result belongs to.
	TaskID string

	// Outcome is the classification of the final attempt.
	Outcome pinger.Outcome

	// Delay is the round-trip time in fractional milliseconds.
	// Meaningful only when Outcome is Success.
	Delay float64

	// Attempts is the number of probe attempts performed.
	Attempts int

	// CheckedAt is the UTC instant the last attempt started.
	CheckedAt time.Time
}

// Pool runs probe tasks across a fixed number of concurrent workers.
//
// Each worker loops: dequeue one task, probe it, consult the retry policy,
// and repeat on the same task without re-enqueueing until the outcome is
// terminal or the attempt budget is exhausted. Workers beyond the remaining
// task count exit cleanly when the queue drains.
type Pool struct {
	prober  pinger.Prober
	policy  RetryPolicy
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a [Pool].
//
// Parameters:
//   - prober: issues one probe per attempt
//   - policy: the per-task retry policy
//   - timeout: the per-probe timeout
//   - logger: logger for per-task failure warnings
func New(prober pinger.Prober, policy RetryPolicy, timeout time.Duration, logger *slog.Logger) *Pool {
	return &Pool{
		prober:  prober,
		policy:  policy,
		timeout: timeout,
		logger:  logger,
	}
}

// Run probes every task and returns results keyed by task id.
//
// Run blocks until every task has a terminal result or ctx is cancelled.
// On cancellation workers stop pulling new tasks and Run returns ctx.Err()
// together with the results completed so far; a task mid-probe finishes its
// current attempt (bounded by the probe timeout) before the worker observes
// cancellation. No individual task failure aborts the pool.
//
// The only non-cancellation error is a contract violation: workers < 1 or a
// non-positive timeout, surfaced before any probing starts.
func (p *Pool) Run(ctx context.Context, tasks []Task, workers int) (map[string]Result, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workers)
	}
	if p.timeout <= 0 {
		return nil, fmt.Errorf("probe timeout must be positive, got %s", p.timeout)
	}

	// FIFO queue seeded with every task, then closed: exactly-once delivery
	// per task, and idle workers terminate when it drains.
	queue := make(chan Task, len(tasks))
	for _, t := range tasks {
		queue <- t
	}
	close(queue)

	// buffered to len(tasks) so workers never block sending results
	results := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-queue:
					if !ok {
						return
					}
					results <- p.process(ctx, task)
				}
			}
		}()
	}

	wg.Wait()
	close(results)

	out := make(map[string]Result, len(tasks))
	for r := range results {
		out[r.TaskID] = r
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// process runs the tight retry loop for a single task. Attempt N+1 never
// starts before attempt N's outcome is recorded.
func (p *Pool) process(ctx context.Context, task Task) Result {
	res := Result{TaskID: task.ID}

	for {
		res.Attempts++
		res.CheckedAt = time.Now().UTC()

		probe := p.prober.Probe(ctx, task.Address, p.timeout)
		res.Outcome = probe.Outcome
		res.Delay = probe.Delay

		if res.Outcome != pinger.Success {
			p.logger.Warn("probe failed",
				"address", task.Address,
				"outcome", res.Outcome.String(),
				"attempt", res.Attempts,
			)
		}

		if !p.policy.ShouldRetry(probe.Outcome, res.Attempts) {
			return res
		}
		// the current attempt is allowed to complete, but no new attempt
		// starts after cancellation
		if ctx.Err() != nil {
			return res
		}
	}
}
