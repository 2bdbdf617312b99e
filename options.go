package commcheck

import (
	"errors"
	"log/slog"
	"time"
)

// runnerConfig holds mutable state during runner construction.
type runnerConfig struct {
	workers     int
	maxAttempts int
	timeout     time.Duration
	privileged  bool
	prober      Prober
	logger      *slog.Logger
	callbacks   []func(ProbeResult)
}

// Option is a function that configures a [Runner] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithWorkerCount], [WithMaxAttempts], [WithTimeout],
// [WithProber], [WithPrivilegedICMP], [WithLogger], [WithResultCallback].
type Option func(*runnerConfig) error

// WithWorkerCount sets the number of concurrent probe workers.
//
// The pool spawns exactly this many workers regardless of batch size; idle
// workers terminate cleanly when the queue drains. Defaults to
// [DefaultWorkerCount] (300) if not specified.
//
// Example:
//
//	runner, err := commcheck.New(
//	    commcheck.WithWorkerCount(50),
//	)
//
// Returns an error if the count is zero or negative.
func WithWorkerCount(n int) Option {
	return func(cfg *runnerConfig) error {
		if n <= 0 {
			return errors.New("worker count must be positive")
		}
		cfg.workers = n
		return nil
	}
}

// WithMaxAttempts sets the retry budget for timed-out probes.
//
// Only timeouts are retried. The budget boundary is inclusive: with
// MaxAttempts=2 a persistently timing-out target is probed 3 times in total
// (1 initial + 2 retries). Defaults to [DefaultMaxAttempts] (2).
//
// Returns an error if the value is negative. Zero is valid and disables
// retries entirely.
func WithMaxAttempts(n int) Option {
	return func(cfg *runnerConfig) error {
		if n < 0 {
			return errors.New("max attempts cannot be negative")
		}
		cfg.maxAttempts = n
		return nil
	}
}

// WithTimeout sets the per-probe timeout.
//
// Each attempt waits at most this long for a reply before classifying as a
// timeout. Retries are immediate; there is no backoff beyond the timeout
// itself. Defaults to [DefaultTimeout] (20s).
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *runnerConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithProber sets a custom [Prober] implementation.
//
// Use this to inject a fake prober in tests or to probe with something other
// than ICMP. If not specified, the default ICMP prober is used.
//
// Returns an error if the prober is nil.
func WithProber(p Prober) Option {
	return func(cfg *runnerConfig) error {
		if p == nil {
			return errors.New("prober cannot be nil")
		}
		cfg.prober = p
		return nil
	}
}

// WithPrivilegedICMP controls the socket mode of the default ICMP prober.
//
// With true, raw ICMP sockets are used (requires CAP_NET_RAW or root on
// Linux); with false, unprivileged UDP ping sockets are used. Ignored when a
// custom [WithProber] is supplied. Defaults to false.
func WithPrivilegedICMP(privileged bool) Option {
	return func(cfg *runnerConfig) error {
		cfg.privileged = privileged
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the runner.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *runnerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithResultCallback registers a function called for every terminal result.
//
// The callback receives the terminal [ProbeResult] after its target finishes
// probing. Multiple callbacks may be registered; they execute in registration
// order. Callbacks are invoked synchronously during result assembly, so they
// should be fast; panics within callbacks are recovered and logged with a
// correlation id and do not fail the batch.
//
// Nil callbacks are silently ignored.
func WithResultCallback(cb func(ProbeResult)) Option {
	return func(cfg *runnerConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
