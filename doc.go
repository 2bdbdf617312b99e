// Package commcheck probes networked field devices (cameras, detectors,
// message signs, cabinet battery backups) for reachability and produces a
// validated batch of comm status records.
//
// The core of the package is a bounded-concurrency probing engine: a fixed
// pool of workers drains a queue of targets, pings each target's IP address
// with a per-probe timeout, retries on timeout up to a configurable attempt
// budget, and records a terminal status for every target. Probe failures are
// classified into a closed status taxonomy and never abort a batch.
//
// Typical usage:
//
//	runner, err := commcheck.New(
//	    commcheck.WithWorkerCount(300),
//	    commcheck.WithMaxAttempts(2),
//	    commcheck.WithTimeout(20*time.Second),
//	)
//	if err != nil {
//	    slog.Error("failed to create runner", "error", err)
//	    os.Exit(1)
//	}
//
//	results, err := runner.Execute(ctx, targets)
//
// Each result maps 1:1 to an admitted target and is terminal when returned:
// online, timeout (after the attempt budget is exhausted), invalid hostname,
// or unknown error. Downstream publishing (S3, the open data portal) consumes
// the flat records produced by [ProbeResult.Record].
package commcheck
