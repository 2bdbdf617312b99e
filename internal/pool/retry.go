package pool

import "github.com/atd-dts/commcheck/internal/pinger"

// RetryPolicy decides whether a probe attempt should be repeated.
//
// Only timeouts are retried: success is terminal, and there is no point
// retrying a bad hostname or an unclassified error.
type RetryPolicy struct {
	// MaxAttempts is the retry budget. Note the inclusive boundary in
	// [RetryPolicy.ShouldRetry]: MaxAttempts=2 permits up to 3 total
	// attempts (1 initial + 2 retries).
	MaxAttempts int
}

// ShouldRetry reports whether another attempt is permitted after an attempt
// with the given outcome, where attemptsSoFar counts the attempt just made.
//
// Retry is permitted only while attemptsSoFar <= MaxAttempts. The boundary is
// deliberately inclusive to reproduce the upstream dataset's attempt
// accounting; see the explicit boundary tests before changing it.
func (p RetryPolicy) ShouldRetry(outcome pinger.Outcome, attemptsSoFar int) bool {
	return outcome == pinger.Timeout && attemptsSoFar <= p.MaxAttempts
}
