package commcheck

import (
	"context"
	"time"

	"github.com/atd-dts/commcheck/internal/pinger"
)

// Prober issues one reachability probe against one address with a timeout.
//
// Prober is the public injection point for the probing layer; the default
// implementation sends a single ICMP echo request per attempt. A prober must
// report every failure mode through the returned [Outcome] — it never returns
// an error and must never panic across this boundary, so that a single
// target's failure mode cannot abort a batch run. It must not mutate any
// shared state beyond the network probe itself.
//
// On success, delayMs is the observed round-trip time in fractional
// milliseconds; on any other outcome its value is ignored.
type Prober interface {
	Probe(ctx context.Context, addr string, timeout time.Duration) (delayMs float64, outcome Outcome)
}

// ProbeFunc adapts a function to the [Prober] interface.
type ProbeFunc func(ctx context.Context, addr string, timeout time.Duration) (float64, Outcome)

// Probe implements [Prober].
func (f ProbeFunc) Probe(ctx context.Context, addr string, timeout time.Duration) (float64, Outcome) {
	return f(ctx, addr, timeout)
}

// proberAdapter wraps a public Prober for the pool-internal interface.
type proberAdapter struct {
	prober Prober
}

func (a proberAdapter) Probe(ctx context.Context, addr string, timeout time.Duration) pinger.Probe {
	delay, outcome := a.prober.Probe(ctx, addr, timeout)
	return pinger.Probe{Delay: delay, Outcome: outcomeToInternal(outcome)}
}

// outcomeToInternal converts the public outcome to the pinger-internal one.
func outcomeToInternal(o Outcome) pinger.Outcome {
	switch o {
	case OutcomeSuccess:
		return pinger.Success
	case OutcomeTimeout:
		return pinger.Timeout
	case OutcomeInvalidHost:
		return pinger.InvalidHost
	default:
		return pinger.UnknownError
	}
}

// outcomeFromInternal converts a pinger-internal outcome to the public one.
func outcomeFromInternal(o pinger.Outcome) Outcome {
	switch o {
	case pinger.Success:
		return OutcomeSuccess
	case pinger.Timeout:
		return OutcomeTimeout
	case pinger.InvalidHost:
		return OutcomeInvalidHost
	default:
		return OutcomeUnknownError
	}
}
