package pinger

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Outcome classifies one probe attempt. Mutually exclusive, closed set.
//
// This is the pinger-internal version of the public outcome taxonomy; the
// commcheck package converts at the boundary.
type Outcome int

const (
	// Success: the device answered within the timeout.
	Success Outcome = iota

	// Timeout: the timeout expired with no reply.
	Timeout

	// InvalidHost: name resolution failed or the address is invalid.
	InvalidHost

	// UnknownError: any other failure (permissions, network unreachable, ...).
	UnknownError
)

// String returns a short name for the outcome, for logging.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	case InvalidHost:
		return "invalid_host"
	default:
		return "unknown_error"
	}
}

// Probe holds the classified result of one reachability attempt.
type Probe struct {
	// Delay is the observed round-trip time in fractional milliseconds.
	// Meaningful only when Outcome is Success.
	Delay float64

	// Outcome is the attempt classification.
	Outcome Outcome
}

// Prober issues one reachability probe against one address with a timeout.
//
// Implementations must not return errors or panic across this boundary;
// all failure modes are reported through the outcome value. Probe must not
// mutate any shared state beyond the network probe itself.
type Prober interface {
	Probe(ctx context.Context, addr string, timeout time.Duration) Probe
}

// ProbeFunc adapts a function to the [Prober] interface.
type ProbeFunc func(ctx context.Context, addr string, timeout time.Duration) Probe

// Probe implements [Prober].
func (f ProbeFunc) Probe(ctx context.Context, addr string, timeout time.Duration) Probe {
	return f(ctx, addr, timeout)
}

// ICMP probes devices with a single ICMP echo request per attempt.
//
// Each attempt acquires a fresh socket and releases it on every exit path;
// no network resource is held across attempts.
type ICMP struct {
	privileged bool
}

// NewICMP creates an ICMP [Prober].
//
// With privileged=true the prober uses raw ICMP sockets, which requires
// CAP_NET_RAW (or root) on Linux. With privileged=false it uses unprivileged
// UDP ping sockets, which require net.ipv4.ping_group_range to cover the
// process's group.
func NewICMP(privileged bool) *ICMP {
	return &ICMP{privileged: privileged}
}

// Probe sends one echo request to addr and classifies the result.
//
// An empty or unresolvable address classifies as InvalidHost; an expired
// timeout as Timeout; anything else as UnknownError. Never returns an error
// to the caller.
func (p *ICMP) Probe(ctx context.Context, addr string, timeout time.Duration) Probe {
	pg, err := probing.NewPinger(addr)
	if err != nil {
		// NewPinger resolves the address, so DNS failures surface here
		return Probe{Outcome: Classify(err)}
	}

	pg.Count = 1
	pg.Timeout = timeout
	pg.SetPrivileged(p.privileged)

	if err := pg.RunWithContext(ctx); err != nil {
		return Probe{Outcome: Classify(err)}
	}

	stats := pg.Statistics()
	if stats.PacketsRecv == 0 {
		return Probe{Outcome: Timeout}
	}

	return Probe{
		Delay:   float64(stats.AvgRtt) / float64(time.Millisecond),
		Outcome: Success,
	}
}

// Classify maps a probe-layer error to an [Outcome].
//
// Classification is by error shape, not message text: DNS resolution errors
// are InvalidHost, deadline expiry is Timeout, everything else is
// UnknownError.
func Classify(err error) Outcome {
	if err == nil {
		return Success
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return InvalidHost
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return InvalidHost
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return Timeout
	}

	return UnknownError
}
