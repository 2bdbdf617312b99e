package commcheck

// StatusCode is the published comm status of a device.
//
// StatusCode is a closed set: exactly the five values below are ever produced,
// and each maps 1:1 to a fixed description via [StatusCode.Desc]. The values
// match the open data portal schema, so they must not be renumbered.
type StatusCode int

const (
	// StatusNoAttempts indicates the device has not been probed yet.
	// Every result starts in this state when its target is admitted.
	StatusNoAttempts StatusCode = 0

	// StatusOnline indicates the device answered a probe within the timeout.
	StatusOnline StatusCode = 1

	// StatusTimeout indicates every probe attempt timed out.
	StatusTimeout StatusCode = -1

	// StatusInvalidHostname indicates the device address failed name
	// resolution. Never retried.
	StatusInvalidHostname StatusCode = -2

	// StatusUnknownError indicates an unclassified probe failure
	// (permissions, network unreachable, ...). Never retried.
	StatusUnknownError StatusCode = -3
)

// Desc returns the fixed description for the status code.
//
// Desc is a pure function of the code. It returns the empty string for
// values outside the defined set; schema validation rejects such records
// before they are published.
func (c StatusCode) Desc() string {
	switch c {
	case StatusNoAttempts:
		return "no_attempts"
	case StatusOnline:
		return "online"
	case StatusTimeout:
		return "timeout"
	case StatusInvalidHostname:
		return "invalid_hostname"
	case StatusUnknownError:
		return "unknown_error"
	}
	return ""
}

// Terminal reports whether the status will not change for the remainder of
// the batch run. Every code except [StatusNoAttempts] is terminal.
func (c StatusCode) Terminal() bool {
	return c != StatusNoAttempts
}

// Outcome classifies a single probe attempt.
//
// Outcome is the attempt-level taxonomy used by [Prober] implementations;
// StatusCode is the batch-level status derived from the final outcome.
// The set is closed and mutually exclusive.
type Outcome int

const (
	// OutcomeSuccess: the probe round-tripped within the timeout.
	OutcomeSuccess Outcome = iota

	// OutcomeTimeout: the timeout expired with no reply. The only
	// retryable outcome.
	OutcomeTimeout

	// OutcomeInvalidHost: name resolution failed or the address is invalid.
	OutcomeInvalidHost

	// OutcomeUnknownError: any other failure mode.
	OutcomeUnknownError
)

// String returns a short name for the outcome, for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeInvalidHost:
		return "invalid_host"
	case OutcomeUnknownError:
		return "unknown_error"
	}
	return "unknown_error"
}

// StatusFromOutcome maps a terminal probe outcome to its published status code.
func StatusFromOutcome(o Outcome) StatusCode {
	switch o {
	case OutcomeSuccess:
		return StatusOnline
	case OutcomeTimeout:
		return StatusTimeout
	case OutcomeInvalidHost:
		return StatusInvalidHostname
	default:
		return StatusUnknownError
	}
}
