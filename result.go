package commcheck

import "time"

// TimestampFormat is the portal date format for the timestamp field:
// ISO-8601 at second precision, UTC, no zone suffix.
const TimestampFormat = "2006-01-02T15:04:05"

// ProbeResult is the terminal outcome of probing one target.
//
// A result is created when its target is admitted and is mutated only by the
// single worker that owns the target; by the time [Runner.Execute] returns it,
// it is terminal and read-only. Timestamp records the start of the last
// attempt, and Delay is set only when the device answered.
type ProbeResult struct {
	// Target is the device this result belongs to.
	Target Target

	// StatusCode is the terminal comm status.
	StatusCode StatusCode

	// Delay is the observed round-trip time in fractional milliseconds.
	// nil unless StatusCode is [StatusOnline].
	Delay *float64

	// Timestamp is the UTC instant the last probe attempt started.
	Timestamp time.Time

	// Attempts is the number of probe attempts performed.
	Attempts int
}

// StatusDesc returns the fixed description for the result's status code.
func (r ProbeResult) StatusDesc() string {
	return r.StatusCode.Desc()
}

// Terminal reports whether the result will not be mutated further.
func (r ProbeResult) Terminal() bool {
	return r.StatusCode.Terminal()
}

// Record is the flat comm status row published to S3 and the open data portal.
//
// Field names and types match the dataset schema exactly; every key is always
// present (nullable fields serialize as JSON null). The validate tags mirror
// the dataset schema enforced before upload: all fields required,
// status_code/status_desc drawn from the closed set, delay non-negative when
// present.
type Record struct {
	ID           string `json:"id" validate:"required"`
	IPAddress    string `json:"ip_address" validate:"required"`
	DeviceID     int    `json:"device_id" validate:"required"`
	KnackID      string `json:"knack_id" validate:"required"`
	LocationName any    `json:"location_name"`
	LocationID   any    `json:"location_id"`
	StatusCode   int    `json:"status_code" validate:"oneof=0 1 -1 -2 -3"`
	StatusDesc   string `json:"status_desc" validate:"required,oneof=no_attempts online timeout invalid_hostname unknown_error"`
	Delay        *int64 `json:"delay" validate:"omitempty,gte=0"`
	Timestamp    string `json:"timestamp" validate:"required"`
	DeviceType   string `json:"device_type" validate:"required"`
	SignalID     any    `json:"signal_id"`
}

// Record flattens the result into the published row shape.
//
// Delay is truncated to integer milliseconds, matching the dataset's integer
// delay column. Metadata fields absent from the target emit as null.
func (r ProbeResult) Record() Record {
	t := r.Target

	rec := Record{
		ID:           t.id,
		IPAddress:    t.ipAddress,
		DeviceID:     t.deviceID,
		LocationName: t.meta["location_name"],
		LocationID:   t.meta["location_id"],
		StatusCode:   int(r.StatusCode),
		StatusDesc:   r.StatusCode.Desc(),
		DeviceType:   t.deviceType,
		SignalID:     t.meta["signal_id"],
	}

	if knackID, ok := t.meta["knack_id"].(string); ok {
		rec.KnackID = knackID
	}
	if !r.Timestamp.IsZero() {
		rec.Timestamp = r.Timestamp.UTC().Format(TimestampFormat)
	}
	if r.Delay != nil {
		ms := int64(*r.Delay)
		rec.Delay = &ms
	}

	return rec
}

// Summary counts results by status description, for the end-of-batch log line.
func Summary(results []ProbeResult) map[string]int {
	counts := make(map[string]int, 5)
	for _, r := range results {
		counts[r.StatusDesc()]++
	}
	return counts
}
