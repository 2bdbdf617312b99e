package commcheck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Target represents one device to probe, identified by IP address and device id.
//
// Target is immutable after creation via [NewTarget]. The required fields
// (device id, device type, IP address) are validated at construction; a
// partially-initialized target can never enter the worker pool. Pass-through
// metadata (knack id, location, signal id) is opaque to the probing engine
// and is carried unchanged into the published record.
type Target struct {
	id         string
	ipAddress  string
	deviceID   int
	deviceType string
	meta       map[string]any
}

// NewTarget creates a validated [Target].
//
// The record id is derived at construction as
// "{device_id}_{device_type}_{unix_millis}", matching the id convention of
// the comm status dataset.
//
// Returns an error if deviceID is zero, or deviceType or ipAddress is empty.
func NewTarget(deviceID int, deviceType, ipAddress string, opts ...TargetOption) (Target, error) {
	if ipAddress == "" {
		return Target{}, fmt.Errorf("missing value for field ip_address")
	}
	if deviceID == 0 {
		return Target{}, fmt.Errorf("missing value for field device_id")
	}
	if deviceType == "" {
		return Target{}, fmt.Errorf("missing value for field device_type")
	}

	cfg := &targetConfig{meta: make(map[string]any)}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Target{}, err
		}
	}

	return Target{
		id:         fmt.Sprintf("%d_%s_%d", deviceID, deviceType, time.Now().UTC().UnixMilli()),
		ipAddress:  ipAddress,
		deviceID:   deviceID,
		deviceType: deviceType,
		meta:       cfg.meta,
	}, nil
}

// ID returns the derived record id, unique within a batch.
func (t Target) ID() string {
	return t.id
}

// IPAddress returns the address the device is probed at.
func (t Target) IPAddress() string {
	return t.ipAddress
}

// DeviceID returns the device's asset id.
func (t Target) DeviceID() int {
	return t.deviceID
}

// DeviceType returns the device type name (e.g. "camera").
func (t Target) DeviceType() string {
	return t.deviceType
}

// Meta returns a copy of the pass-through metadata.
// Modifying the returned map does not affect the target.
func (t Target) Meta() map[string]any {
	return copyMeta(t.meta)
}

// Validate checks the target invariant: required fields present and an id
// assigned. Zero-value targets that bypassed [NewTarget] fail here and are
// dropped by the runner rather than entering the pool.
func (t Target) Validate() error {
	if t.ipAddress == "" {
		return fmt.Errorf("missing value for field ip_address")
	}
	if t.deviceID == 0 {
		return fmt.Errorf("missing value for field device_id")
	}
	if t.deviceType == "" {
		return fmt.Errorf("missing value for field device_type")
	}
	if t.id == "" {
		return fmt.Errorf("target has no id")
	}
	return nil
}

// String implements fmt.Stringer for debug logging.
func (t Target) String() string {
	return fmt.Sprintf("<%s %q>", t.deviceType, t.ipAddress)
}

// TargetsFromRecords builds targets from loosely-typed inventory field maps.
//
// Each record must resolve "ip_address" to a non-empty string and "device_id"
// to a non-zero integer; records that do not are dropped and counted, never a
// batch failure. All other keys are carried through as opaque metadata.
// One malformed inventory record must not fail the whole run.
//
// Returns the admitted targets in input order and the number of dropped records.
func TargetsFromRecords(deviceType string, records []map[string]any) ([]Target, int) {
	targets := make([]Target, 0, len(records))
	dropped := 0

	for _, rec := range records {
		ip, _ := rec["ip_address"].(string)
		deviceID, _ := intFromAny(rec["device_id"])

		meta := make(map[string]any, len(rec))
		for k, v := range rec {
			switch k {
			case "ip_address", "device_id", "device_type":
				continue
			}
			meta[k] = v
		}

		t, err := NewTarget(deviceID, deviceType, ip, WithMetadata(meta))
		if err != nil {
			dropped++
			continue
		}
		targets = append(targets, t)
	}

	return targets, dropped
}

// intFromAny coerces the numeric shapes that show up in decoded inventory
// JSON (float64, json.Number, numeric strings) to an int.
func intFromAny(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// copyMeta returns a shallow copy of a metadata map, or nil for empty input.
func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
