package commcheck

import (
	"regexp"
	"testing"
)

// TestNewTarget_Valid verifies that a fully-specified target is admitted and
// gets a derived record id of the form {device_id}_{device_type}_{millis}.
func TestNewTarget_Valid(t *testing.T) {
	target, err := NewTarget(147, "camera", "10.66.2.12",
		WithMeta("knack_id", "abc123"),
		WithMeta("location_name", "LAMAR BLVD / 5TH ST"),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	if target.IPAddress() != "10.66.2.12" {
		t.Errorf("IPAddress() = %q, want %q", target.IPAddress(), "10.66.2.12")
	}
	if target.DeviceID() != 147 {
		t.Errorf("DeviceID() = %d, want 147", target.DeviceID())
	}
	if target.DeviceType() != "camera" {
		t.Errorf("DeviceType() = %q, want %q", target.DeviceType(), "camera")
	}

	idPattern := regexp.MustCompile(`^147_camera_\d{13}$`)
	if !idPattern.MatchString(target.ID()) {
		t.Errorf("ID() = %q, want match for %s", target.ID(), idPattern)
	}

	if err := target.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

// TestNewTarget_MissingRequiredFields verifies that construction fails for
// each missing required field; a partially-initialized target can never exist.
func TestNewTarget_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name       string
		deviceID   int
		deviceType string
		ipAddress  string
	}{
		{"empty ip_address", 147, "camera", ""},
		{"zero device_id", 0, "camera", "10.66.2.12"},
		{"empty device_type", 147, "", "10.66.2.12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTarget(tt.deviceID, tt.deviceType, tt.ipAddress)
			if err == nil {
				t.Fatal("NewTarget() expected error, got nil")
			}
		})
	}
}

// TestTarget_Validate_ZeroValue verifies that a zero-value target that
// bypassed NewTarget fails the invariant check.
func TestTarget_Validate_ZeroValue(t *testing.T) {
	var target Target
	if err := target.Validate(); err == nil {
		t.Error("Validate() on zero-value target expected error, got nil")
	}
}

// TestTarget_Meta_ReturnsCopy verifies that mutating the returned metadata
// map does not affect the target.
func TestTarget_Meta_ReturnsCopy(t *testing.T) {
	target, err := NewTarget(1, "camera", "10.0.0.1", WithMeta("knack_id", "abc"))
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	meta := target.Meta()
	meta["knack_id"] = "mutated"

	if got := target.Meta()["knack_id"]; got != "abc" {
		t.Errorf("metadata mutated through copy: got %v, want %q", got, "abc")
	}
}

// TestWithMeta_EmptyKey verifies that empty metadata keys are rejected.
func TestWithMeta_EmptyKey(t *testing.T) {
	if _, err := NewTarget(1, "camera", "10.0.0.1", WithMeta("", "x")); err == nil {
		t.Error("NewTarget() with empty metadata key expected error, got nil")
	}
}

// TestTargetsFromRecords verifies the malformed-record property: a batch of
// N valid + M malformed field maps yields exactly N targets and a dropped
// count of M, never an error.
func TestTargetsFromRecords(t *testing.T) {
	records := []map[string]any{
		{"ip_address": "10.0.0.1", "device_id": float64(101), "knack_id": "a"},
		{"ip_address": "", "device_id": float64(102)},           // empty ip: dropped
		{"device_id": float64(103)},                             // missing ip: dropped
		{"ip_address": "10.0.0.4"},                              // missing device_id: dropped
		{"ip_address": "10.0.0.5", "device_id": "105"},          // numeric string id: admitted
		{"ip_address": "10.0.0.6", "device_id": nil},            // null device_id: dropped
		{"ip_address": "10.0.0.7", "device_id": float64(107), "signal_id": nil},
	}

	targets, dropped := TargetsFromRecords("detector", records)

	if len(targets) != 3 {
		t.Fatalf("got %d targets, want 3", len(targets))
	}
	if dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}

	// input order preserved
	wantIDs := []int{101, 105, 107}
	for i, target := range targets {
		if target.DeviceID() != wantIDs[i] {
			t.Errorf("targets[%d].DeviceID() = %d, want %d", i, target.DeviceID(), wantIDs[i])
		}
		if target.DeviceType() != "detector" {
			t.Errorf("targets[%d].DeviceType() = %q, want detector", i, target.DeviceType())
		}
	}

	// pass-through metadata carried, core fields excluded
	meta := targets[0].Meta()
	if meta["knack_id"] != "a" {
		t.Errorf("metadata knack_id = %v, want %q", meta["knack_id"], "a")
	}
	if _, ok := meta["ip_address"]; ok {
		t.Error("ip_address should not appear in metadata")
	}
}

// TestIntFromAny verifies coercion of the numeric shapes found in decoded
// inventory JSON.
func TestIntFromAny(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
		ok    bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(42), 42, true},
		{"float64", float64(42), 42, true},
		{"numeric string", "42", 42, true},
		{"padded string", " 42 ", 42, true},
		{"non-numeric string", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intFromAny(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("intFromAny(%v) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
