package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
device_types:
  - device_type: camera
    container: view_395
    fields:
      ip_address: field_638
      device_id: field_947
`

// TestParse_Defaults verifies that omitted tunables pick up the documented
// defaults: 300 workers, 2 max attempts, 20s timeout.
func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Workers != 300 {
		t.Errorf("Workers = %d, want 300", cfg.Workers)
	}
	if cfg.MaxAttempts == nil || *cfg.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %v, want 2", cfg.MaxAttempts)
	}
	if cfg.Timeout.Duration() != 20*time.Second {
		t.Errorf("Timeout = %s, want 20s", cfg.Timeout.Duration())
	}
	if cfg.PrivilegedICMP {
		t.Error("PrivilegedICMP = true, want false by default")
	}
}

// TestParse_ExplicitValues verifies that configured tunables override the
// defaults, including the explicit zero retry budget.
func TestParse_ExplicitValues(t *testing.T) {
	yaml := `
workers: 50
max_attempts: 0
timeout: 5s
privileged_icmp: true
` + minimalYAML

	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Workers != 50 {
		t.Errorf("Workers = %d, want 50", cfg.Workers)
	}
	if cfg.MaxAttempts == nil || *cfg.MaxAttempts != 0 {
		t.Errorf("MaxAttempts = %v, want explicit 0 (retries disabled)", cfg.MaxAttempts)
	}
	if cfg.Timeout.Duration() != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout.Duration())
	}
	if !cfg.PrivilegedICMP {
		t.Error("PrivilegedICMP = false, want true")
	}
}

// TestParse_EnvExpansion verifies ${VAR} and ${VAR:-default} substitution in
// credential and endpoint values.
func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_PGREST_TOKEN", "jwt-abc")
	t.Setenv("TEST_BUCKET", "atd-comm-check")

	yaml := `
postgrest:
  endpoint: ${TEST_PGREST_ENDPOINT:-https://pgrest.example.com}
  token: ${TEST_PGREST_TOKEN}
  app_id: app1
s3:
  bucket: ${TEST_BUCKET}
` + minimalYAML

	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Postgrest.Endpoint != "https://pgrest.example.com" {
		t.Errorf("Endpoint = %q, want the fallback default", cfg.Postgrest.Endpoint)
	}
	if cfg.Postgrest.Token != "jwt-abc" {
		t.Errorf("Token = %q, want %q", cfg.Postgrest.Token, "jwt-abc")
	}
	if cfg.S3.Bucket != "atd-comm-check" {
		t.Errorf("Bucket = %q, want %q", cfg.S3.Bucket, "atd-comm-check")
	}
}

// TestParse_MissingEnvVar verifies that an unset variable without a default
// fails parsing rather than passing an empty credential downstream.
func TestParse_MissingEnvVar(t *testing.T) {
	yaml := `
postgrest:
  token: ${DEFINITELY_NOT_SET_VAR_XYZ}
` + minimalYAML

	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for unset env var, got nil")
	}
	if !strings.Contains(err.Error(), "DEFINITELY_NOT_SET_VAR_XYZ") {
		t.Errorf("error %q should name the missing variable", err)
	}
}

// TestParse_ValidationErrors verifies the structural validation rules.
func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative workers", "workers: -1\n" + minimalYAML},
		{"negative max_attempts", "max_attempts: -2\n" + minimalYAML},
		{"no device types", "workers: 10\n"},
		{
			"missing container",
			`
device_types:
  - device_type: camera
    fields:
      ip_address: field_638
      device_id: field_947
`,
		},
		{
			"missing ip_address mapping",
			`
device_types:
  - device_type: camera
    container: view_395
    fields:
      device_id: field_947
`,
		},
		{
			"missing device_id mapping",
			`
device_types:
  - device_type: camera
    container: view_395
    fields:
      ip_address: field_638
`,
		},
		{
			"duplicate device type",
			`
device_types:
  - device_type: camera
    container: view_395
    fields:
      ip_address: field_638
      device_id: field_947
  - device_type: camera
    container: view_396
    fields:
      ip_address: field_1
      device_id: field_2
`,
		},
		{"malformed yaml", "workers: [not an int\n"},
		{"bad duration", "timeout: twenty\n" + minimalYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}

// TestLoad verifies reading a config file from disk.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DeviceTypes) != 1 || cfg.DeviceTypes[0].DeviceType != "camera" {
		t.Errorf("DeviceTypes = %+v, want a single camera entry", cfg.DeviceTypes)
	}
}

// TestLoad_MissingFile verifies the read error is surfaced.
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

// TestConfig_Lookups verifies DeviceType, SupportedDeviceTypes and DatasetID.
func TestConfig_Lookups(t *testing.T) {
	yaml := `
socrata:
  host: data.austintexas.gov
  dataset_ids:
    dev: j9p3-9u87
    prod: pj7k-98z2
device_types:
  - device_type: camera
    container: view_395
    fields:
      ip_address: field_638
      device_id: field_947
  - device_type: detector
    container: view_1333
    fields:
      ip_address: field_1570
      device_id: field_1526
`

	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	dt, ok := cfg.DeviceType("detector")
	if !ok || dt.Container != "view_1333" {
		t.Errorf("DeviceType(detector) = (%+v, %v), want the view_1333 block", dt, ok)
	}
	if _, ok := cfg.DeviceType("signal"); ok {
		t.Error("DeviceType(signal) should not be found")
	}

	names := cfg.SupportedDeviceTypes()
	if len(names) != 2 || names[0] != "camera" || names[1] != "detector" {
		t.Errorf("SupportedDeviceTypes() = %v, want [camera detector] in config order", names)
	}

	if id, ok := cfg.DatasetID("prod"); !ok || id != "pj7k-98z2" {
		t.Errorf("DatasetID(prod) = (%q, %v), want pj7k-98z2", id, ok)
	}
	if _, ok := cfg.DatasetID("staging"); ok {
		t.Error("DatasetID(staging) should not be found")
	}
}
