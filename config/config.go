// Package config provides YAML configuration parsing for the comm check.
//
// Example configuration:
//
//	workers: 300
//	max_attempts: 2
//	timeout: 20s
//
//	postgrest:
//	  endpoint: ${PGREST_ENDPOINT}
//	  token: ${PGREST_JWT}
//	  app_id: ${KNACK_APP_ID}
//
//	s3:
//	  bucket: ${BUCKET}
//
//	socrata:
//	  host: data.austintexas.gov
//	  app_token: ${SOCRATA_TOKEN}
//	  username: ${SOCRATA_USER}
//	  password: ${SOCRATA_PW}
//	  dataset_ids:
//	    dev: j9p3-9u87
//	    prod: pj7k-98z2
//
//	device_types:
//	  - device_type: camera
//	    container: view_395
//	    fields:
//	      ip_address: field_638
//	      device_id: field_947
//	      location_id: field_642
//	      location_name: field_211
//	      knack_id: id
//	      signal_id: field_199
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the comm check.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Workers is the number of concurrent probe workers. Defaults to 300.
	Workers int `yaml:"workers"`

	// MaxAttempts is the retry budget for timed-out probes. The boundary is
	// inclusive: 2 permits up to 3 total attempts. Defaults to 2; zero
	// disables retries.
	MaxAttempts *int `yaml:"max_attempts"`

	// Timeout is the per-probe timeout. Accepts duration strings like
	// "20s", "500ms". Defaults to 20s.
	Timeout Duration `yaml:"timeout"`

	// PrivilegedICMP selects raw ICMP sockets instead of unprivileged UDP
	// ping sockets. Defaults to false.
	PrivilegedICMP bool `yaml:"privileged_icmp"`

	// Postgrest configures the device inventory source.
	Postgrest PostgrestConfig `yaml:"postgrest"`

	// S3 configures batch file storage.
	S3 S3Config `yaml:"s3"`

	// Socrata configures open data portal publishing.
	Socrata SocrataConfig `yaml:"socrata"`

	// DeviceTypes defines the probed device inventories.
	DeviceTypes []DeviceTypeConfig `yaml:"device_types"`
}

// PostgrestConfig points at the PostgREST mirror of the asset inventory.
// All values support environment variable substitution: ${VAR} or
// ${VAR:-default}.
type PostgrestConfig struct {
	// Endpoint is the base URL of the PostgREST instance.
	Endpoint string `yaml:"endpoint"`

	// Token is the JWT bearer token.
	Token string `yaml:"token"`

	// AppID filters mirrored records to one source application.
	AppID string `yaml:"app_id"`
}

// S3Config configures the batch file bucket.
type S3Config struct {
	// Bucket is the S3 bucket name. Supports environment variable
	// substitution.
	Bucket string `yaml:"bucket"`
}

// SocrataConfig configures publishing to the open data portal.
type SocrataConfig struct {
	// Host is the portal hostname (e.g. data.austintexas.gov).
	Host string `yaml:"host"`

	// AppToken, Username, Password authenticate upserts. All support
	// environment variable substitution.
	AppToken string `yaml:"app_token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// DatasetIDs maps an environment name (dev, prod) to its dataset id.
	DatasetIDs map[string]string `yaml:"dataset_ids"`
}

// DeviceTypeConfig defines one probed device inventory.
type DeviceTypeConfig struct {
	// DeviceType is the device type name (e.g. "camera").
	DeviceType string `yaml:"device_type"`

	// Container is the inventory container (object or view key) holding
	// this device type's records.
	Container string `yaml:"container"`

	// Fields maps humanized field names to the container's raw field keys.
	// "ip_address" and "device_id" mappings are required; everything else
	// is carried through as opaque record metadata.
	Fields map[string]string `yaml:"fields"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in credential and endpoint values.
// Defaults are applied for Workers (300), MaxAttempts (2), and Timeout (20s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Workers == 0 {
		cfg.Workers = 300
	}
	if cfg.MaxAttempts == nil {
		defaultAttempts := 2
		cfg.MaxAttempts = &defaultAttempts
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(20 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if *c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts cannot be negative, got %d", *c.MaxAttempts)
	}
	if c.Timeout.Duration() <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration())
	}

	for _, field := range []*string{
		&c.Postgrest.Endpoint, &c.Postgrest.Token, &c.Postgrest.AppID,
		&c.S3.Bucket,
		&c.Socrata.AppToken, &c.Socrata.Username, &c.Socrata.Password,
	} {
		expanded, err := expandEnvVars(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if len(c.DeviceTypes) == 0 {
		return fmt.Errorf("at least one device type must be defined")
	}

	seen := make(map[string]struct{}, len(c.DeviceTypes))
	for i, dt := range c.DeviceTypes {
		if dt.DeviceType == "" {
			return fmt.Errorf("device_types[%d]: device_type is required", i)
		}
		if _, dup := seen[dt.DeviceType]; dup {
			return fmt.Errorf("device_types[%d]: duplicate device_type %q", i, dt.DeviceType)
		}
		seen[dt.DeviceType] = struct{}{}

		if dt.Container == "" {
			return fmt.Errorf("device_types[%d] (%s): container is required", i, dt.DeviceType)
		}
		if dt.Fields["ip_address"] == "" {
			return fmt.Errorf("device_types[%d] (%s): fields must map ip_address", i, dt.DeviceType)
		}
		if dt.Fields["device_id"] == "" {
			return fmt.Errorf("device_types[%d] (%s): fields must map device_id", i, dt.DeviceType)
		}
	}

	return nil
}

// DeviceType looks up the configuration block for a device type name.
func (c *Config) DeviceType(name string) (DeviceTypeConfig, bool) {
	for _, dt := range c.DeviceTypes {
		if dt.DeviceType == name {
			return dt, true
		}
	}
	return DeviceTypeConfig{}, false
}

// SupportedDeviceTypes returns the configured device type names, in config order.
func (c *Config) SupportedDeviceTypes() []string {
	names := make([]string, len(c.DeviceTypes))
	for i, dt := range c.DeviceTypes {
		names[i] = dt.DeviceType
	}
	return names
}

// DatasetID returns the portal dataset id for an environment name.
func (c *Config) DatasetID(env string) (string, bool) {
	id, ok := c.Socrata.DatasetIDs[env]
	return id, ok
}
