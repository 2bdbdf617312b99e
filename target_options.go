package commcheck

import "errors"

// targetConfig holds mutable state during target construction.
type targetConfig struct {
	meta map[string]any
}

// TargetOption is a function that configures a [Target] during construction.
//
// TargetOption implements the functional options pattern, allowing optional
// pass-through metadata to be attached in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithMeta], [WithMetadata].
type TargetOption func(*targetConfig) error

// WithMeta attaches a single pass-through metadata field to the target.
//
// Metadata is opaque to the probing engine and appears unchanged in the
// published record (e.g. "knack_id", "location_name", "signal_id").
//
// Example:
//
//	t, err := commcheck.NewTarget(147, "camera", "10.66.2.12",
//	    commcheck.WithMeta("knack_id", "5f3a..."),
//	    commcheck.WithMeta("location_name", "LAMAR BLVD / 5TH ST"),
//	)
//
// Returns an error if the key is empty.
func WithMeta(key string, value any) TargetOption {
	return func(cfg *targetConfig) error {
		if key == "" {
			return errors.New("metadata key cannot be empty")
		}
		cfg.meta[key] = value
		return nil
	}
}

// WithMetadata attaches multiple pass-through metadata fields at once.
//
// Equivalent to calling [WithMeta] for every entry. Nil values are kept;
// the published record emits them as JSON null, which the downstream schema
// permits for nullable fields.
func WithMetadata(m map[string]any) TargetOption {
	return func(cfg *targetConfig) error {
		for k, v := range m {
			if k == "" {
				return errors.New("metadata key cannot be empty")
			}
			cfg.meta[k] = v
		}
		return nil
	}
}
