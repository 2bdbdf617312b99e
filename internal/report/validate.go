package report

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/atd-dts/commcheck"
)

// Validator checks published records against the comm status dataset schema.
//
// The rules live as validate tags on [commcheck.Record]: every field present,
// status_code and status_desc drawn from the closed set, delay non-negative
// when set. A Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a [Validator].
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks a single record. Returns nil if the record conforms.
func (v *Validator) Validate(rec commcheck.Record) error {
	if err := v.validate.Struct(rec); err != nil {
		return fmt.Errorf("record %q failed validation: %w", rec.ID, err)
	}
	return nil
}

// ValidateAll checks every record in a batch, failing on the first
// non-conforming row. A batch is published all-or-nothing, so one bad row
// aborts the upload.
func (v *Validator) ValidateAll(records []commcheck.Record) error {
	for i, rec := range records {
		if err := v.validate.Struct(rec); err != nil {
			return fmt.Errorf("record %d (%s) failed validation: %w", i, rec.ID, err)
		}
	}
	return nil
}
