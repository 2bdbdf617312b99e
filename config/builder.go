package config

import "github.com/atd-dts/commcheck"

// BuildTargets converts raw inventory records into SDK targets.
//
// Each record is remapped through the device type's field map (humanized
// name -> raw container field key) and then handed to
// [commcheck.TargetsFromRecords], which admits or drops it on the target
// invariant. A missing raw field remaps to nil and, for optional metadata,
// publishes as null downstream.
//
// Returns the admitted targets in record order and the count of dropped
// records.
func BuildTargets(dt DeviceTypeConfig, records []map[string]any) ([]commcheck.Target, int) {
	remapped := make([]map[string]any, len(records))
	for i, rec := range records {
		m := make(map[string]any, len(dt.Fields))
		for humanized, rawField := range dt.Fields {
			m[humanized] = rec[rawField]
		}
		remapped[i] = m
	}

	return commcheck.TargetsFromRecords(dt.DeviceType, remapped)
}
