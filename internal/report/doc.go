// Package report validates and summarizes comm status batches before they
// leave the system.
//
// Validation serves as a standing test that the published schema is always
// adhered to: a failure here most likely means the source inventory container
// changed shape and produced invalid or missing data.
package report
