// Package socrata publishes comm status rows to an open data portal dataset.
package socrata
