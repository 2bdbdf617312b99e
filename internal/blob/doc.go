// Package blob stores comm status batch files in S3.
//
// Batches live under the dated key layout
// {env}/{device_type}/{year}/{month}/{YYYY-MM-DD}.json, one file per device
// type per day. The check flow writes today's file; the publish flow lists
// and downloads a date range for upsert to the open data portal.
package blob
