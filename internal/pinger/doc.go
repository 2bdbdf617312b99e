// Package pinger issues single ICMP reachability probes and classifies their
// outcomes.
//
// This package contains the poller-internal probe types, decoupled from the
// public commcheck types to avoid circular dependencies. A probe never
// returns a Go error: every failure mode is reported through the outcome
// value so that one misbehaving target can never abort a batch run.
package pinger
