// Package inventory fetches device asset records from the PostgREST mirror
// of the asset management system.
//
// Records arrive as loosely-typed field maps keyed by the source system's
// raw field names; the config package remaps them to the humanized names the
// probing engine expects.
package inventory
