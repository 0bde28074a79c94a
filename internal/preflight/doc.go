// Package preflight provides readiness checks for the filesystem locations
// curator reads and rewrites.
//
// The CLI "curator config validate" command prints every result, and each
// mutating command runs RunAll first so a missing or read-only root fails
// fast instead of producing a long list of per-item errors.
package preflight
