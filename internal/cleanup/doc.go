// Package cleanup finds housekeeping targets in the library: empty folders,
// known junk files identified by content hash, and leaf folders with only a
// few files. It also provides the composite-aware folder search.
//
// Scans only report candidates. Delete and MoveMicro carry out one candidate
// at a time through fileutil.FS, so simulate mode and the trash directory
// apply uniformly.
package cleanup
