// Package fileutil holds the filesystem helpers shared by the curator engines:
// simulate-aware moves and renames, directory merges, removal sinks, atomic
// store writes, and content hashing.
package fileutil
