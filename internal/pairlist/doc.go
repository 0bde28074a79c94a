// Package pairlist persists judged name pairs: pairs a human confirmed as the
// same artist (whitelist) or as different artists (blacklist).
//
// The store is a flat UTF-8 text file with a "## blacklist" section followed
// by a "## whitelist" section, one "a,b" pair per line.
// Pair lines are CSV records, so a name holding a comma is written quoted. Lookups are symmetric:
// (a,b) and (b,a) are the same pair, and a pair lives in exactly one section.
package pairlist
