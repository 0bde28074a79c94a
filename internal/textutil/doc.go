// Package textutil provides the name processing shared by the matching,
// blacklist, and cleanup engines.
//
// The primary use cases are:
//   - Canonicalizing folder names for identity comparison
//   - Splitting composite "A+B" folder names into their parts
//   - Scoring two names with a token-set similarity ratio
//
// Tokenization lowercases text and splits on every rune that is neither a
// letter nor a digit, so "artist_foo" and "Artist Foo" produce the same tokens.
package textutil
