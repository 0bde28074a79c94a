package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CompositeSeparator joins logical names inside a single folder name.
const CompositeSeparator = "+"

var lowerCaser = cases.Lower(language.Und)

// Lower folds s to NFC lowercase. Folder names created on different systems
// may carry decomposed accents, so both forms compare equal afterwards.
func Lower(s string) string {
	return lowerCaser.String(norm.NFC.String(s))
}

// Canonicalize strips the censored tag (case-insensitive), trims whitespace,
// and lowercases name.
func Canonicalize(name, censoredTag string) string {
	lowered := Lower(name)
	if tag := Lower(strings.TrimSpace(censoredTag)); tag != "" {
		lowered = strings.ReplaceAll(lowered, tag, "")
	}
	return strings.TrimSpace(lowered)
}

// IsComposite reports whether name contains the composite separator.
func IsComposite(name string) bool {
	return strings.Contains(name, CompositeSeparator)
}

// SplitComposite splits name on "+" and drops empty parts. A name without a
// separator comes back as a single-element slice holding the original value.
func SplitComposite(name string) []string {
	if !IsComposite(name) {
		return []string{name}
	}
	raw := strings.Split(name, CompositeSeparator)
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// StripArtistDecoration lowercases name, removes the literal "artist", then
// drops a "_()" marker, or a bare "()" when no "_()" is present.
func StripArtistDecoration(name string) string {
	cleaned := strings.ReplaceAll(Lower(strings.TrimSpace(name)), "artist", "")
	if strings.Contains(cleaned, "_()") {
		cleaned = strings.ReplaceAll(cleaned, "_()", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, "()", "")
	}
	return cleaned
}

// NormalizeBlacklistName converts a name to its blacklist storage form:
// trimmed, lowercased, spaces replaced with underscores.
func NormalizeBlacklistName(name string) string {
	return strings.ReplaceAll(Lower(strings.TrimSpace(name)), " ", "_")
}
