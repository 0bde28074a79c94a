package blacklist

import (
	"strings"

	"curator/internal/textutil"
)

// FullyBlacklistedPrefix marks a folder name whose every part is blacklisted.
const FullyBlacklistedPrefix = "!FBL_"

// StripBlacklisted drops the composite parts of name whose normalized form is
// in set. Atomic names are returned unchanged. When every part is dropped the
// result is FullyBlacklistedPrefix + name, never an empty string.
func StripBlacklisted(name string, set map[string]struct{}) string {
	if !textutil.IsComposite(name) {
		return name
	}
	parts := strings.Split(name, textutil.CompositeSeparator)
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if _, blocked := set[textutil.NormalizeBlacklistName(part)]; blocked {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return FullyBlacklistedPrefix + name
	}
	return strings.Join(kept, textutil.CompositeSeparator)
}

// CleanSeparators collapses repeated "+" separators and trims them from both
// ends of name.
func CleanSeparators(name string) string {
	for strings.Contains(name, "++") {
		name = strings.ReplaceAll(name, "++", "+")
	}
	return strings.Trim(name, textutil.CompositeSeparator)
}
