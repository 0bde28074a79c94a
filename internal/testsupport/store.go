package testsupport

import (
	"strings"
	"testing"
)

// WritePairList seeds a judged-pair store in its on-disk format.
func WritePairList(t testing.TB, path string, rejected, accepted [][2]string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("## blacklist\n")
	for _, pair := range rejected {
		b.WriteString(pair[0] + "," + pair[1] + "\n")
	}
	b.WriteString("## whitelist\n")
	for _, pair := range accepted {
		b.WriteString(pair[0] + "," + pair[1] + "\n")
	}
	WriteText(t, "/", path, b.String())
}

// WriteBlacklist seeds a categorized blacklist store. Categories are written
// in the order given by order; names are written verbatim.
func WriteBlacklist(t testing.TB, path string, order []string, categories map[string][]string) {
	t.Helper()

	var b strings.Builder
	for _, category := range order {
		b.WriteString("#" + category + "\n")
		for _, name := range categories[category] {
			b.WriteString(name + "\n")
		}
	}
	WriteText(t, "/", path, b.String())
}
