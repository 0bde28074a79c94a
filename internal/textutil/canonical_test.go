package textutil

import (
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		tag  string
		want string
	}{
		{"lowercases and trims", "  Artist Foo ", "[Censored]", "artist foo"},
		{"strips tag any case", "Foo [CENSORED]", "[Censored]", "foo"},
		{"strips tag mid name", "Foo [censored] Bar", "[Censored]", "foo  bar"},
		{"empty tag leaves name", "Foo [Censored]", "", "foo [censored]"},
		{"unicode lowercase", "ÉCOLE", "", "école"},
		{"decomposed accent composes", "E\u0301cole", "", "\u00e9cole"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.in, tt.tag); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitComposite(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      []string
		composite bool
	}{
		{"atomic", "Artist Foo", []string{"Artist Foo"}, false},
		{"two parts", "A+B", []string{"A", "B"}, true},
		{"trims parts", " A + B ", []string{"A", "B"}, true},
		{"drops empty parts", "A++B+", []string{"A", "B"}, true},
		{"composite with one part", "A+", []string{"A"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitComposite(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitComposite(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if IsComposite(tt.in) != tt.composite {
				t.Errorf("IsComposite(%q) = %v, want %v", tt.in, !tt.composite, tt.composite)
			}
		})
	}
}

func TestStripArtistDecoration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Artist_Foo", "_foo"},
		{"foo_()", "foo"},
		{"foo()", "foo"},
		{"foo_() ()", "foo ()"},
		{"Foo Bar", "foo bar"},
	}

	for _, tt := range tests {
		if got := StripArtistDecoration(tt.in); got != tt.want {
			t.Errorf("StripArtistDecoration(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBlacklistName(t *testing.T) {
	if got := NormalizeBlacklistName("  Various Artists "); got != "various_artists" {
		t.Fatalf("NormalizeBlacklistName = %q", got)
	}
}
