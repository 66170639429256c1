package enrichment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildPrompt_IncludesKeysAndSignals(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("# Acme\nWe build rockets.", DefaultMaxContentChars)

	for _, want := range []string{
		`"summary"`, `"description"`, `"keywords"`, `"industry"`, `"location"`, `"signals"`,
		"Careers Page", "Recent Blog/News", "Changelog", "Product Type",
		"We build rockets.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_Truncates(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("a", 20000)
	p := BuildPrompt(content, 15000)

	if got := strings.Count(p[len(promptHeader):], "a"); got != 15000 {
		t.Errorf("content chars in prompt = %d, want 15000", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abc", 3, "abc"},
		{"cut", "abcdef", 4, "abcd"},
		{"multibyte", "héllo wörld", 7, "héllo w"},
		{"zero disables", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := truncateRunes(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateRunes produced invalid UTF-8: %q", got)
			}
		})
	}
}
