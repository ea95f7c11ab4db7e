package search

import (
	"strings"
	"testing"
)

func TestStripTags(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"<b>bold</b> rest", "bold rest"},
		{`<span class="searchmatch">hit</span> nearby`, "hit nearby"},
		{"<p>a</p><p>b</p>", "ab"},
	}
	for _, tc := range cases {
		if got := stripTags(tc.in); got != tc.want {
			t.Errorf("stripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeSnippet(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 40) + "needle in the middle " + strings.Repeat("dolor sit ", 40)
	got := makeSnippet("<p>"+long+"</p>", "needle")
	if !strings.Contains(got, "needle") {
		t.Fatalf("snippet %q does not contain the match", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet %q not elided on both sides", got)
	}
	if len(got) > 2*snippetRadius+len("needle")+10 {
		t.Errorf("snippet too long: %d chars", len(got))
	}

	if got := makeSnippet("short text", "missing"); got != "short text" {
		t.Errorf("head snippet = %q", got)
	}
	if got := makeSnippet("", "x"); got != "" {
		t.Errorf("empty content snippet = %q", got)
	}
}
