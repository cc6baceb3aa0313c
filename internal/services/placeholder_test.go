package services

import (
	"testing"

	"github.com/yungbote/execudex-backend/internal/config"
)

func TestPlaceholderMatcher(t *testing.T) {
	m := NewPlaceholderMatcher(config.DefaultPlaceholderPatterns)
	cases := map[string]bool{
		"":                                true,
		"   ":                             true,
		"No Data Available":               true,
		"Information N/A":                 true,
		"Details coming soon.":            true,
		"Served two terms in the senate.": false,
	}
	for text, want := range cases {
		if got := m.IsPlaceholder(text); got != want {
			t.Fatalf("IsPlaceholder(%q): want=%v got=%v", text, want, got)
		}
	}
	if !m.IsMissing(nil) {
		t.Fatalf("IsMissing(nil): want=true")
	}
}

func TestPlaceholderMatcherCustomPatterns(t *testing.T) {
	m := NewPlaceholderMatcher([]string{"  UNKNOWN ", ""})
	if !m.IsPlaceholder("status unknown") {
		t.Fatalf("custom pattern not matched")
	}
	if m.IsPlaceholder("no data") {
		t.Fatalf("default patterns must not apply")
	}
}
