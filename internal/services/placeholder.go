package services

import "strings"

// PlaceholderMatcher recognizes generated narratives that only say "no data" in some form.
type PlaceholderMatcher struct {
	patterns []string
}

func NewPlaceholderMatcher(patterns []string) *PlaceholderMatcher {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return &PlaceholderMatcher{patterns: out}
}

// IsPlaceholder is true for empty text or text containing any configured pattern.
func (m *PlaceholderMatcher) IsPlaceholder(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return true
	}
	for _, p := range m.patterns {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

// IsMissing treats a nil narrative like a placeholder.
func (m *PlaceholderMatcher) IsMissing(text *string) bool {
	return text == nil || m.IsPlaceholder(*text)
}
