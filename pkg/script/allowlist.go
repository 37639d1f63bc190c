package script

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

// ErrURLNotAllowed is returned when a goto target matches no allowed pattern.
var ErrURLNotAllowed = errors.New("url not allowed")

// URLMatcher checks navigation targets against glob patterns.
type URLMatcher struct {
	patterns []glob.Glob
}

// NewURLMatcher compiles the allowed patterns. "*" matches any run of
// characters, "/" included.
func NewURLMatcher(allowed []string) (*URLMatcher, error) {
	m := &URLMatcher{}
	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed url pattern '%s': %w", pattern, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// IsAllowed returns true if url matches a pattern or no patterns are set.
func (m *URLMatcher) IsAllowed(url string) bool {
	if len(m.patterns) == 0 {
		return true
	}
	for _, pattern := range m.patterns {
		if pattern.Match(url) {
			return true
		}
	}
	return false
}

// Check returns ErrURLNotAllowed for a url outside the allowlist.
func (m *URLMatcher) Check(url string) error {
	if !m.IsAllowed(url) {
		return fmt.Errorf("%w: %s", ErrURLNotAllowed, url)
	}
	return nil
}
