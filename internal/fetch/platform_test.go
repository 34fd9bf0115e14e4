package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://medium.com/@someone/a-post-123", PlatformMedium},
		{"https://engineering.medium.com/post", PlatformMedium},
		{"https://notes.substack.com/p/weekly", PlatformSubstack},
		{"https://myblog.wordpress.com/2024/01/01/hello", PlatformWordPress},
		{"https://team.ghost.io/launch/", PlatformGhost},
		{"https://dev.to/someone/post-1abc", PlatformDevTo},
		{"https://example.com/blog", PlatformUnknown},
		{"https://notmedium.com/post", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	assert.Contains(t, PlatformContentSelectors(PlatformGhost), ".gh-content")
	assert.Contains(t, PlatformContentSelectors(PlatformDevTo), "#article-body")
	assert.Equal(t, DefaultTextSelectors(), PlatformContentSelectors(PlatformUnknown))

	for _, p := range []Platform{PlatformMedium, PlatformSubstack, PlatformWordPress, PlatformGhost, PlatformDevTo} {
		assert.Contains(t, PlatformContentSelectors(p), "article", p)
	}
}

func TestPlatformNoiseSelectors(t *testing.T) {
	common := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, common, "form")

	substack := PlatformNoiseSelectors(PlatformSubstack)
	assert.Contains(t, substack, ".subscription-widget-wrap")
	assert.Greater(t, len(substack), len(common))
}
