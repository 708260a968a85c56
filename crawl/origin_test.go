package crawl_test

import (
	"testing"

	"github.com/fwojciec/pulse/crawl"
	"github.com/stretchr/testify/assert"
)

func TestOriginSet_Contains(t *testing.T) {
	t.Parallel()

	origins := crawl.NewOriginSet([]string{"https://example.com", "http://docs.example.org:8080/guide"})

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/page1", true},
		{"https://example.com/sub/page", true},
		{"http://example.com/other-scheme", true},
		{"https://EXAMPLE.com/upper", true},
		{"https://google.com", false},
		{"https://sub.example.com/page", false},
		{"http://docs.example.org:8080/other", true},
		{"http://docs.example.org/no-port", false},
		{"/relative/path", false},
		{"mailto:someone@example.com", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, origins.Contains(tt.url))
		})
	}
}

func TestNewOriginSet_ignores_seeds_without_host(t *testing.T) {
	t.Parallel()

	origins := crawl.NewOriginSet([]string{"/docs", "https://example.com"})

	assert.Len(t, origins, 1)
}
