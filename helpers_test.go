package pubcorpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://blog.example.com", []string{"api", "posts", "a-post"}, "https://blog.example.com/api/posts/a-post/"},
		{"https://blog.example.com/", []string{"api"}, "https://blog.example.com/api/"},
		{"https://example.com/blog", []string{"api", "tags"}, "https://example.com/blog/api/tags/"},
		{"https://blog.example.com", nil, "https://blog.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.segments...), "BuildURL(%q, %v)", tt.base, tt.segments)
	}
}

func TestParsePaging(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, DefaultPageLimit},
		{"3", "10", 3, 10},
		{"0", "-1", 1, DefaultPageLimit},
		{"abc", "1000", 1, MaxPageLimit},
	}
	for _, tt := range tests {
		page, limit := parsePaging(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page, "page for %q", tt.page)
		assert.Equal(t, tt.wantLimit, limit, "limit for %q", tt.limit)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		total, page, limit int
		start, end         int
	}{
		{10, 1, 4, 0, 4},
		{10, 3, 4, 8, 10},
		{10, 4, 4, 10, 10},
		{0, 1, 20, 0, 0},
	}
	for _, tt := range tests {
		start, end := paginate(tt.total, tt.page, tt.limit)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}
