package crawl_test

import (
	"testing"

	"github.com/fwojciec/pulse/crawl"
	"github.com/stretchr/testify/assert"
)

func TestFrontier_Pop_returns_most_recent_first(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.PushAll([]crawl.Item{crawl.Item{URL: "https://example.com/a"}})
	f.PushAll([]crawl.Item{crawl.Item{URL: "https://example.com/b", Depth: 1}})

	item, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, crawl.Item{URL: "https://example.com/b", Depth: 1}, item)

	item, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a", item.URL)
}

func TestFrontier_PushAll_pops_in_given_order(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.PushAll([]crawl.Item{crawl.Item{URL: "https://example.com/later"}})
	f.PushAll([]crawl.Item{
		{URL: "https://example.com/1", Depth: 1},
		{URL: "https://example.com/2", Depth: 1},
		{URL: "https://example.com/3", Depth: 1},
	})

	var got []string
	for {
		item, ok := f.Pop()
		if !ok {
			break
		}
		got = append(got, item.URL)
	}

	assert.Equal(t, []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
		"https://example.com/later",
	}, got)
}

func TestFrontier_Pop_on_empty(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	_, ok := f.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())
}

func TestFrontier_Len(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.PushAll([]crawl.Item{{URL: "a"}, {URL: "b"}})
	assert.Equal(t, 2, f.Len())

	f.Pop()
	assert.Equal(t, 1, f.Len())
}

func TestStripFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/page", "https://example.com/page"},
		{"https://example.com/page#a#b", "https://example.com/page"},
		{"https://example.com/#", "https://example.com/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, crawl.StripFragment(tt.in))
		})
	}
}
