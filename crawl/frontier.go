package crawl

import "strings"

// Item is a unit of crawl work: a URL and its link distance from a seed.
type Item struct {
	URL   string
	Depth int
}

// Frontier is a LIFO worklist of pending crawl items. Popping the most
// recently pushed item first gives depth-first traversal.
//
// Frontier is not safe for concurrent use; it is owned by the crawl
// coordinator.
type Frontier struct {
	stack []Item
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// PushAll adds items so that they pop in the order given.
func (f *Frontier) PushAll(items []Item) {
	for i := len(items) - 1; i >= 0; i-- {
		f.stack = append(f.stack, items[i])
	}
}

// Pop removes and returns the most recently pushed item.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Item, bool) {
	n := len(f.stack)
	if n == 0 {
		return Item{}, false
	}
	item := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return item, true
}

// Len returns the number of pending items.
func (f *Frontier) Len() int {
	return len(f.stack)
}

// StripFragment removes everything from the first "#" onward.
func StripFragment(rawURL string) string {
	before, _, _ := strings.Cut(rawURL, "#")
	return before
}
