package pulse

// Page is the cleaned main-content text of one visited URL.
// Pages are never modified once recorded by a crawl.
type Page struct {
	URL  string
	Text string
}

// ParsedPage holds what a PageParser found in a single HTML document.
type ParsedPage struct {
	// Text is the cleaned main-content text: one non-empty trimmed line per
	// text fragment, joined with newlines.
	Text string

	// Links are absolute, fragment-free http(s) URLs in document order.
	// Links inside stripped chrome (nav, header, footer) are not included.
	Links []string
}

// PageParser reduces raw HTML to its main-content text and outgoing links.
type PageParser interface {
	// Parse processes raw HTML fetched from pageURL.
	// Relative links are resolved against pageURL.
	Parse(html, pageURL string) (*ParsedPage, error)
}
