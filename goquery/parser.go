// Package goquery implements pulse.PageParser using goquery CSS selection
// over the golang.org/x/net/html tree.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pulse"
	"golang.org/x/net/html"
)

// Ensure Parser implements pulse.PageParser at compile time.
var _ pulse.PageParser = (*Parser)(nil)

// ChromeSelector matches elements removed from the whole document before
// text extraction and link discovery.
const ChromeSelector = "script, style, nav, footer, header"

// NestedChromeSelector matches elements removed from inside the main
// content node.
const NestedChromeSelector = "nav, footer, header, aside"

// MainContentSelectors are tried in order; the first that matches selects
// the main content node. body is the last resort.
var MainContentSelectors = []string{
	"main",
	"article",
	"div[role=main]",
	"div.content",
	"div.main-content",
	"div#content",
	"div#main",
	"body",
}

// Parser reduces HTML pages to their main-content text and links.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse strips page chrome, selects the main content node and returns its
// cleaned text together with every remaining link in the document.
func (p *Parser) Parse(rawHTML, pageURL string) (*pulse.ParsedPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, pulse.Errorf(pulse.EINVALID, "invalid page URL: %v", err)
	}

	// With scripting disabled, noscript contents parse as elements rather
	// than raw text, so only their text reaches the page.
	root, err := html.ParseWithOptions(strings.NewReader(rawHTML), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, pulse.Errorf(pulse.EINVALID, "failed to parse HTML: %v", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find(ChromeSelector).Remove()

	var text string
	if content := selectMain(doc); content != nil {
		content.Find(NestedChromeSelector).Remove()
		text = cleanText(content)
	}

	return &pulse.ParsedPage{
		Text:  text,
		Links: extractLinks(doc, base),
	}, nil
}

// selectMain returns the first match of the first matching selector in
// MainContentSelectors, or nil if none match.
func selectMain(doc *goquery.Document) *goquery.Selection {
	for _, sel := range MainContentSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// cleanText collects the selection's text nodes one per line, trims each
// line and drops empty ones.
func cleanText(sel *goquery.Selection) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			for _, line := range splitLines(n.Data) {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}

// splitLines splits s on every line boundary, including vertical tab,
// form feed, the file/group/record separators and the Unicode line and
// paragraph separators. "\r\n" counts as one boundary.
func splitLines(s string) []string {
	return strings.FieldsFunc(s, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// extractLinks returns every anchor href in document order, resolved
// against base with the fragment stripped. Non-http(s) links are dropped.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if isNonHTTPLink(href) {
			return
		}
		if resolved := resolveURL(base, href); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveURL resolves a possibly relative href against base and strips
// the fragment. Returns empty string if the href cannot be parsed or the
// result is not an http(s) URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
