package mock

import "github.com/fwojciec/pulse"

var _ pulse.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of pulse.PageParser.
type PageParser struct {
	ParseFn func(html, pageURL string) (*pulse.ParsedPage, error)
}

func (p *PageParser) Parse(html, pageURL string) (*pulse.ParsedPage, error) {
	return p.ParseFn(html, pageURL)
}
