package normalize

import "github.com/microcosm-cc/bluemonday"

var policy = newPolicy()

// newPolicy allows the markup the detail view renders and nothing else.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "ul", "ol", "li", "h3", "hr")
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("width", "height").Matching(bluemonday.NumberOrPercent).OnElements("img")
	p.AllowStandardURLs()
	p.AllowDataURIImages()
	return p
}

// Sanitize strips everything outside the allow-list from user supplied HTML.
func Sanitize(raw string) string {
	return policy.Sanitize(raw)
}
