package normalize

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// FallbackTitle is used when no candidate title survives the length rules.
const FallbackTitle = "Untitled"

const (
	maxTitleRunes    = 100
	minSentenceRunes = 3
)

var headings = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

// skipped elements never contribute text.
var skipped = map[string]bool{"script": true, "style": true, "noscript": true, "template": true}

// Parse parses a proposal body. html.Parse only fails on reader errors, so a
// malformed body still yields a document.
func Parse(body string) *html.Node {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return &html.Node{Type: html.DocumentNode}
	}
	return doc
}

// Body returns the <body> element of doc, or doc itself when there is none.
func Body(doc *html.Node) *html.Node {
	if b := findFirst(doc, func(n *html.Node) bool { return n.Data == "body" }); b != nil {
		return b
	}
	return doc
}

// ExtractText flattens n into plain text. Block elements end with a period,
// list items get a bullet, <br> becomes a newline.
func ExtractText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if t := strings.TrimSpace(c.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		case html.ElementNode:
			if skipped[c.Data] {
				continue
			}
			if c.Data == "br" {
				trimTrailingSpace(&b)
				b.WriteByte('\n')
				continue
			}
			inner := ExtractText(c)
			if inner == "" {
				continue
			}
			switch {
			case c.Data == "p" || c.Data == "div" || headings[c.Data]:
				writeSentence(&b, inner)
			case c.Data == "li":
				b.WriteString("• ")
				writeSentence(&b, inner)
			default:
				b.WriteString(inner)
				b.WriteByte(' ')
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func trimTrailingSpace(b *strings.Builder) {
	s := b.String()
	if t := strings.TrimRight(s, " "); len(t) != len(s) {
		b.Reset()
		b.WriteString(t)
	}
}

func writeSentence(b *strings.Builder, s string) {
	b.WriteString(s)
	if !strings.ContainsAny(s[len(s)-1:], ".!?") {
		b.WriteByte('.')
	}
	b.WriteByte(' ')
}

// ExtractTitle picks a display title for a parsed proposal body.
//
// Candidates come from the first heading, the first strong text (inside a
// paragraph first), the first sentence of the flattened text and the first
// paragraph. Every candidate must be non-empty and at most 100 runes; the
// sentence must also be longer than 3 runes. Multi-word candidates beat single
// words, then shorter beats longer, then the order above breaks ties.
func ExtractTitle(doc *html.Node) string {
	body := Body(doc)
	var candidates []string
	add := func(s string, min int) {
		s = collapse(s)
		n := utf8.RuneCountInString(s)
		if n > min && n <= maxTitleRunes {
			candidates = append(candidates, s)
		}
	}

	if h := findFirst(body, func(n *html.Node) bool { return headings[n.Data] }); h != nil {
		add(textContent(h), 0)
	}
	if s := firstStrong(body); s != "" {
		add(s, 0)
	}
	add(firstSentence(ExtractText(body)), minSentenceRunes)
	if p := findFirst(body, func(n *html.Node) bool { return n.Data == "p" }); p != nil {
		add(textContent(p), 0)
	}

	if len(candidates) == 0 {
		return FallbackTitle
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		wi, wj := singleWord(candidates[i]), singleWord(candidates[j])
		if wi != wj {
			return !wi
		}
		return utf8.RuneCountInString(candidates[i]) < utf8.RuneCountInString(candidates[j])
	})
	return candidates[0]
}

// FirstImage returns the src of the first <img> with one.
func FirstImage(doc *html.Node) string {
	img := findFirst(Body(doc), func(n *html.Node) bool {
		return n.Data == "img" && strings.TrimSpace(attr(n, "src")) != ""
	})
	if img == nil {
		return ""
	}
	return strings.TrimSpace(attr(img, "src"))
}

func firstStrong(body *html.Node) string {
	var inParagraph, anywhere string
	var walk func(n *html.Node, inP bool)
	walk = func(n *html.Node, inP bool) {
		if inParagraph != "" {
			return
		}
		if n.Type == html.ElementNode {
			if skipped[n.Data] {
				return
			}
			if n.Data == "strong" {
				if t := collapse(textContent(n)); t != "" {
					if inP {
						inParagraph = t
						return
					}
					if anywhere == "" {
						anywhere = t
					}
				}
			}
			inP = inP || n.Data == "p"
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inP)
		}
	}
	walk(body, false)
	if inParagraph != "" {
		return inParagraph
	}
	return anywhere
}

func firstSentence(text string) string {
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// findFirst walks n depth first and returns the first element matching.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		if skipped[n.Data] {
			return nil
		}
		if match(n) {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates every text node below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func singleWord(s string) bool {
	return len(strings.Fields(s)) == 1
}
