package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Kind labels a block of extracted page text. The set is closed; formatting
// dispatches over it rather than inspecting element names downstream.
type Kind int

const (
	// KindTitle marks headings (h1..h6).
	KindTitle Kind = iota
	// KindNarrative marks paragraph-like prose.
	KindNarrative
	// KindPlain marks short plain text such as labels, captions, list items.
	KindPlain
)

// Block is one labeled unit of extracted text, in document order.
type Block struct {
	Kind Kind
	Text string
}

// Blocks extracts labeled text blocks from HTML, preferring <main> or
// <article> as the content root and falling back to <body>. Obvious
// boilerplate (nav, footer, scripts, cookie banners) is skipped. The result
// preserves document order and is deterministic for identical input.
func Blocks(input []byte) []Block {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return nil
	}
	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		return nil
	}
	var blocks []Block
	walk(content, &blocks)
	return blocks
}

// Markdown renders blocks as markdown lines: headings for titles, emphasis
// for short plain text, narrative text unchanged. Blocks are joined with
// newlines.
func Markdown(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case KindTitle:
			parts = append(parts, "# "+b.Text)
		case KindPlain:
			parts = append(parts, "*"+b.Text+"*")
		default:
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "pre": true, "blockquote": true, "td": true,
	"figcaption": true, "dt": true, "dd": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true,
	"footer": true, "aside": true, "iframe": true, "form": true,
	"button": true, "svg": true,
}

func walk(n *html.Node, blocks *[]Block) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skipTags[name] || isBoilerplateContainer(n) {
			return
		}
		if blockTags[name] {
			text := collapseSpaces(strings.TrimSpace(inlineText(n)))
			if text != "" {
				*blocks = append(*blocks, Block{Kind: classify(name, text), Text: text})
			}
			// Nested block elements (e.g. a list inside a list item) are
			// emitted separately; inlineText stopped at their boundary.
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, blocks)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, blocks)
	}
}

// inlineText gathers text from a block element's inline content, stopping at
// nested block elements so they are not collected twice.
func inlineText(n *html.Node) string {
	var b strings.Builder
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if cur.Type == html.ElementNode {
			name := strings.ToLower(cur.Data)
			if skipTags[name] {
				return
			}
			if cur != n && blockTags[name] {
				return
			}
			if name == "br" {
				b.WriteString(" ")
			}
		}
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(n)
	return b.String()
}

func classify(tag, text string) Kind {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return KindTitle
	}
	words := len(strings.Fields(text))
	if words >= 8 {
		return KindNarrative
	}
	if words >= 3 && strings.ContainsAny(text[len(text)-1:], ".!?") {
		return KindNarrative
	}
	return KindPlain
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		val := strings.ToLower(attr.Val)
		if containsAny(val, []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
