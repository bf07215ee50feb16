// Package extract pulls plain text out of crawled HTML, keeping a separately
// weighted "important" subset made of the title, h1-h3 headings and bold or
// strong emphasis.
package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text is the result of extracting one document.
type Text struct {
	Full      string
	Important string
}

// Extract parses content and returns its visible text and its important
// text. Malformed input never fails: a document the parser rejects yields
// two empty strings.
func Extract(content string) Text {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return Text{}
	}
	w := &walker{}
	w.walk(root)
	return Text{
		Full:      strings.Join(w.full, " "),
		Important: strings.Join(w.important, " "),
	}
}

type walker struct {
	full      []string
	important []string
	sawTitle  bool
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			w.full = append(w.full, s)
		}
		return
	case html.ElementNode:
		if isHidden(n.DataAtom) {
			return
		}
		if w.isImportant(n) {
			w.important = append(w.important, innerText(n))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) isImportant(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Title:
		// only the first title element counts
		if w.sawTitle {
			return false
		}
		w.sawTitle = true
		return true
	case atom.H1, atom.H2, atom.H3, atom.B, atom.Strong:
		return true
	}
	return false
}

func isHidden(a atom.Atom) bool {
	return a == atom.Script || a == atom.Style || a == atom.Template || a == atom.Noscript
}

// innerText concatenates the text nodes under n without separators.
func innerText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && isHidden(n.DataAtom) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
