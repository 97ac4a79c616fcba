// Package htmldom adapts a parsed HTML document to dom.Element.
//
// Documents load through goquery. CSS queries run on cascadia, except
// selectors using :contains(), which are translated to XPath and run on
// htmlquery so text matching stays case-sensitive as in a browser driver.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/hazyhaar/selkit/cssxpath"
	"github.com/hazyhaar/selkit/dom"
)

// Document is a parsed HTML tree.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString reads an HTML document from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// FromNode wraps an already parsed tree.
func FromNode(root *html.Node) *Document {
	return &Document{doc: goquery.NewDocumentFromNode(root)}
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.doc.Nodes[0] }

// Selection exposes the goquery view of the document.
func (d *Document) Selection() *goquery.Selection { return d.doc.Selection }

// Query runs a CSS selector over the document.
func (d *Document) Query(selector string) ([]dom.Element, error) {
	if strings.Contains(selector, ":contains(") {
		xpath, err := cssxpath.Translate(selector)
		if err != nil {
			return nil, fmt.Errorf("htmldom: query %q: %w", selector, err)
		}
		return d.QueryXPath(xpath)
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("htmldom: query %q: %w", selector, err)
	}
	return d.wrap(sel.MatchAll(d.Root())), nil
}

// QueryXPath runs an XPath expression over the document. Only element
// results are returned, each once.
func (d *Document) QueryXPath(xpath string) ([]dom.Element, error) {
	nodes, err := htmlquery.QueryAll(d.Root(), xpath)
	if err != nil {
		return nil, fmt.Errorf("htmldom: xpath %q: %w", xpath, err)
	}
	return d.wrap(nodes), nil
}

// Element wraps n, which must belong to d.
func (d *Document) Element(n *html.Node) *Element {
	return &Element{doc: d, node: n}
}

// wrap keeps element nodes in first-seen order. htmlquery can return a
// node once per axis path that reaches it.
func (d *Document) wrap(nodes []*html.Node) []dom.Element {
	out := make([]dom.Element, 0, len(nodes))
	seen := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		if n.Type != html.ElementNode || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, d.Element(n))
	}
	return out
}

// Element is one element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

var _ dom.Element = (*Element)(nil)

// Node returns the underlying node.
func (e *Element) Node() *html.Node { return e.node }

func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) TagName() string { return strings.ToLower(e.node.Data) }

func (e *Element) TextContent() string {
	return goquery.NewDocumentFromNode(e.node).Text()
}

func (e *Element) Parent() dom.Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.Element(p)
}

func (e *Element) PreviousSiblings() []dom.Element {
	var out []dom.Element
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			out = append(out, e.doc.Element(s))
		}
	}
	return out
}

func (e *Element) Query(selector string) ([]dom.Element, error) {
	return e.doc.Query(selector)
}

func (e *Element) Same(other dom.Element) bool {
	o, ok := other.(*Element)
	return ok && o.node == e.node
}
