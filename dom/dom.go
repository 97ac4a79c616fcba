// Package dom defines the element surface the selector synthesizer reads.
// Adapters exist for parsed HTML (htmldom) and live browser pages (roddom).
package dom

// Element is a handle to one element of a document.
//
// Methods never fail: an adapter that cannot read a value reports it as
// absent. Query is the exception because a bad selector is the caller's
// error, not the document's.
type Element interface {
	// Attribute returns the attribute value and whether it is present.
	Attribute(name string) (string, bool)
	// TagName is the lower-case element name.
	TagName() string
	// TextContent is the concatenated text of the element's subtree.
	TextContent() string
	// Parent is nil for the root element.
	Parent() Element
	// PreviousSiblings lists the element siblings before this one.
	PreviousSiblings() []Element
	// Query runs a CSS selector against the whole document.
	Query(selector string) ([]Element, error)
	// Same reports whether other refers to the same node.
	Same(other Element) bool
}

// NthOfType is the 1-based position of el among its siblings of the same
// tag.
func NthOfType(el Element) int {
	tag := el.TagName()
	n := 1
	for _, s := range el.PreviousSiblings() {
		if s.TagName() == tag {
			n++
		}
	}
	return n
}

// Ancestors returns el's ancestors, nearest first.
func Ancestors(el Element) []Element {
	var out []Element
	for p := el.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// ResolvesTo reports whether selector matches exactly one element and it
// is el.
func ResolvesTo(el Element, selector string) bool {
	found, err := el.Query(selector)
	return err == nil && len(found) == 1 && found[0].Same(el)
}
