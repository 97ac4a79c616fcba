// Package locator holds the shared selector model: locator kinds, parsed XPath
// steps, rendered CSS fragments, the translation error types and an optional
// memoization cache.
//
// Every value here is built per call and discarded. Nothing in this package
// touches a DOM.
package locator

import (
	"fmt"
	"strings"
)

// Kind identifies the grammar a locator string is written in.
type Kind int

const (
	KindCSS Kind = iota
	KindXPath
)

func (k Kind) String() string {
	switch k {
	case KindCSS:
		return "css"
	case KindXPath:
		return "xpath"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Opposite returns the other kind.
func (k Kind) Opposite() Kind {
	if k == KindXPath {
		return KindCSS
	}
	return KindXPath
}

// ParseKind maps "css" / "xpath" (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "css":
		return KindCSS, nil
	case "xpath":
		return KindXPath, nil
	}
	return 0, fmt.Errorf("locator: unknown kind %q", s)
}

// Locator is a selector string tagged with its grammar.
type Locator struct {
	Raw  string
	Kind Kind
}

func (l Locator) String() string { return l.Raw }

// LooksLikeXPath reports whether raw is written in XPath syntax. XPath
// locators start with "/", "./" or "("; CSS locators never do.
func LooksLikeXPath(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "./") ||
		strings.HasPrefix(raw, "(")
}

// Detect classifies raw by its leading characters.
func Detect(raw string) Locator {
	raw = strings.TrimSpace(raw)
	if LooksLikeXPath(raw) {
		return Locator{Raw: raw, Kind: KindXPath}
	}
	return Locator{Raw: raw, Kind: KindCSS}
}

// New builds a Locator and checks that kind matches the string's grammar.
func New(raw string, kind Kind) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, fmt.Errorf("locator: empty %s locator", kind)
	}
	if LooksLikeXPath(raw) != (kind == KindXPath) {
		return Locator{}, fmt.Errorf("%w: %q is not %s", ErrKindMismatch, raw, kind)
	}
	return Locator{Raw: raw, Kind: kind}, nil
}
