// Package xpathcss translates the commonly used subset of XPath into CSS.
//
// The pipeline is: bracket protection for quoted literals, a short table of
// literal idiom rewrites, removal of one outer grouping, a recursive-descent
// step parser, then rendering with ">" and " " combinators. Anything outside
// the grammar fails with *locator.UnsupportedXPathError carrying the
// unconsumed remainder; characters are never silently dropped.
//
//	css, err := xpathcss.Translate("//div[@id='main']/span[@class='hl']")
//	// css == "div#main > span.hl"
package xpathcss

import (
	"errors"

	"github.com/hazyhaar/selkit/locator"
)

// Translator converts XPath to CSS, optionally memoizing results.
type Translator struct {
	cache *locator.Cache
}

// Option configures a Translator.
type Option func(*Translator)

// WithCache memoizes translations in c.
func WithCache(c *locator.Cache) Option { return func(t *Translator) { t.cache = c } }

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Translate converts xpath to CSS.
func (t *Translator) Translate(xpath string) (string, error) {
	return t.cache.Memo(xpath, Translate)
}

// Cache returns the translator's cache, which may be nil.
func (t *Translator) Cache() *locator.Cache { return t.cache }

// Translate converts xpath to CSS without caching.
func Translate(xpath string) (string, error) {
	steps, err := Parse(xpath)
	if err != nil {
		return "", err
	}
	frag, err := Render(steps)
	if err != nil {
		var ue *locator.UnsupportedXPathError
		if errors.As(err, &ue) && ue.Input == "" {
			ue.Input = xpath
		}
		return "", err
	}
	return frag.CollapseHTMLBody().String(), nil
}
