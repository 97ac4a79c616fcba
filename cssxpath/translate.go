// Package cssxpath translates CSS selectors into XPath.
//
// Selectors are tokenized with the CSS3 syntax lexer, parsed into compound
// selectors joined by combinators, then walked. The walker handles
// traversal and structural pseudo-classes; an Emitter renders ids, classes,
// attribute tests and combinators. Generic is the walker's native output,
// Compact the short "//" form that Translate uses.
//
//	x, err := cssxpath.Translate(`a.button[href*="/go"]`)
//	// x == `//a[(contains(@class, "button")) and (contains(@href, "/go"))]`
package cssxpath

import (
	"errors"

	"github.com/hazyhaar/selkit/locator"
)

// Translator converts CSS to XPath with a fixed Emitter, optionally
// memoizing results.
type Translator struct {
	emitter Emitter
	cache   *locator.Cache
}

// Option configures a Translator.
type Option func(*Translator)

// WithEmitter replaces the default Compact emitter.
func WithEmitter(e Emitter) Option { return func(t *Translator) { t.emitter = e } }

// WithCache memoizes translations in c. A cache must not be shared between
// translators using different emitters.
func WithCache(c *locator.Cache) Option { return func(t *Translator) { t.cache = c } }

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{emitter: NewCompact()}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Translate converts css to XPath.
func (t *Translator) Translate(css string) (string, error) {
	return t.cache.Memo(css, func(s string) (string, error) {
		return TranslateWith(t.emitter, s)
	})
}

// Cache returns the translator's cache, which may be nil.
func (t *Translator) Cache() *locator.Cache { return t.cache }

// Translate converts css to XPath with the Compact emitter.
func Translate(css string) (string, error) {
	return TranslateWith(NewCompact(), css)
}

// TranslateWith converts css to XPath through e.
func TranslateWith(e Emitter, css string) (string, error) {
	sels, err := Parse(css)
	if err != nil {
		return "", err
	}
	out, err := walker{e: e, input: css}.group(sels)
	if err != nil {
		var ue *locator.UnsupportedCSSError
		if errors.As(err, &ue) && ue.Input == "" {
			ue.Input = css
		}
		return "", err
	}
	return out, nil
}
