// Package roddom adapts live go-rod elements to dom.Element.
package roddom

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/selkit/cssxpath"
	"github.com/hazyhaar/selkit/dom"
)

// Element wraps a rod element. Read failures are logged at Debug and
// reported as absent values.
type Element struct {
	el     *rod.Element
	logger *slog.Logger
}

var _ dom.Element = (*Element)(nil)

// Wrap adapts el. A nil logger falls back to slog.Default().
func Wrap(el *rod.Element, logger *slog.Logger) *Element {
	if logger == nil {
		logger = slog.Default()
	}
	return &Element{el: el, logger: logger}
}

// Rod returns the wrapped element.
func (e *Element) Rod() *rod.Element { return e.el }

func (e *Element) Attribute(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil {
		e.logger.Debug("roddom: attribute", "name", name, "error", err)
		return "", false
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

func (e *Element) TagName() string {
	return strings.ToLower(e.evalString(`() => this.tagName`))
}

func (e *Element) TextContent() string {
	return e.evalString(`() => this.textContent || ""`)
}

func (e *Element) evalString(js string) string {
	res, err := e.el.Eval(js)
	if err != nil {
		e.logger.Debug("roddom: eval", "js", js, "error", err)
		return ""
	}
	return res.Value.Str()
}

// Parent is nil at the root, where parentElement is null.
func (e *Element) Parent() dom.Element {
	p, err := e.el.Parent()
	if err != nil {
		return nil
	}
	return Wrap(p, e.logger)
}

func (e *Element) PreviousSiblings() []dom.Element {
	var out []dom.Element
	for cur := e.el; ; {
		prev, err := cur.Previous()
		if err != nil {
			return out
		}
		out = append(out, Wrap(prev, e.logger))
		cur = prev
	}
}

// Query runs selector on the element's page. Selectors using :contains()
// run as XPath because browsers do not implement that pseudo-class.
func (e *Element) Query(selector string) ([]dom.Element, error) {
	return Query(e.el.Page(), selector, e.logger)
}

func (e *Element) Same(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok {
		return false
	}
	eq, err := e.el.Equal(o.el)
	return err == nil && eq
}

// Query runs a CSS selector on page and wraps the matches.
func Query(page *rod.Page, selector string, logger *slog.Logger) ([]dom.Element, error) {
	var (
		els rod.Elements
		err error
	)
	if strings.Contains(selector, ":contains(") {
		var xpath string
		if xpath, err = cssxpath.Translate(selector); err != nil {
			return nil, err
		}
		els, err = page.ElementsX(xpath)
	} else {
		els, err = page.Elements(selector)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dom.Element, len(els))
	for i, el := range els {
		out[i] = Wrap(el, logger)
	}
	return out, nil
}
