package xpathcss

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/selkit/locator"
)

// Render turns parsed steps into a CSS fragment: ">" between direct-child
// steps, a space before any-depth steps, nothing before the first step.
func Render(steps []locator.Step) (locator.Fragment, error) {
	var frag locator.Fragment
	for _, st := range steps {
		s, err := renderStep(st)
		if err != nil {
			return locator.Fragment{}, err
		}
		c := locator.Child
		if st.Nav == locator.NavDescendant {
			c = locator.Descendant
		}
		frag.Append(c, s)
	}
	return frag, nil
}

func renderStep(st locator.Step) (string, error) {
	if st.Kind == locator.StepIDLookup {
		return IDSelector(st.ID), nil
	}

	var b strings.Builder
	wild := st.Tag == locator.Wildcard
	if !wild {
		b.WriteString(st.Tag)
	}
	for _, pred := range st.Predicates {
		s, err := renderPredicate(pred)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}

	// *[n] counts every element sibling, tag[n] only its own kind.
	switch {
	case st.Index > 0 && wild:
		b.WriteString(":nth-child(" + strconv.Itoa(st.Index) + ")")
	case st.Index > 0:
		b.WriteString(":nth-of-type(" + strconv.Itoa(st.Index) + ")")
	case st.Last && wild:
		b.WriteString(":last-child")
	case st.Last:
		b.WriteString(":last-of-type")
	}

	if b.Len() == 0 {
		return locator.Wildcard, nil
	}
	return b.String(), nil
}

func renderPredicate(p locator.Predicate) (string, error) {
	switch p.Op {
	case locator.OpEquals:
		switch {
		case p.IsText():
			return ":contains(" + locator.QuoteCSS(p.Value) + ")", nil
		case p.Target == "id":
			return IDSelector(p.Value), nil
		case p.Target == "class":
			return classSelector(p.Value), nil
		}
		return AttrSelector(p.Target, "=", p.Value), nil
	case locator.OpContains:
		if p.IsText() {
			return ":contains(" + locator.QuoteCSS(p.Value) + ")", nil
		}
		return AttrSelector(p.Target, "*=", p.Value), nil
	case locator.OpStartsWith:
		if p.IsText() {
			return "", &locator.UnsupportedXPathError{
				Fragment: fmt.Sprintf("starts-with(text(), '%s')", p.Value),
			}
		}
		return AttrSelector(p.Target, "^=", p.Value), nil
	case locator.OpExists:
		return "[" + p.Target + "]", nil
	}
	return "", &locator.UnsupportedXPathError{Fragment: p.Target}
}

// IDSelector renders "#v", or [id="v"] when v is not a bare identifier.
func IDSelector(v string) string {
	if locator.IsIdent(v) {
		return "#" + v
	}
	return AttrSelector("id", "=", v)
}

// classSelector renders ".a.b" for a space-separated class list of bare
// identifiers and falls back to an attribute match otherwise.
func classSelector(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return AttrSelector("class", "=", v)
	}
	for _, f := range fields {
		if !locator.IsIdent(f) {
			return AttrSelector("class", "=", v)
		}
	}
	return "." + strings.Join(fields, ".")
}

// AttrSelector renders [name<op>"value"].
func AttrSelector(name, op, value string) string {
	return "[" + name + op + locator.QuoteCSS(value) + "]"
}
