package cssxpath

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/selkit/locator"
)

// walker turns a parsed selector group into XPath through an Emitter.
type walker struct {
	e     Emitter
	input string
}

func (w walker) group(sels []Selector) (string, error) {
	out := make([]string, 0, len(sels))
	for _, s := range sels {
		x, err := w.selector(s)
		if err != nil {
			return "", err
		}
		out = append(out, w.e.Prefix()+x.String())
	}
	return strings.Join(out, " | "), nil
}

func (w walker) selector(s Selector) (Expr, error) {
	x, err := w.compound(s.Compounds[0])
	if err != nil {
		return Expr{}, err
	}
	for i, comb := range s.Combinators {
		right, err := w.compound(s.Compounds[i+1])
		if err != nil {
			return Expr{}, err
		}
		switch comb {
		case Child:
			x = w.e.Child(x, right)
		case DirectAdjacent:
			x = w.e.DirectAdjacent(x, right)
		case IndirectAdjacent:
			x = w.e.IndirectAdjacent(x, right)
		default:
			x = w.e.Descendant(x, right)
		}
	}
	return x, nil
}

func (w walker) compound(c Compound) (Expr, error) {
	x := Expr{Element: "*"}
	if c.Tag != "" {
		x.Element = c.Tag
	}
	for _, cond := range c.Conds {
		if err := w.cond(&x, cond); err != nil {
			return Expr{}, err
		}
	}
	return x, nil
}

func (w walker) cond(x *Expr, c Cond) error {
	switch c.Kind {
	case CondID:
		w.e.ID(x, c.Value)
	case CondClass:
		w.e.Class(x, c.Value)
	case CondAttr:
		w.attr(x, c)
	case CondPseudo:
		return w.pseudo(x, c)
	case CondNth:
		return w.nth(x, c)
	case CondContains:
		x.AddCondition("contains(., " + w.e.Literal(c.Value) + ")")
	case CondNot:
		sub, err := w.compound(*c.Not)
		if err != nil {
			return err
		}
		sub.AddNameTest(w.e.Literal)
		if sub.Condition == "" {
			x.AddCondition("0")
		} else {
			x.AddCondition("not(" + sub.Condition + ")")
		}
	}
	return nil
}

func (w walker) attr(x *Expr, c Cond) {
	name := "@" + c.Name
	switch c.Op {
	case "":
		w.e.AttrExists(x, name)
	case "=":
		w.e.AttrEquals(x, name, c.Value)
	case "~=":
		w.e.AttrIncludes(x, name, c.Value)
	case "|=":
		w.e.AttrDashMatch(x, name, c.Value)
	case "^=":
		w.e.AttrPrefix(x, name, c.Value)
	case "$=":
		w.e.AttrSuffix(x, name, c.Value)
	case "*=":
		w.e.AttrSubstring(x, name, c.Value)
	}
}

func (w walker) unsupported(c Cond) error {
	return &locator.UnsupportedCSSError{Input: w.input, Fragment: c.Raw}
}

func (w walker) pseudo(x *Expr, c Cond) error {
	switch c.Name {
	case "first-child":
		x.AddCondition("count(preceding-sibling::*) = 0")
	case "last-child":
		x.AddCondition("count(following-sibling::*) = 0")
	case "only-child":
		x.AddCondition("count(parent::*/child::*) = 1")
	case "first-of-type", "last-of-type", "only-of-type":
		// The of-type family needs a concrete element name.
		if x.Element == "*" {
			return w.unsupported(c)
		}
		switch c.Name {
		case "first-of-type":
			x.AddCondition("count(preceding-sibling::" + x.Element + ") = 0")
		case "last-of-type":
			x.AddCondition("count(following-sibling::" + x.Element + ") = 0")
		default:
			x.AddCondition("count(parent::*/child::" + x.Element + ") = 1")
		}
	case "empty":
		x.AddCondition("not(*) and not(string-length())")
	case "root":
		x.AddCondition("not(parent::*)")
	case "checked":
		l := w.e.Literal
		x.AddCondition(fmt.Sprintf(
			"(@selected and name(.) = %s) or (@checked and (name(.) = %s or name(.) = %s) and (@type = %s or @type = %s))",
			l("option"), l("input"), l("command"), l("checkbox"), l("radio")))
	default:
		return w.unsupported(c)
	}
	return nil
}

// nth renders the An+B family by counting siblings: the element matches
// when count = a*n + b - 1 for some n >= 0.
func (w walker) nth(x *Expr, c Cond) error {
	test := "*"
	if strings.HasSuffix(c.Name, "-of-type") {
		if x.Element == "*" {
			return w.unsupported(c)
		}
		test = x.Element
	}
	axis := "preceding-sibling"
	if strings.Contains(c.Name, "-last-") {
		axis = "following-sibling"
	}
	count := fmt.Sprintf("count(%s::%s)", axis, test)

	a, bm1 := c.A, c.B-1
	if a == 0 {
		x.AddCondition(fmt.Sprintf("%s = %d", count, bm1))
		return nil
	}
	if a < 0 && bm1 < 0 {
		x.AddCondition("0")
		return nil
	}

	var exprs []string
	if a > 0 {
		if bm1 > 0 {
			exprs = append(exprs, fmt.Sprintf("%s >= %d", count, bm1))
		}
	} else {
		exprs = append(exprs, fmt.Sprintf("%s <= %d", count, bm1))
	}
	if m := abs(a); m != 1 {
		left := count
		if r := ((-bm1)%m + m) % m; r != 0 {
			left = fmt.Sprintf("(%s +%d)", count, r)
		}
		exprs = append(exprs, fmt.Sprintf("%s mod %d = 0", left, a))
	}

	switch len(exprs) {
	case 0:
	case 1:
		x.AddCondition(exprs[0])
	default:
		x.AddCondition("(" + strings.Join(exprs, ") and (") + ")")
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
