package cssxpath

import "strings"

// Expr is an XPath location step under construction: Path holds everything
// left of the current step, Element its node test and Condition its
// predicate body.
type Expr struct {
	Path      string
	Element   string
	Condition string
}

func (x Expr) String() string {
	s := x.Path + x.Element
	if x.Condition != "" {
		s += "[" + x.Condition + "]"
	}
	return s
}

// AddCondition ands cond onto the predicate.
func (x *Expr) AddCondition(cond string) {
	if x.Condition == "" {
		x.Condition = cond
		return
	}
	x.Condition = "(" + x.Condition + ") and (" + cond + ")"
}

// AddNameTest moves the element name into the predicate so the step can
// run on an axis that yields arbitrary elements.
func (x *Expr) AddNameTest(literal func(string) string) {
	if x.Element == "*" {
		return
	}
	x.AddCondition("name() = " + literal(x.Element))
	x.Element = "*"
}

// Join appends other to x across the combiner text.
func (x Expr) Join(combiner string, other Expr) Expr {
	return Expr{
		Path:      x.String() + combiner + other.Path,
		Element:   other.Element,
		Condition: other.Condition,
	}
}

// xpathLiteral quotes s, preferring double quotes when dq is set and
// falling back to concat() when s holds both quote kinds.
func xpathLiteral(s string, dq bool) string {
	q1, q2 := "'", `"`
	if dq {
		q1, q2 = q2, q1
	}
	if !strings.Contains(s, q1) {
		return q1 + s + q1
	}
	if !strings.Contains(s, q2) {
		return q2 + s + q2
	}
	var parts []string
	for i, part := range strings.Split(s, q1) {
		if i > 0 {
			parts = append(parts, q2+q1+q2)
		}
		if part != "" {
			parts = append(parts, q1+part+q1)
		}
	}
	return "concat(" + strings.Join(parts, ",") + ")"
}
