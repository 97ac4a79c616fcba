package cssxpath

import (
	"fmt"
	"strings"
)

// Emitter renders the simple selectors and combinators of a parsed CSS
// selector as XPath. The walker owns traversal and the structural
// pseudo-classes; an Emitter decides how ids, classes, attribute tests and
// combinators read. Attribute names arrive already prefixed with "@".
type Emitter interface {
	Prefix() string
	Literal(s string) string

	ID(x *Expr, id string)
	Class(x *Expr, name string)

	AttrExists(x *Expr, name string)
	AttrEquals(x *Expr, name, value string)
	AttrIncludes(x *Expr, name, value string)
	AttrDashMatch(x *Expr, name, value string)
	AttrPrefix(x *Expr, name, value string)
	AttrSuffix(x *Expr, name, value string)
	AttrSubstring(x *Expr, name, value string)

	Descendant(left, right Expr) Expr
	Child(left, right Expr) Expr
	DirectAdjacent(left, right Expr) Expr
	IndirectAdjacent(left, right Expr) Expr
}

// Generic is the walker's native output: document-relative
// "descendant-or-self::" paths, whitespace-normalized class tests and
// single-quoted literals unless DoubleQuote is set.
type Generic struct {
	DoubleQuote bool
}

var _ Emitter = Generic{}

func (Generic) Prefix() string { return "descendant-or-self::" }

func (g Generic) Literal(s string) string { return xpathLiteral(s, g.DoubleQuote) }

func (g Generic) ID(x *Expr, id string) { g.AttrEquals(x, "@id", id) }

func (g Generic) Class(x *Expr, name string) { g.AttrIncludes(x, "@class", name) }

func (Generic) AttrExists(x *Expr, name string) { x.AddCondition(name) }

func (g Generic) AttrEquals(x *Expr, name, value string) {
	x.AddCondition(name + " = " + g.Literal(value))
}

func (g Generic) AttrIncludes(x *Expr, name, value string) {
	if !isToken(value) {
		x.AddCondition("0")
		return
	}
	x.AddCondition(fmt.Sprintf("%s and contains(concat(' ', normalize-space(%s), ' '), %s)",
		name, name, g.Literal(" "+value+" ")))
}

func (g Generic) AttrDashMatch(x *Expr, name, value string) {
	x.AddCondition(fmt.Sprintf("%s and (%s = %s or starts-with(%s, %s))",
		name, name, g.Literal(value), name, g.Literal(value+"-")))
}

func (g Generic) AttrPrefix(x *Expr, name, value string) {
	if value == "" {
		x.AddCondition("0")
		return
	}
	x.AddCondition(fmt.Sprintf("%s and starts-with(%s, %s)", name, name, g.Literal(value)))
}

func (g Generic) AttrSuffix(x *Expr, name, value string) {
	if value == "" {
		x.AddCondition("0")
		return
	}
	x.AddCondition(fmt.Sprintf("%s and substring(%s, string-length(%s)-%d) = %s",
		name, name, name, len([]rune(value))-1, g.Literal(value)))
}

func (g Generic) AttrSubstring(x *Expr, name, value string) {
	if value == "" {
		x.AddCondition("0")
		return
	}
	x.AddCondition(fmt.Sprintf("%s and contains(%s, %s)", name, name, g.Literal(value)))
}

func (Generic) Descendant(left, right Expr) Expr {
	return left.Join("/descendant-or-self::*/", right)
}

func (Generic) Child(left, right Expr) Expr { return left.Join("/", right) }

// DirectAdjacent steps to the first following sibling and then tests it:
// following-sibling::*[1][self::tag and ...].
func (Generic) DirectAdjacent(left, right Expr) Expr {
	x := left.Join("/following-sibling::", Expr{Element: "*[1]"})
	if right.Element != "*" {
		x.AddCondition("self::" + right.Element)
	}
	if right.Condition != "" {
		x.AddCondition(right.Condition)
	}
	return x
}

func (Generic) IndirectAdjacent(left, right Expr) Expr {
	return left.Join("/following-sibling::", right)
}

// Compact is the short locator form used by browser drivers: "//" paths,
// @name="value" equality and plain contains() for class, token and
// substring matches. Empty token or substring values never match and
// render as the always-false predicate 0. Build it with NewCompact.
type Compact struct {
	Generic
}

var _ Emitter = Compact{}

// NewCompact returns a Compact emitter with double-quoted literals.
func NewCompact() Compact { return Compact{Generic{DoubleQuote: true}} }

func (Compact) Prefix() string { return "//" }

func (c Compact) ID(x *Expr, id string) { c.AttrEquals(x, "@id", id) }

func (c Compact) Class(x *Expr, name string) { c.AttrIncludes(x, "@class", name) }

func (c Compact) AttrEquals(x *Expr, name, value string) {
	x.AddCondition(name + "=" + c.Literal(value))
}

func (c Compact) AttrIncludes(x *Expr, name, value string) {
	if !isToken(value) {
		x.AddCondition("0")
		return
	}
	x.AddCondition("contains(" + name + ", " + c.Literal(value) + ")")
}

func (c Compact) AttrSubstring(x *Expr, name, value string) {
	if value == "" {
		x.AddCondition("0")
		return
	}
	x.AddCondition("contains(" + name + ", " + c.Literal(value) + ")")
}

func (Compact) Descendant(left, right Expr) Expr { return left.Join("//", right) }

// isToken reports whether v is a non-empty run without whitespace.
func isToken(v string) bool {
	return v != "" && !strings.ContainsAny(v, " \t\r\n\f")
}
