package xpathcss

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/selkit/locator"
)

// Parse turns an XPath expression from the supported subset into its
// location steps. The idiom table, bracket protection and grouping removal
// are applied first, so the steps describe what Translate will render.
func Parse(xpath string) ([]locator.Step, error) {
	src, err := prepare(xpath)
	if err != nil {
		return nil, err
	}
	p := &parser{input: xpath, src: src}
	return p.parse()
}

// prepare runs the textual pre-passes.
func prepare(xpath string) (string, error) {
	s := strings.TrimSpace(xpath)
	if s == "" {
		return "", &locator.UnsupportedXPathError{Input: xpath}
	}
	s = protectBrackets(s)
	s = applyIdioms(s)
	return unwrapGroup(xpath, s)
}

// unwrapGroup removes one outer "( ... )" around the whole expression and
// reattaches a trailing positional predicate to the last step:
// (//button[@type='submit'])[1] becomes //button[@type='submit'][1].
func unwrapGroup(input, s string) (string, error) {
	if !strings.HasPrefix(s, "(") {
		return s, nil
	}
	closing := matchParen(s)
	if closing < 0 {
		return "", &locator.UnsupportedXPathError{Input: input, Fragment: restoreBrackets(s)}
	}
	inner := strings.TrimSpace(s[1:closing])
	rest := strings.TrimSpace(s[closing+1:])
	if rest != "" && !isTrailingPosition(rest) {
		return "", &locator.UnsupportedXPathError{Input: input, Fragment: restoreBrackets(rest)}
	}
	return inner + rest, nil
}

// matchParen returns the index of the ")" matching s[0], skipping quoted text.
func matchParen(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isTrailingPosition(s string) bool {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return false
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "last()" {
		return true
	}
	n, err := strconv.Atoi(body)
	return err == nil && n > 0
}

// parser is a small recursive-descent parser over the prepared expression.
//
//	path      = [ "id(" literal ")" ] { step }
//	step      = nav nodetest { "[" predicate "]" }
//	nav       = "/" | "//" | "/" axis "::" ...
//	nodetest  = name | "*"
//	predicate = integer | "last()" | cond
//	cond      = "contains(" target "," literal ")"
//	          | "starts-with(" target "," literal ")"
//	          | target [ "=" literal ]
//	target    = "@" name | "text()" | "." | "normalize-space(...)" | "string(...)"
type parser struct {
	input string
	src   string
	pos   int
}

func (p *parser) fail() error {
	return &locator.UnsupportedXPathError{
		Input:    p.input,
		Fragment: restoreBrackets(p.src[p.pos:]),
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) peek(c byte) bool { return !p.eof() && p.src[p.pos] == c }

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

// accept consumes lit if the input continues with it.
func (p *parser) accept(lit string) bool {
	if strings.HasPrefix(p.rest(), lit) {
		p.pos += len(lit)
		return true
	}
	return false
}

func (p *parser) parse() ([]locator.Step, error) {
	var steps []locator.Step

	// Relative prefixes: "./x" and ".//x" anchor at the context node, which
	// CSS cannot express; both read as the path that follows.
	if strings.HasPrefix(p.src, "./") {
		p.pos++
	}

	if p.accept("id(") {
		p.skipSpace()
		v, ok := p.literal()
		if !ok {
			return nil, p.fail()
		}
		p.skipSpace()
		if !p.accept(")") {
			return nil, p.fail()
		}
		steps = append(steps, locator.Step{Kind: locator.StepIDLookup, ID: v})
	}

	for !p.eof() {
		st, err := p.step()
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	if len(steps) == 0 {
		return nil, p.fail()
	}
	return steps, nil
}

func (p *parser) step() (locator.Step, error) {
	var st locator.Step
	nav, ok := p.nav()
	if !ok {
		return st, p.fail()
	}
	st.Nav = nav

	tag, ok := p.nodeTest()
	if !ok {
		return st, p.fail()
	}
	st.Tag = tag

	for p.peek('[') {
		if err := p.predicate(&st); err != nil {
			return st, err
		}
	}
	return st, nil
}

// nav reads "/" or "//" plus any axis spelling that means the same thing.
func (p *parser) nav() (locator.Nav, bool) {
	slashes := 0
	for p.peek('/') {
		p.pos++
		slashes++
	}
	if slashes == 0 {
		return 0, false
	}
	nav := locator.NavChild
	if slashes > 1 {
		nav = locator.NavDescendant
	}
	for {
		switch {
		case p.accept("descendant-or-self::node()/"), p.accept("descendant-or-self::*/"):
			nav = locator.NavDescendant
			for p.peek('/') {
				p.pos++
			}
			continue
		case p.accept("descendant::"):
			nav = locator.NavDescendant
		case p.accept("child::"):
		}
		return nav, true
	}
}

func (p *parser) nodeTest() (string, bool) {
	if p.accept("*") {
		return locator.Wildcard, true
	}
	name := p.name()
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// name reads an XML-ish name: a letter or "_" then letters, digits, "-", "_", ".".
func (p *parser) name() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		isStart := c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		if p.pos == start && !isStart {
			break
		}
		if !isStart && c != '-' && c != '.' && !(c >= '0' && c <= '9') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// attrName is name plus ":" for namespaced attributes such as xlink:href.
func (p *parser) attrName() string {
	n := p.name()
	if n != "" && p.peek(':') && !strings.HasPrefix(p.rest(), "::") {
		p.pos++
		if more := p.name(); more != "" {
			return n + ":" + more
		}
		p.pos--
	}
	return n
}

func (p *parser) predicate(st *locator.Step) error {
	p.pos++ // "["
	p.skipSpace()

	// A positional predicate must be the last one: [@a='x'][2] keeps the
	// nth-of-type reading, but [2][@a='x'] has no CSS equivalent.
	if st.Index > 0 || st.Last {
		return p.fail()
	}

	switch {
	case p.accept("last()"):
		st.Last = true
	case !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9':
		start := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil || n == 0 {
			p.pos = start
			return p.fail()
		}
		st.Index = n
	default:
		pred, err := p.cond()
		if err != nil {
			return err
		}
		st.Predicates = append(st.Predicates, pred)
	}

	p.skipSpace()
	if !p.accept("]") {
		return p.fail()
	}
	return nil
}

func (p *parser) cond() (locator.Predicate, error) {
	var pred locator.Predicate
	start := p.pos

	for _, fn := range []struct {
		name string
		op   locator.Op
	}{{"contains(", locator.OpContains}, {"starts-with(", locator.OpStartsWith}} {
		if !p.accept(fn.name) {
			continue
		}
		p.skipSpace()
		target, ok := p.target()
		if !ok {
			return pred, p.fail()
		}
		p.skipSpace()
		if !p.accept(",") {
			return pred, p.fail()
		}
		p.skipSpace()
		v, ok := p.literal()
		if !ok {
			return pred, p.fail()
		}
		p.skipSpace()
		if !p.accept(")") {
			return pred, p.fail()
		}
		return locator.Predicate{Op: fn.op, Target: target, Value: v}, nil
	}

	target, ok := p.target()
	if !ok {
		p.pos = start
		return pred, p.fail()
	}
	p.skipSpace()
	if p.accept("=") {
		p.skipSpace()
		v, ok := p.literal()
		if !ok {
			return pred, p.fail()
		}
		return locator.Predicate{Op: locator.OpEquals, Target: target, Value: v}, nil
	}
	if target == locator.TextTarget {
		p.pos = start
		return pred, p.fail()
	}
	return locator.Predicate{Op: locator.OpExists, Target: target}, nil
}

// textTargets all read the element's text content.
var textTargets = []string{
	"normalize-space(text())",
	"normalize-space(.)",
	"normalize-space()",
	"string(.)",
	"string()",
	"text()",
}

func (p *parser) target() (string, bool) {
	if p.accept("@") {
		n := p.attrName()
		if n == "" {
			return "", false
		}
		return strings.ToLower(n), true
	}
	for _, t := range textTargets {
		if p.accept(t) {
			return locator.TextTarget, true
		}
	}
	// A lone "." but not the start of ".." or a number.
	if p.peek('.') && !strings.HasPrefix(p.rest(), "..") {
		p.pos++
		return locator.TextTarget, true
	}
	return "", false
}

// literal reads a quoted string and returns its value with protected
// brackets restored.
func (p *parser) literal() (string, bool) {
	if p.eof() {
		return "", false
	}
	q := p.src[p.pos]
	if q != '\'' && q != '"' {
		return "", false
	}
	end := strings.IndexByte(p.src[p.pos+1:], q)
	if end < 0 {
		return "", false
	}
	v := p.src[p.pos+1 : p.pos+1+end]
	p.pos += end + 2
	return restoreBrackets(v), true
}
