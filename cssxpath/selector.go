package cssxpath

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"

	"github.com/hazyhaar/selkit/locator"
)

// Combinator relates two compounds of a complex selector.
type Combinator byte

const (
	Descendant       Combinator = ' '
	Child            Combinator = '>'
	DirectAdjacent   Combinator = '+'
	IndirectAdjacent Combinator = '~'
)

// Selector is one complex selector: compounds joined by combinators.
// len(Combinators) == len(Compounds)-1.
type Selector struct {
	Compounds   []Compound
	Combinators []Combinator
}

// Compound is a type selector (empty for the universal one) plus the simple
// selectors that narrow it.
type Compound struct {
	Tag   string
	Conds []Cond
}

// CondKind tags the variant held by a Cond.
type CondKind int

const (
	CondID CondKind = iota
	CondClass
	CondAttr
	CondPseudo
	CondNth
	CondContains
	CondNot
)

// Cond is one simple selector inside a compound.
type Cond struct {
	Kind  CondKind
	Name  string // attribute, pseudo-class or nth function name
	Op    string // attribute operator; empty tests existence
	Value string
	A, B  int       // An+B series for CondNth
	Not   *Compound // argument of :not()
	Raw   string    // source text, for error fragments
}

var plainPseudos = map[string]bool{
	"first-child":   true,
	"last-child":    true,
	"only-child":    true,
	"first-of-type": true,
	"last-of-type":  true,
	"only-of-type":  true,
	"empty":         true,
	"root":          true,
	"checked":       true,
}

var nthFunctions = map[string]bool{
	"nth-child":        true,
	"nth-last-child":   true,
	"nth-of-type":      true,
	"nth-last-of-type": true,
}

var attrOps = map[css.TokenType]string{
	css.IncludeMatchToken:   "~=",
	css.DashMatchToken:      "|=",
	css.PrefixMatchToken:    "^=",
	css.SuffixMatchToken:    "$=",
	css.SubstringMatchToken: "*=",
}

// Parse reads a selector group. Anything outside the supported grammar
// fails with *locator.UnsupportedCSSError carrying the source text from the
// first token that could not be consumed.
func Parse(input string) ([]Selector, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, &locator.UnsupportedCSSError{Input: input, Fragment: input}
	}
	p := &parser{input: input, toks: toks}
	p.skipSpace()
	if p.eof() {
		return nil, &locator.UnsupportedCSSError{Input: input}
	}

	var group []Selector
	for {
		p.skipSpace()
		sel, err := p.selector()
		if err != nil {
			return nil, err
		}
		group = append(group, sel)
		p.skipSpace()
		if p.eof() {
			return group, nil
		}
		if p.peek().typ != css.CommaToken {
			return nil, p.fail()
		}
		p.pos++
	}
}

type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.eof() {
		return token{typ: css.ErrorToken}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

// skipSpace reports whether any whitespace was consumed.
func (p *parser) skipSpace() bool {
	start := p.pos
	for p.peek().typ == css.WhitespaceToken {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) fail() error { return p.failAt(p.pos) }

func (p *parser) failAt(i int) error {
	var b strings.Builder
	for ; i < len(p.toks); i++ {
		b.WriteString(p.toks[i].raw)
	}
	return &locator.UnsupportedCSSError{Input: p.input, Fragment: b.String()}
}

// raw returns the source text of tokens [from, p.pos).
func (p *parser) raw(from int) string {
	var b strings.Builder
	for i := from; i < p.pos && i < len(p.toks); i++ {
		b.WriteString(p.toks[i].raw)
	}
	return b.String()
}

func isDelim(t token, s string) bool { return t.typ == css.DelimToken && t.raw == s }

func startsCompound(t token) bool {
	switch t.typ {
	case css.IdentToken, css.HashToken, css.LeftBracketToken, css.ColonToken:
		return true
	}
	return isDelim(t, "*") || isDelim(t, ".")
}

func (p *parser) selector() (Selector, error) {
	var sel Selector
	c, err := p.compound()
	if err != nil {
		return sel, err
	}
	sel.Compounds = append(sel.Compounds, c)

	for {
		start := p.pos
		spaced := p.skipSpace()
		t := p.peek()
		var comb Combinator
		switch {
		case isDelim(t, ">"), isDelim(t, "+"), isDelim(t, "~"):
			comb = Combinator(t.raw[0])
			p.pos++
			p.skipSpace()
		case spaced && startsCompound(t):
			comb = Descendant
		default:
			p.pos = start
			return sel, nil
		}
		if !startsCompound(p.peek()) {
			return sel, p.failAt(start)
		}
		c, err := p.compound()
		if err != nil {
			return sel, err
		}
		sel.Combinators = append(sel.Combinators, comb)
		sel.Compounds = append(sel.Compounds, c)
	}
}

func (p *parser) compound() (Compound, error) {
	var c Compound
	start := p.pos
	switch t := p.peek(); {
	case t.typ == css.IdentToken:
		c.Tag = strings.ToLower(unescape(t.raw))
		if !isXMLName(c.Tag) {
			return c, p.failAt(start)
		}
		p.pos++
	case isDelim(t, "*"):
		p.pos++
	}
	// Namespace prefixes (ns|tag, *|tag) are not supported.
	if isDelim(p.peek(), "|") || p.peek().typ == css.ColumnToken {
		return c, p.failAt(start)
	}

	for {
		at := p.pos
		t := p.peek()
		switch {
		case t.typ == css.HashToken:
			p.pos++
			c.Conds = append(c.Conds, Cond{Kind: CondID, Value: unescape(t.raw[1:]), Raw: t.raw})
		case isDelim(t, "."):
			p.pos++
			n := p.next()
			if n.typ != css.IdentToken {
				return c, p.failAt(at)
			}
			c.Conds = append(c.Conds, Cond{Kind: CondClass, Value: unescape(n.raw), Raw: p.raw(at)})
		case t.typ == css.LeftBracketToken:
			cond, err := p.attribute()
			if err != nil {
				return c, err
			}
			c.Conds = append(c.Conds, cond)
		case t.typ == css.ColonToken:
			cond, err := p.pseudo()
			if err != nil {
				return c, err
			}
			c.Conds = append(c.Conds, cond)
		default:
			if p.pos == start {
				return c, p.fail()
			}
			return c, nil
		}
	}
}

// attribute reads "[name]" or "[name op value]".
func (p *parser) attribute() (Cond, error) {
	start := p.pos
	p.pos++ // "["
	p.skipSpace()
	n := p.peek()
	if n.typ != css.IdentToken {
		return Cond{}, p.failAt(start)
	}
	p.pos++
	cond := Cond{Kind: CondAttr, Name: strings.ToLower(unescape(n.raw))}
	if !isXMLName(cond.Name) {
		return Cond{}, p.failAt(start)
	}
	p.skipSpace()

	t := p.peek()
	switch {
	case t.typ == css.RightBracketToken:
		p.pos++
		cond.Raw = p.raw(start)
		return cond, nil
	case isDelim(t, "="):
		cond.Op = "="
	default:
		op, ok := attrOps[t.typ]
		if !ok {
			return Cond{}, p.failAt(start)
		}
		cond.Op = op
	}
	p.pos++
	p.skipSpace()

	v := p.peek()
	switch v.typ {
	case css.StringToken:
		cond.Value = unquote(v.raw)
	case css.IdentToken:
		cond.Value = unescape(v.raw)
	case css.NumberToken, css.DimensionToken, css.PercentageToken:
		cond.Value = v.raw
	default:
		return Cond{}, p.failAt(start)
	}
	p.pos++
	p.skipSpace()

	// Case-sensitivity flags ([a="b" i]) land here as an unexpected token.
	if p.peek().typ != css.RightBracketToken {
		return Cond{}, p.failAt(start)
	}
	p.pos++
	cond.Raw = p.raw(start)
	return cond, nil
}

// pseudo reads ":name" or ":name(args)".
func (p *parser) pseudo() (Cond, error) {
	start := p.pos
	p.pos++ // ":"
	t := p.peek()
	switch t.typ {
	case css.IdentToken:
		name := strings.ToLower(unescape(t.raw))
		if !plainPseudos[name] {
			return Cond{}, p.failAt(start)
		}
		p.pos++
		return Cond{Kind: CondPseudo, Name: name, Raw: p.raw(start)}, nil
	case css.FunctionToken:
		p.pos++
	default:
		// "::" pseudo-elements and anything else.
		return Cond{}, p.failAt(start)
	}

	name := strings.ToLower(unescape(strings.TrimSuffix(t.raw, "(")))
	switch {
	case nthFunctions[name]:
		var args strings.Builder
		for {
			a := p.next()
			if a.typ == css.RightParenthesisToken {
				break
			}
			if a.typ == css.ErrorToken {
				return Cond{}, p.failAt(start)
			}
			if a.typ != css.WhitespaceToken {
				args.WriteString(a.raw)
			}
		}
		a, b, ok := parseSeries(args.String())
		if !ok {
			return Cond{}, p.failAt(start)
		}
		return Cond{Kind: CondNth, Name: name, A: a, B: b, Raw: p.raw(start)}, nil

	case name == "contains":
		p.skipSpace()
		v := p.next()
		cond := Cond{Kind: CondContains, Name: name}
		switch v.typ {
		case css.StringToken:
			cond.Value = unquote(v.raw)
		case css.IdentToken:
			cond.Value = unescape(v.raw)
		default:
			return Cond{}, p.failAt(start)
		}
		p.skipSpace()
		if p.next().typ != css.RightParenthesisToken {
			return Cond{}, p.failAt(start)
		}
		cond.Raw = p.raw(start)
		return cond, nil

	case name == "not":
		p.skipSpace()
		inner, err := p.compound()
		if err != nil {
			return Cond{}, err
		}
		p.skipSpace()
		if p.next().typ != css.RightParenthesisToken {
			return Cond{}, p.failAt(start)
		}
		return Cond{Kind: CondNot, Name: name, Not: &inner, Raw: p.raw(start)}, nil
	}
	return Cond{}, p.failAt(start)
}

// parseSeries reads an An+B argument: "odd", "even", "3", "n", "-n+2", "2n-1".
func parseSeries(s string) (a, b int, ok bool) {
	s = strings.ToLower(s)
	switch s {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	case "":
		return 0, 0, false
	}
	i := strings.IndexByte(s, 'n')
	if i < 0 {
		n, err := strconv.Atoi(s)
		return 0, n, err == nil
	}
	switch coef := s[:i]; coef {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		n, err := strconv.Atoi(coef)
		if err != nil {
			return 0, 0, false
		}
		a = n
	}
	rest := s[i+1:]
	if rest == "" {
		return a, 0, true
	}
	if rest[0] != '+' && rest[0] != '-' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, false
	}
	return a, n, true
}
