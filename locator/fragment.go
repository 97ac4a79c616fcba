package locator

import (
	"strings"
	"unicode"
)

// Combinator joins two rendered CSS steps.
type Combinator int

const (
	Child      Combinator = iota // " > "
	Descendant                   // " "
)

func (c Combinator) String() string {
	if c == Descendant {
		return " "
	}
	return " > "
}

// Fragment is a rendered CSS selector kept as its steps and the combinators
// between them, so callers can count and relax hops without re-parsing.
// len(Combinators) is always len(Steps)-1 for a well-formed fragment.
type Fragment struct {
	Steps       []string
	Combinators []Combinator
}

// Append adds a step joined to the previous one by c. The combinator is
// ignored for the first step.
func (f *Fragment) Append(c Combinator, step string) {
	if len(f.Steps) > 0 {
		f.Combinators = append(f.Combinators, c)
	}
	f.Steps = append(f.Steps, step)
}

// Prepend adds a step in front, joined by c.
func (f *Fragment) Prepend(step string, c Combinator) {
	if len(f.Steps) > 0 {
		f.Combinators = append([]Combinator{c}, f.Combinators...)
	}
	f.Steps = append([]string{step}, f.Steps...)
}

// Hops is the number of combinators.
func (f Fragment) Hops() int { return len(f.Combinators) }

func (f Fragment) String() string {
	var b strings.Builder
	for i, s := range f.Steps {
		if i > 0 {
			b.WriteString(f.Combinators[i-1].String())
		}
		b.WriteString(s)
	}
	return b.String()
}

// Clone returns a deep copy.
func (f Fragment) Clone() Fragment {
	return Fragment{
		Steps:       append([]string(nil), f.Steps...),
		Combinators: append([]Combinator(nil), f.Combinators...),
	}
}

// CollapseHTMLBody rewrites a leading "html > body" to "body".
func (f Fragment) CollapseHTMLBody() Fragment {
	if len(f.Steps) >= 2 && f.Steps[0] == "html" && f.Steps[1] == "body" && f.Combinators[0] == Child {
		return Fragment{
			Steps:       append([]string(nil), f.Steps[1:]...),
			Combinators: append([]Combinator(nil), f.Combinators[1:]...),
		}
	}
	return f.Clone()
}

// Descendants returns a copy with every combinator turned into a descendant one.
func (f Fragment) Descendants() Fragment {
	out := f.Clone()
	for i := range out.Combinators {
		out.Combinators[i] = Descendant
	}
	return out
}

// DropSteps returns a copy without the inner steps equal to step. The first
// and last steps are always kept; a dropped step's neighbours are joined by
// a descendant combinator.
func (f Fragment) DropSteps(step string) Fragment {
	if len(f.Steps) < 3 {
		return f.Clone()
	}
	out := Fragment{Steps: []string{f.Steps[0]}}
	pending := f.Combinators[0]
	for i := 1; i < len(f.Steps); i++ {
		if i < len(f.Steps)-1 && f.Steps[i] == step {
			pending = Descendant
			continue
		}
		out.Steps = append(out.Steps, f.Steps[i])
		out.Combinators = append(out.Combinators, pending)
		if i < len(f.Combinators) {
			pending = f.Combinators[i]
		}
	}
	return out
}

// QuoteCSS renders s as a double-quoted CSS string.
func QuoteCSS(s string) string {
	return `"` + EscapeCSSString(s) + `"`
}

// EscapeCSSString escapes backslashes and double quotes for use inside a
// double-quoted CSS string.
func EscapeCSSString(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsIdent reports whether s can be written as a bare CSS identifier after
// "#" or "." without escaping.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	rs := []rune(s)
	i := 0
	if rs[0] == '-' {
		i = 1
		if len(rs) == 1 {
			return false
		}
	}
	if !identStart(rs[i]) {
		return false
	}
	for _, r := range rs[i+1:] {
		if !identStart(r) && r != '-' && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func identStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || (r > 0x7f && !unicode.IsSpace(r) && !unicode.IsPunct(r))
}
