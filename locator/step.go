package locator

// Nav is the navigation operator that precedes an XPath step.
type Nav int

const (
	NavChild      Nav = iota // "/"
	NavDescendant            // "//" and its long-hand axis spellings
)

// StepKind separates an id('x') lookup from an ordinary tag step.
type StepKind int

const (
	StepTag StepKind = iota
	StepIDLookup
)

// Wildcard is the tag of a "*" node test.
const Wildcard = "*"

// Op is the comparison a predicate performs.
type Op int

const (
	OpEquals Op = iota
	OpContains
	OpStartsWith
	OpExists
)

// TextTarget is the predicate target used for text(), "." and normalize-space().
const TextTarget = "text()"

// Predicate narrows a step. Target is an attribute name without "@", or
// TextTarget for text content.
type Predicate struct {
	Op     Op
	Target string
	Value  string
}

// IsText reports whether the predicate tests text content.
func (p Predicate) IsText() bool { return p.Target == TextTarget }

// Step is one parsed XPath location step. Steps are produced by the parser
// and not modified afterwards.
type Step struct {
	Kind       StepKind
	Nav        Nav
	Tag        string // lower-case tag name or Wildcard
	ID         string // only for StepIDLookup
	Predicates []Predicate
	Index      int  // 1-based positional predicate, 0 when absent
	Last       bool // [last()]
}
