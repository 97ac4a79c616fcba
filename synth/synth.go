// Package synth builds a CSS selector that re-locates a given element.
//
// Candidates come from an id path, paths anchored on stable attributes, a
// single distinctive class, a unique tag and the element's text. Each is
// checked against the live document and only a selector that resolves to
// exactly the element is returned. When nothing verifies, a structural
// path with an explicit :nth-of-type at every level is used.
package synth

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/selkit/dom"
	"github.com/hazyhaar/selkit/locator"
	"github.com/hazyhaar/selkit/xpathcss"
)

// Strategy names the rule that produced a selector.
type Strategy string

const (
	StrategyID         Strategy = "id"
	StrategyAttribute  Strategy = "attribute"
	StrategyClass      Strategy = "class"
	StrategyTag        Strategy = "tag"
	StrategyText       Strategy = "text"
	StrategyGenerated  Strategy = "generated-id"
	StrategyRanked     Strategy = "ranked"
	StrategyRelaxed    Strategy = "relaxed"
	StrategyStructural Strategy = "structural"
)

// Result is a synthesized selector and how it was found.
type Result struct {
	Selector  string   `json:"selector"`
	Strategy  Strategy `json:"strategy"`
	Attribute string   `json:"attribute,omitempty"`
}

// Synthesizer holds a compiled Policy. It is safe for concurrent use.
type Synthesizer struct {
	pol    *compiled
	logger *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Synthesizer) { s.logger = l } }

// New compiles p.
func New(p Policy, opts ...Option) (*Synthesizer, error) {
	p.defaults()
	c, err := p.compile()
	if err != nil {
		return nil, err
	}
	s := &Synthesizer{pol: c}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Policy returns the policy in use.
func (s *Synthesizer) Policy() Policy { return s.pol.Policy }

var defaultSynth, _ = New(DefaultPolicy())

// Synthesize runs the default policy.
func Synthesize(el dom.Element) string { return defaultSynth.Synthesize(el) }

// Synthesize returns a selector that resolves to exactly el.
func (s *Synthesizer) Synthesize(el dom.Element) string {
	return s.SynthesizeResult(el).Selector
}

// candidate is a multi-hop path awaiting ranking. An anchored candidate
// starts at an id or attribute; the others are tag paths from the root.
type candidate struct {
	frag      locator.Fragment
	priority  int
	attribute string
	anchored  bool
}

// SynthesizeResult is Synthesize with the winning strategy attached. It
// never panics: a failing adapter yields the structural path, or an empty
// selector when even that could not be read.
func (s *Synthesizer) SynthesizeResult(el dom.Element) (res Result) {
	if el == nil {
		return Result{Strategy: StrategyStructural}
	}
	fallback := Result{Strategy: StrategyStructural}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("synth: recovered", "panic", r)
			res = fallback
		}
		s.logger.Debug("synth: selected", "selector", res.Selector, "strategy", res.Strategy)
	}()

	if s.pol.PromoteToButton {
		el = promoteToButton(el)
	}
	fallback.Selector = structuralPath(el).CollapseHTMLBody().String()

	var cands []candidate
	var deferred *Result

	idFrag, anchored := s.idPath(el)
	switch {
	case anchored && idFrag.Hops() == 0:
		sel := idFrag.String()
		if dom.ResolvesTo(el, sel) {
			id, _ := el.Attribute("id")
			if !s.pol.looksGenerated(id) {
				return Result{Selector: sel, Strategy: StrategyID}
			}
			deferred = &Result{Selector: sel, Strategy: StrategyGenerated}
		} else if f, ok := s.duplicateIDPath(el, sel); ok {
			cands = append(cands, candidate{frag: f, anchored: true})
		}
	default:
		cands = append(cands, candidate{frag: idFrag, anchored: anchored})
	}

	for i, attr := range s.pol.StableAttributes {
		var (
			frag     locator.Fragment
			anchored bool
		)
		strategy := StrategyAttribute
		if attr == "class" {
			frag, anchored = s.classPath(el)
			strategy = StrategyClass
		} else {
			frag, anchored = attrPath(el, attr)
		}
		if anchored && frag.Hops() == 0 {
			sel := frag.String()
			if s.pol.noDigit[attr] && hasDigit(sel) {
				continue
			}
			if dom.ResolvesTo(el, sel) {
				return Result{Selector: sel, Strategy: strategy, Attribute: attr}
			}
		}
		cands = append(cands, candidate{frag: frag, priority: i + 1, attribute: attr, anchored: anchored})
	}

	tag := el.TagName()
	if s.pol.uniqueTags[tag] && dom.ResolvesTo(el, tag) {
		return Result{Selector: tag, Strategy: StrategyTag}
	}

	if sel, ok := s.textSelector(el, tag); ok {
		return Result{Selector: sel, Strategy: StrategyText}
	}

	var tight, loose []candidate
	for _, c := range cands {
		if c.anchored {
			tight = append(tight, c)
		} else {
			loose = append(loose, c)
		}
	}
	if r, ok := s.rank(el, tight); ok {
		return r
	}
	if deferred != nil {
		return *deferred
	}
	if r, ok := s.rank(el, loose); ok {
		return r
	}

	return fallback
}

// duplicateIDPath qualifies sel, the element's own id step shared with
// other elements, by its position and the id path of its parent.
func (s *Synthesizer) duplicateIDPath(el dom.Element, sel string) (locator.Fragment, bool) {
	p := el.Parent()
	if p == nil {
		return locator.Fragment{}, false
	}
	f, _ := s.idPath(p)
	if nth := dom.NthOfType(el); nth != 1 {
		sel += fmt.Sprintf(":nth-of-type(%d)", nth)
	}
	f.Append(locator.Child, sel)
	return f, true
}

// rank picks the verified candidate with the fewest hops, ties going to
// the higher-priority strategy, then tries looser rewrites of it.
func (s *Synthesizer) rank(el dom.Element, cands []candidate) (Result, bool) {
	sort.SliceStable(cands, func(i, j int) bool {
		if a, b := cands[i].frag.Hops(), cands[j].frag.Hops(); a != b {
			return a < b
		}
		return cands[i].priority < cands[j].priority
	})

	seen := make(map[string]bool, len(cands))
	for _, c := range cands {
		best := c.frag.CollapseHTMLBody()
		sel := best.String()
		if seen[sel] {
			continue
		}
		seen[sel] = true
		if !dom.ResolvesTo(el, sel) {
			continue
		}
		res := Result{Selector: sel, Strategy: StrategyRanked, Attribute: c.attribute}
		for _, r := range relaxations(best) {
			if rs := r.String(); len(rs) < len(res.Selector) && dom.ResolvesTo(el, rs) {
				res.Selector = rs
				res.Strategy = StrategyRelaxed
			}
		}
		return res, true
	}
	return Result{}, false
}

// relaxations lists looser forms of f: all-descendant without bare div
// steps, all-descendant, and without bare div steps.
func relaxations(f locator.Fragment) []locator.Fragment {
	return []locator.Fragment{
		f.Descendants().DropSteps("div"),
		f.Descendants(),
		f.DropSteps("div"),
	}
}

// walk builds the child-combinator path from the root down to el. At each
// level anchor may end the walk with its own step; otherwise the level is
// its tag plus :nth-of-type(n) when n > 1. anchored reports whether the
// path starts at an anchor rather than at the root.
func walk(el dom.Element, anchor func(dom.Element) (string, bool)) (f locator.Fragment, anchored bool) {
	for n := el; n != nil; n = n.Parent() {
		if step, ok := anchor(n); ok {
			f.Prepend(step, locator.Child)
			return f, true
		}
		step := n.TagName()
		if nth := dom.NthOfType(n); nth != 1 {
			step += fmt.Sprintf(":nth-of-type(%d)", nth)
		}
		f.Prepend(step, locator.Child)
	}
	return f, false
}

// idPath anchors on the nearest ancestor-or-self with a safe id. The
// element's own id, when present but unsafe, anchors in attribute form.
func (s *Synthesizer) idPath(el dom.Element) (locator.Fragment, bool) {
	return walk(el, func(n dom.Element) (string, bool) {
		id, ok := n.Attribute("id")
		if !ok || id == "" {
			return "", false
		}
		if s.safeID(id) {
			return n.TagName() + "#" + id, true
		}
		if n.Same(el) && !strings.Contains(id, "\n") {
			return n.TagName() + xpathcss.AttrSelector("id", "=", id), true
		}
		return "", false
	})
}

func (s *Synthesizer) safeID(id string) bool {
	return locator.IsIdent(id) && !strings.ContainsAny(id, s.pol.UnsafeIDChars)
}

// attrPath anchors on the nearest ancestor-or-self carrying attr with a
// non-empty single-line value.
func attrPath(el dom.Element, attr string) (locator.Fragment, bool) {
	return walk(el, func(n dom.Element) (string, bool) {
		v, ok := n.Attribute(attr)
		if !ok || v == "" || strings.Contains(v, "\n") {
			return "", false
		}
		return n.TagName() + xpathcss.AttrSelector(attr, "=", v), true
	})
}

// classPath anchors on the nearest ancestor-or-self whose single class is
// unique for its tag on the page.
func (s *Synthesizer) classPath(el dom.Element) (locator.Fragment, bool) {
	return walk(el, func(n dom.Element) (string, bool) {
		class, ok := n.Attribute("class")
		if !ok || !locator.IsIdent(class) {
			return "", false
		}
		if s.pol.ClassRequiresHyphen && !strings.Contains(class, "-") {
			return "", false
		}
		step := n.TagName() + "." + class
		found, err := n.Query(step)
		if err != nil || len(found) != 1 {
			return "", false
		}
		return step, true
	})
}

// structuralPath spells out every level below body with :nth-of-type, so
// it matches exactly one element by construction.
func structuralPath(el dom.Element) locator.Fragment {
	var f locator.Fragment
	for n := el; n != nil; n = n.Parent() {
		step := n.TagName()
		if p := n.Parent(); p != nil && step != "body" && step != "head" {
			step += fmt.Sprintf(":nth-of-type(%d)", dom.NthOfType(n))
		}
		f.Prepend(step, locator.Child)
	}
	return f
}

// textSelector returns tag:contains("text") when exactly one element of
// the tag contains the element's trimmed text.
func (s *Synthesizer) textSelector(el dom.Element, tag string) (string, bool) {
	if !s.pol.textTags[tag] {
		return "", false
	}
	text := strings.TrimSpace(el.TextContent())
	n := utf8.RuneCountInString(text)
	if n < s.pol.TextMin || n > s.pol.TextMax || strings.Contains(text, "\n") {
		return "", false
	}
	all, err := el.Query(tag)
	if err != nil {
		return "", false
	}
	count := 0
	for _, e := range all {
		if strings.Contains(e.TextContent(), text) {
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	sel := tag + ":contains(" + locator.QuoteCSS(text) + ")"
	if !dom.ResolvesTo(el, sel) {
		return "", false
	}
	return sel, true
}

// promoteToButton replaces a span inside a button (as child or
// grandchild) with the button.
func promoteToButton(el dom.Element) dom.Element {
	if el.TagName() != "span" {
		return el
	}
	p := el.Parent()
	if p == nil {
		return el
	}
	if p.TagName() == "button" {
		return p
	}
	if gp := p.Parent(); gp != nil && gp.TagName() == "button" {
		return gp
	}
	return el
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
