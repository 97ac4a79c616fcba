package synth

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Policy is the hand-tuned data the synthesizer ranks candidates with.
// Every list is ordered by preference.
type Policy struct {
	// StableAttributes are tried in order after the id path. "class" selects
	// the single-class strategy.
	StableAttributes []string `yaml:"stable_attributes"`

	// GeneratedIDPattern marks ids that look machine-made. A zero-hop path
	// on such an id is used only when nothing better verifies.
	GeneratedIDPattern string `yaml:"generated_id_pattern"`

	// UnsafeIDChars may not appear in an id used as "#id". Ids that are not
	// bare CSS identifiers are always unsafe.
	UnsafeIDChars string `yaml:"unsafe_id_chars"`

	// NoDigitAttributes are skipped when their zero-hop selector contains
	// a digit.
	NoDigitAttributes []string `yaml:"no_digit_attributes"`

	// UniqueTags may be returned bare when the page has exactly one.
	UniqueTags []string `yaml:"unique_tags"`

	// TextTags may be located by their text content.
	TextTags []string `yaml:"text_tags"`
	TextMin  int      `yaml:"text_min"`
	TextMax  int      `yaml:"text_max"`

	// ClassRequiresHyphen limits the class strategy to hyphenated class
	// names, which are rarely presentational utility classes.
	ClassRequiresHyphen bool `yaml:"class_requires_hyphen"`

	// PromoteToButton synthesizes for the enclosing button when the
	// element is a span directly or one level inside it. The result then
	// resolves to the button, not the span. Off by default.
	PromoteToButton bool `yaml:"promote_to_button"`
}

// DefaultPolicy returns the recorder's lists.
func DefaultPolicy() Policy {
	return Policy{
		StableAttributes: []string{
			"name", "data-qa", "data-tid", "data-el", "data-se", "data-name",
			"data-auto", "data-text", "data-test", "data-testid", "data-test-id",
			"data-test-selector", "data-nav", "data-sb", "data-cy", "data-action",
			"data-target", "data-content", "alt", "title", "heading", "translate",
			"aria-label", "ng-model", "ng-href", "href", "label", "class", "value",
			"for", "placeholder", "ng-if", "src",
		},
		GeneratedIDPattern: `\d$`,
		UnsafeIDChars:      " \t\n\r\f,.():[]",
		NoDigitAttributes:  []string{"aria-label", "for"},
		UniqueTags:         []string{"h1", "h2", "h3", "center", "input", "textarea"},
		TextTags: []string{
			"a", "b", "i", "h1", "h2", "h3", "h4", "h5", "li", "td", "th", "code",
			"mark", "label", "small", "button", "legend", "strong", "summary",
		},
		TextMin:             2,
		TextMax:             64,
		ClassRequiresHyphen: true,
	}
}

func (p *Policy) defaults() {
	if p.TextMin <= 0 {
		p.TextMin = 2
	}
	if p.TextMax <= 0 {
		p.TextMax = 64
	}
}

// LoadPolicyFile reads a YAML policy. Keys absent from the file keep their
// DefaultPolicy values.
func LoadPolicyFile(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("synth: load policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("synth: load policy %s: %w", path, err)
	}
	p.defaults()
	if _, err := p.compile(); err != nil {
		return p, err
	}
	return p, nil
}

// compiled is a Policy with its lookups prepared.
type compiled struct {
	Policy
	generated  *regexp.Regexp
	noDigit    map[string]bool
	uniqueTags map[string]bool
	textTags   map[string]bool
}

func (p Policy) compile() (*compiled, error) {
	c := &compiled{
		Policy:     p,
		noDigit:    toSet(p.NoDigitAttributes),
		uniqueTags: toSet(p.UniqueTags),
		textTags:   toSet(p.TextTags),
	}
	if p.GeneratedIDPattern != "" {
		re, err := regexp.Compile(p.GeneratedIDPattern)
		if err != nil {
			return nil, fmt.Errorf("synth: generated_id_pattern: %w", err)
		}
		c.generated = re
	}
	return c, nil
}

func (c *compiled) looksGenerated(id string) bool {
	return c.generated != nil && c.generated.MatchString(id)
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}
