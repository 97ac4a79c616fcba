package xpathcss

import "regexp"

// idiom rewrites one compound XPath predicate that the step grammar does not
// cover into an equivalent chain of simple predicates.
type idiom struct {
	name    string
	pattern *regexp.Regexp
	repl    string
}

const (
	lit  = `('[^']*'|"[^"]*")`
	attr = `@([A-Za-z_][\w:.-]*)`
)

// idioms is applied in order to the bracket-protected expression before
// parsing.
var idioms = []idiom{
	{
		// [@class and contains(concat(' ',normalize-space(@class),' '),' X ')]
		name:    "class-membership",
		pattern: regexp.MustCompile(`\[\s*(?:@class\s+and\s+)?contains\(\s*concat\(\s*['"] ['"]\s*,\s*normalize-space\(\s*@class\s*\)\s*,\s*['"] ['"]\s*\)\s*,\s*['"]\s*([^'"\s]+)\s*['"]\s*\)\s*\]`),
		repl:    `[@class='$1']`,
	},
	{
		// [@a='v' and (contains(.,'t'))]
		name:    "attr-and-text",
		pattern: regexp.MustCompile(`\[\s*` + attr + `\s*=\s*` + lit + `\s+and\s+\(?\s*contains\(\s*(?:\.|text\(\))\s*,\s*` + lit + `\s*\)\s*\)?\s*\]`),
		repl:    `[@$1=$2][contains(.,$3)]`,
	},
	{
		// [@a='v1' and (@b='v2')]
		name:    "attr-and-attr",
		pattern: regexp.MustCompile(`\[\s*` + attr + `\s*=\s*` + lit + `\s+and\s+\(?\s*` + attr + `\s*=\s*` + lit + `\s*\)?\s*\]`),
		repl:    `[@$1=$2][@$3=$4]`,
	},
}

func applyIdioms(s string) string {
	for _, id := range idioms {
		s = id.pattern.ReplaceAllString(s, id.repl)
	}
	return s
}
