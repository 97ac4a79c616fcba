package xpathcss

import "strings"

// Sentinels stand in for "[" and "]" inside quoted literals so the idiom
// table and the step grammar never mistake them for predicate delimiters.
const (
	openSentinel  = '\uE000'
	closeSentinel = '\uE001'
)

// protectBrackets swaps brackets that sit inside '...' or "..." literals
// for sentinels.
func protectBrackets(s string) string {
	if !strings.ContainsAny(s, "[]") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote != 0 && r == '[':
			r = openSentinel
		case quote != 0 && r == ']':
			r = closeSentinel
		}
		b.WriteRune(r)
	}
	return b.String()
}

// restoreBrackets undoes protectBrackets.
func restoreBrackets(s string) string {
	if !strings.ContainsRune(s, openSentinel) && !strings.ContainsRune(s, closeSentinel) {
		return s
	}
	return strings.NewReplacer(string(openSentinel), "[", string(closeSentinel), "]").Replace(s)
}
