package cssxpath

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// token is one lexeme with its raw source text.
type token struct {
	typ css.TokenType
	raw string
}

// tokenize runs the CSS3 syntax lexer over s, dropping comments.
func tokenize(s string) ([]token, error) {
	l := css.NewLexer(parse.NewInputString(s))
	var toks []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, err
			}
			return toks, nil
		case css.CommentToken:
			continue
		}
		toks = append(toks, token{typ: tt, raw: string(data)})
	}
}

// unescape resolves CSS escapes: "\" plus up to six hex digits (and one
// trailing space), an escaped newline, or any other escaped character.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		j := i
		for j < len(s) && j-i < 6 && isHex(s[j]) {
			j++
		}
		if j > i {
			n, _ := strconv.ParseUint(s[i:j], 16, 32)
			r := rune(n)
			if r == 0 || !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
			if j < len(s) && isSpace(s[j]) {
				j++
			}
			i = j - 1
			continue
		}
		if s[i] == '\n' {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unquote strips the quotes of a string token and resolves its escapes.
func unquote(raw string) string {
	if raw == "" {
		return raw
	}
	q := raw[0]
	raw = raw[1:]
	if n := len(raw); n > 0 && raw[n-1] == q && (n < 2 || raw[n-2] != '\\') {
		raw = raw[:n-1]
	}
	return unescape(raw)
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// isXMLName reports whether s can stand as an XPath name test or attribute
// name: a letter or underscore, then letters, digits, "-", "_" or ".".
// A colon would read as a namespace prefix.
func isXMLName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return s != ""
}
