package cssxpath

import (
	"errors"
	"testing"

	"github.com/hazyhaar/selkit/locator"
)

func TestTranslate_Compact(t *testing.T) {
	tests := []struct {
		css  string
		want string
	}{
		{`a.button[href*='/go']`, `//a[(contains(@class, "button")) and (contains(@href, "/go"))]`},
		{`#main`, `//*[@id="main"]`},
		{`div#main > span.hl`, `//div[@id="main"]/span[contains(@class, "hl")]`},
		{`div span`, `//div//span`},
		{`div  >  span`, `//div/span`},
		{`ul>li:nth-of-type(2)`, `//ul/li[count(preceding-sibling::li) = 1]`},
		{`a:contains("Go")`, `//a[contains(., "Go")]`},
		{`a:contains(Go)`, `//a[contains(., "Go")]`},
		{`h1 + p`, `//h1/following-sibling::*[1][self::p]`},
		{`h1 + p.x`, `//h1/following-sibling::*[1][(self::p) and (contains(@class, "x"))]`},
		{`h1 + *`, `//h1/following-sibling::*[1]`},
		{`h1 ~ p`, `//h1/following-sibling::p`},
		{`a, b`, `//a | //b`},
		{`*`, `//*`},
		{`[data-x=""]`, `//*[@data-x=""]`},
		{`[class~=""]`, `//*[0]`},
		{`[class~="a b"]`, `//*[0]`},
		{`a[href*=""]`, `//a[0]`},
		{`[disabled]`, `//*[@disabled]`},
		{`input[type=checkbox]`, `//input[@type="checkbox"]`},
		{`a[title='say "hi"']`, `//a[@title='say "hi"']`},
		{`li:nth-child(odd)`, `//li[count(preceding-sibling::*) mod 2 = 0]`},
		{`li:nth-child(2n+3)`, `//li[(count(preceding-sibling::*) >= 2) and (count(preceding-sibling::*) mod 2 = 0)]`},
		{`li:nth-child(3n+1)`, `//li[count(preceding-sibling::*) mod 3 = 0]`},
		{`li:nth-child(3n+2)`, `//li[(count(preceding-sibling::*) >= 1) and ((count(preceding-sibling::*) +2) mod 3 = 0)]`},
		{`li:nth-child(n)`, `//li`},
		{`li:nth-last-child(-n+2)`, `//li[count(following-sibling::*) <= 1]`},
		{`li:nth-child(-n-1)`, `//li[0]`},
		{`p:first-child`, `//p[count(preceding-sibling::*) = 0]`},
		{`p:last-of-type`, `//p[count(following-sibling::p) = 0]`},
		{`p:only-child`, `//p[count(parent::*/child::*) = 1]`},
		{`:root`, `//*[not(parent::*)]`},
		{`td:empty`, `//td[not(*) and not(string-length())]`},
		{`a:not(.x)`, `//a[not(contains(@class, "x"))]`},
		{`:not(p)`, `//*[not(name() = "p")]`},
		{`a:not(*)`, `//a[0]`},
		{`DIV.Foo`, `//div[contains(@class, "Foo")]`},
		{`#foo\:bar`, `//*[@id="foo:bar"]`},
		{`[DATA-Test="x"]`, `//*[@data-test="x"]`},
		{`  a  `, `//a`},
		{`a /* note */ b`, `//a//b`},
	}
	for _, tt := range tests {
		got, err := Translate(tt.css)
		if err != nil {
			t.Errorf("Translate(%q): %v", tt.css, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Translate(%q):\n got  %s\n want %s", tt.css, got, tt.want)
		}
	}
}

func TestTranslate_Generic(t *testing.T) {
	tests := []struct {
		css  string
		want string
	}{
		{`div.x`, `descendant-or-self::div[@class and contains(concat(' ', normalize-space(@class), ' '), ' x ')]`},
		{`a b`, `descendant-or-self::a/descendant-or-self::*/b`},
		{`a > b`, `descendant-or-self::a/b`},
		{`#m`, `descendant-or-self::*[@id = 'm']`},
		{`[lang|=en]`, `descendant-or-self::*[@lang and (@lang = 'en' or starts-with(@lang, 'en-'))]`},
		{`[href^="/a"]`, `descendant-or-self::*[@href and starts-with(@href, '/a')]`},
		{`[href$=".pdf"]`, `descendant-or-self::*[@href and substring(@href, string-length(@href)-3) = '.pdf']`},
		{`[href*="x"]`, `descendant-or-self::*[@href and contains(@href, 'x')]`},
		{`[title="it's"]`, `descendant-or-self::*[@title = "it's"]`},
		{`h1 + p`, `descendant-or-self::h1/following-sibling::*[1][self::p]`},
	}
	for _, tt := range tests {
		got, err := TranslateWith(Generic{}, tt.css)
		if err != nil {
			t.Errorf("TranslateWith(%q): %v", tt.css, err)
			continue
		}
		if got != tt.want {
			t.Errorf("TranslateWith(%q):\n got  %s\n want %s", tt.css, got, tt.want)
		}
	}
}

func TestTranslate_Unsupported(t *testing.T) {
	tests := []struct {
		css      string
		fragment string
	}{
		{``, ``},
		{`   `, ``},
		{`a::before`, `::before`},
		{`a:hover`, `:hover`},
		{`*:first-of-type`, `:first-of-type`},
		{`:nth-of-type(2)`, `:nth-of-type(2)`},
		{`[a="x" i]`, `[a="x" i]`},
		{`ns|a`, `ns|a`},
		{`a >`, ` >`},
		{`a:nth-child(foo)`, `:nth-child(foo)`},
		{`div:lang(en)`, `:lang(en)`},
		{`a,`, ``},
		{`a{}`, `{}`},
		{`div\:x`, `div\:x`},
		{`a[data\:x]`, `[data\:x]`},
		{`p > a\(b\)`, `a\(b\)`},
	}
	for _, tt := range tests {
		_, err := Translate(tt.css)
		if !errors.Is(err, locator.ErrUnsupportedCSS) {
			t.Errorf("Translate(%q): got %v, want ErrUnsupportedCSS", tt.css, err)
			continue
		}
		var ue *locator.UnsupportedCSSError
		if !errors.As(err, &ue) {
			t.Fatalf("Translate(%q): error is %T", tt.css, err)
		}
		if ue.Input != tt.css {
			t.Errorf("Translate(%q): Input %q", tt.css, ue.Input)
		}
		if ue.Fragment != tt.fragment {
			t.Errorf("Translate(%q): fragment %q, want %q", tt.css, ue.Fragment, tt.fragment)
		}
	}
}

func TestParseSeries(t *testing.T) {
	tests := []struct {
		in   string
		a, b int
		ok   bool
	}{
		{"odd", 2, 1, true},
		{"EVEN", 2, 0, true},
		{"3", 0, 3, true},
		{"+3", 0, 3, true},
		{"n", 1, 0, true},
		{"-n+2", -1, 2, true},
		{"2n-1", 2, -1, true},
		{"+n+1", 1, 1, true},
		{"", 0, 0, false},
		{"n2", 0, 0, false},
		{"xn", 0, 0, false},
	}
	for _, tt := range tests {
		a, b, ok := parseSeries(tt.in)
		if ok != tt.ok || ok && (a != tt.a || b != tt.b) {
			t.Errorf("parseSeries(%q) = %d, %d, %v", tt.in, a, b, ok)
		}
	}
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in   string
		dq   bool
		want string
	}{
		{`a`, false, `'a'`},
		{`a`, true, `"a"`},
		{`it's`, false, `"it's"`},
		{`say "x"`, true, `'say "x"'`},
		{`a'b"c`, false, `concat('a',"'",'b"c')`},
	}
	for _, tt := range tests {
		if got := xpathLiteral(tt.in, tt.dq); got != tt.want {
			t.Errorf("xpathLiteral(%q, %v) = %s, want %s", tt.in, tt.dq, got, tt.want)
		}
	}
}

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`plain`:      `plain`,
		`foo\:bar`:   `foo:bar`,
		`\31 23`:     `123`,
		`a\"b`:       `a"b`,
		`caf\e9 x`:   `caféx`,
		`trailing\\`: `trailing\`,
	}
	for in, want := range tests {
		if got := unescape(in); got != want {
			t.Errorf("unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranslator_CacheAndEmitter(t *testing.T) {
	c := locator.NewCache()
	tr := New(WithEmitter(Generic{}), WithCache(c))
	a, err := tr.Translate("#x")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tr.Translate("#x")
	if a != b || a != `descendant-or-self::*[@id = 'x']` {
		t.Errorf("got %q then %q", a, b)
	}
	if c.Len() != 1 || tr.Cache() != c {
		t.Errorf("cache len %d", c.Len())
	}
	if got, _ := New().Translate("#x"); got != `//*[@id="x"]` {
		t.Errorf("default emitter: %q", got)
	}
}
