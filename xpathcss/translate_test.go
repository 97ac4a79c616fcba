package xpathcss

import (
	"errors"
	"testing"

	"github.com/hazyhaar/selkit/locator"
)

func TestTranslate_Corpus(t *testing.T) {
	tests := []struct {
		xpath string
		want  string
	}{
		{`//tag[@id='v']`, `tag#v`},
		{`//tag[@class='v']`, `tag.v`},
		{`//tag[contains(@a,'v')]`, `tag[a*="v"]`},
		{`//tag[@a='v' and (contains(.,'t'))]`, `tag[a="v"]:contains("t")`},
		{`(//button[@type='submit'])[1]`, `button[type="submit"]:nth-of-type(1)`},
		{`//div[@id='main']/span[@class='hl']`, `div#main > span.hl`},
		{`//input[@id="user[login]"]`, `input[id="user[login]"]`},
		{`//div[@class and contains(concat(' ',normalize-space(@class),' '),' item ')]`, `div.item`},
		{`//div[contains(concat(' ', normalize-space(@class), ' '), ' item ')]//a`, `div.item a`},
		{`//a[@a='v1' and (@b='v2')]`, `a[a="v1"][b="v2"]`},
		{`//a[@a='v1' and @b='v2']`, `a[a="v1"][b="v2"]`},
		{`/html/body/div[2]/a`, `body > div:nth-of-type(2) > a`},
		{`/html/head/title`, `html > head > title`},
		{`id('main')/div`, `#main > div`},
		{`id("main")//li`, `#main li`},
		{`//*[@id='x']`, `#x`},
		{`//*`, `*`},
		{`//*[2]`, `:nth-child(2)`},
		{`//ul/*[last()]`, `ul > :last-child`},
		{`//a[text()='Home']`, `a:contains("Home")`},
		{`//a[.='Home']`, `a:contains("Home")`},
		{`//a[normalize-space()='Home']`, `a:contains("Home")`},
		{`//p[contains(text(),'hello')]`, `p:contains("hello")`},
		{`//li[last()]`, `li:last-of-type`},
		{`//a[starts-with(@href,'/go')]`, `a[href^="/go"]`},
		{`//input[@disabled]`, `input[disabled]`},
		{`//div//p`, `div p`},
		{`//div/descendant::p`, `div p`},
		{`//div/descendant-or-self::*/p`, `div p`},
		{`/descendant-or-self::node()/p`, `p`},
		{`//div/child::p`, `div > p`},
		{`.//span`, `span`},
		{`./span`, `span`},
		{`//div///span`, `div span`},
		{`//DIV[@ID='x']`, `div#x`},
		{`//div[@id='1abc']`, `div[id="1abc"]`},
		{`//div[@id='a.b']`, `div[id="a.b"]`},
		{`//div[@class='a b']`, `div.a.b`},
		{`//div[@class='a:b']`, `div[class="a:b"]`},
		{`//a[@title='say "hi"']`, `a[title="say \"hi\""]`},
		{`//svg[@xlink:href='#i']`, `svg[xlink:href="#i"]`},
		{`//a[ @href = '/x' ]`, `a[href="/x"]`},
		{`//li[@data-test='a'][2]`, `li[data-test="a"]:nth-of-type(2)`},
		{`  //a  `, `a`},
	}
	for _, tt := range tests {
		got, err := Translate(tt.xpath)
		if err != nil {
			t.Errorf("Translate(%q): %v", tt.xpath, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Translate(%q): got %q, want %q", tt.xpath, got, tt.want)
		}
	}
}

func TestTranslate_Unsupported(t *testing.T) {
	tests := []struct {
		xpath    string
		fragment string
	}{
		{``, ``},
		{`div`, `div`},
		{`//div[position()>2]`, `position()>2]`},
		{`//a | //b`, ` | //b`},
		{`//a[1][@x='y']`, `@x='y']`},
		{`//a[0]`, `0]`},
		{`//a[@x=y]`, `y]`},
		{`//a[@x='y'`, ``},
		{`(//a`, `(//a`},
		{`(//a)[@x='1']`, `[@x='1']`},
		{`//a/..`, `..`},
		{`//a[text()]`, `text()]`},
		{`//a[@title="[unclosed"`, ``},
	}
	for _, tt := range tests {
		_, err := Translate(tt.xpath)
		if !errors.Is(err, locator.ErrUnsupportedXPath) {
			t.Errorf("Translate(%q): got %v, want ErrUnsupportedXPath", tt.xpath, err)
			continue
		}
		var ue *locator.UnsupportedXPathError
		if !errors.As(err, &ue) {
			t.Fatalf("Translate(%q): error is %T", tt.xpath, err)
		}
		if ue.Input != tt.xpath {
			t.Errorf("Translate(%q): Input %q", tt.xpath, ue.Input)
		}
		if tt.fragment != "" && ue.Fragment != tt.fragment {
			t.Errorf("Translate(%q): fragment %q, want %q", tt.xpath, ue.Fragment, tt.fragment)
		}
	}
}

func TestTranslate_StartsWithText(t *testing.T) {
	_, err := Translate(`//a[starts-with(text(),'Ho')]`)
	if !errors.Is(err, locator.ErrUnsupportedXPath) {
		t.Fatalf("got %v", err)
	}
	var ue *locator.UnsupportedXPathError
	errors.As(err, &ue)
	if ue.Input != `//a[starts-with(text(),'Ho')]` {
		t.Errorf("Input: %q", ue.Input)
	}
}

func TestParse_Steps(t *testing.T) {
	steps, err := Parse(`(//div[@id='main']/a[contains(@href,'x[1]')])[3]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 {
		t.Fatalf("steps: got %d", len(steps))
	}
	if steps[0].Nav != locator.NavDescendant || steps[0].Tag != "div" {
		t.Errorf("step 0: %+v", steps[0])
	}
	if len(steps[0].Predicates) != 1 || steps[0].Predicates[0] != (locator.Predicate{Op: locator.OpEquals, Target: "id", Value: "main"}) {
		t.Errorf("step 0 predicates: %+v", steps[0].Predicates)
	}
	if steps[1].Nav != locator.NavChild || steps[1].Tag != "a" || steps[1].Index != 3 {
		t.Errorf("step 1: %+v", steps[1])
	}
	want := locator.Predicate{Op: locator.OpContains, Target: "href", Value: "x[1]"}
	if len(steps[1].Predicates) != 1 || steps[1].Predicates[0] != want {
		t.Errorf("step 1 predicates: %+v", steps[1].Predicates)
	}
}

func TestParse_IDLookup(t *testing.T) {
	steps, err := Parse(`id('top')`)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 1 || steps[0].Kind != locator.StepIDLookup || steps[0].ID != "top" {
		t.Errorf("got %+v", steps)
	}
}

func TestProtectBrackets(t *testing.T) {
	in := `//a[@x="[1]"][@y='a]b'][2]`
	p := protectBrackets(in)
	if got := restoreBrackets(p); got != in {
		t.Errorf("round trip: got %q", got)
	}
	outer := 0
	for _, r := range p {
		if r == '[' {
			outer++
		}
	}
	if outer != 3 {
		t.Errorf("unprotected '[' count: got %d, want 3", outer)
	}
}

func TestTranslator_Cache(t *testing.T) {
	c := locator.NewCache()
	tr := New(WithCache(c))
	for range 2 {
		got, err := tr.Translate(`//a[@id='x']`)
		if err != nil || got != "a#x" {
			t.Fatalf("got %q %v", got, err)
		}
	}
	if c.Len() != 1 {
		t.Errorf("cache len: got %d", c.Len())
	}
	if _, err := tr.Translate(`//a[`); err == nil {
		t.Fatal("expected error")
	}
	if c.Len() != 1 {
		t.Errorf("errors must not be cached, len %d", c.Len())
	}

	// Output does not depend on cache state.
	c.Clear()
	cold, _ := tr.Translate(`//ul/li[2]`)
	warm, _ := tr.Translate(`//ul/li[2]`)
	if cold != warm || cold != "ul > li:nth-of-type(2)" {
		t.Errorf("cold %q warm %q", cold, warm)
	}

	if New().Cache() != nil {
		t.Error("default translator should have no cache")
	}
}
