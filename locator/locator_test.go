package locator

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"//div", KindXPath},
		{"/html/body", KindXPath},
		{"./span", KindXPath},
		{"(//button)[1]", KindXPath},
		{"  //a  ", KindXPath},
		{"div#main", KindCSS},
		{".item > a", KindCSS},
		{"#id", KindCSS},
		{"[name=q]", KindCSS},
	}
	for _, tt := range tests {
		if got := Detect(tt.raw).Kind; got != tt.want {
			t.Errorf("Detect(%q): got %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestNew_KindMismatch(t *testing.T) {
	if _, err := New("//div", KindCSS); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("css kind for xpath: got %v, want ErrKindMismatch", err)
	}
	if _, err := New("div > a", KindXPath); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("xpath kind for css: got %v, want ErrKindMismatch", err)
	}
	if _, err := New("   ", KindCSS); err == nil {
		t.Fatal("empty locator should fail")
	}
	l, err := New(" //a ", KindXPath)
	if err != nil {
		t.Fatal(err)
	}
	if l.Raw != "//a" {
		t.Errorf("Raw: got %q", l.Raw)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("XPath"); err != nil || k != KindXPath {
		t.Errorf("ParseKind(XPath): %v %v", k, err)
	}
	if k, err := ParseKind("css"); err != nil || k != KindCSS {
		t.Errorf("ParseKind(css): %v %v", k, err)
	}
	if _, err := ParseKind("jquery"); err == nil {
		t.Error("ParseKind(jquery) should fail")
	}
	if KindCSS.Opposite() != KindXPath || KindXPath.Opposite() != KindCSS {
		t.Error("Opposite")
	}
}

func TestUnsupportedErrors(t *testing.T) {
	var err error = &UnsupportedXPathError{Input: "//a[1=1]", Fragment: "[1=1]"}
	wrapped := fmt.Errorf("engine: %w", err)
	if !errors.Is(wrapped, ErrUnsupportedXPath) {
		t.Error("xpath error should match sentinel")
	}
	if errors.Is(wrapped, ErrUnsupportedCSS) {
		t.Error("xpath error should not match css sentinel")
	}
	if frag, ok := FragmentOf(wrapped); !ok || frag != "[1=1]" {
		t.Errorf("FragmentOf: got %q %v", frag, ok)
	}

	err = &UnsupportedCSSError{Input: "a:hover", Fragment: ":hover"}
	if !errors.Is(err, ErrUnsupportedCSS) {
		t.Error("css error should match sentinel")
	}
	if frag, ok := FragmentOf(err); !ok || frag != ":hover" {
		t.Errorf("FragmentOf: got %q %v", frag, ok)
	}
	if _, ok := FragmentOf(errors.New("other")); ok {
		t.Error("FragmentOf on plain error should report false")
	}
}

func TestFragment(t *testing.T) {
	var f Fragment
	f.Append(Child, "html")
	f.Append(Child, "body")
	f.Append(Child, "div")
	f.Append(Descendant, "span.hl")
	if got := f.String(); got != "html > body > div span.hl" {
		t.Fatalf("String: got %q", got)
	}
	if f.Hops() != 3 {
		t.Errorf("Hops: got %d", f.Hops())
	}
	if got := f.CollapseHTMLBody().String(); got != "body > div span.hl" {
		t.Errorf("CollapseHTMLBody: got %q", got)
	}
	if got := f.Descendants().String(); got != "html body div span.hl" {
		t.Errorf("Descendants: got %q", got)
	}
	if got := f.DropSteps("div").String(); got != "html > body span.hl" {
		t.Errorf("DropSteps: got %q", got)
	}
	// The original must be untouched by the derived copies.
	if got := f.String(); got != "html > body > div span.hl" {
		t.Errorf("original mutated: %q", got)
	}

	var p Fragment
	p.Prepend("span", Child)
	p.Prepend("div#main", Child)
	if got := p.String(); got != "div#main > span" {
		t.Errorf("Prepend: got %q", got)
	}
}

func TestFragment_DropStepsKeepsEnds(t *testing.T) {
	f := Fragment{Steps: []string{"div", "div", "div"}, Combinators: []Combinator{Child, Child}}
	if got := f.DropSteps("div").String(); got != "div div" {
		t.Errorf("got %q", got)
	}
	short := Fragment{Steps: []string{"div", "a"}, Combinators: []Combinator{Child}}
	if got := short.DropSteps("div").String(); got != "div > a" {
		t.Errorf("got %q", got)
	}
}

func TestIsIdent(t *testing.T) {
	good := []string{"main", "user-name", "_x", "-a", "nav2", "héllo"}
	bad := []string{"", "1abc", "-", "-1", "a b", "a.b", "user[login]", "a:b", "x(y)", "a,b", `a"b`}
	for _, s := range good {
		if !IsIdent(s) {
			t.Errorf("IsIdent(%q) = false", s)
		}
	}
	for _, s := range bad {
		if IsIdent(s) {
			t.Errorf("IsIdent(%q) = true", s)
		}
	}
}

func TestQuoteCSS(t *testing.T) {
	if got := QuoteCSS(`say "hi" \o/`); got != `"say \"hi\" \\o/"` {
		t.Errorf("got %s", got)
	}
	if got := QuoteCSS("plain"); got != `"plain"` {
		t.Errorf("got %s", got)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	calls := 0
	fn := func(in string) (string, error) {
		calls++
		if in == "bad" {
			return "", errors.New("bad input")
		}
		return "out:" + in, nil
	}

	for range 3 {
		out, err := c.Memo("x", fn)
		if err != nil || out != "out:x" {
			t.Fatalf("Memo: %q %v", out, err)
		}
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}

	if _, err := c.Memo("bad", fn); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors must not be cached")
	}

	if c.Len() != 1 {
		t.Errorf("Len: got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear: got %d", c.Len())
	}
}

func TestCache_Nil(t *testing.T) {
	var c *Cache
	c.Put("a", "b")
	if _, ok := c.Get("a"); ok {
		t.Error("nil cache should never hit")
	}
	c.Clear()
	out, err := c.Memo("a", func(s string) (string, error) { return s + "!", nil })
	if err != nil || out != "a!" {
		t.Errorf("nil Memo: %q %v", out, err)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			out, _ := c.Memo(key, func(s string) (string, error) { return s + "!", nil })
			if out != key+"!" {
				t.Errorf("got %q", out)
			}
		}()
	}
	wg.Wait()
	if c.Len() != 4 {
		t.Errorf("Len: got %d", c.Len())
	}
}
