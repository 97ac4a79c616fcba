package recorder

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/selkit/dbopen"
	"github.com/hazyhaar/selkit/dom"
	"github.com/hazyhaar/selkit/dom/htmldom"
)

const form = `<html><body>
<form id="login">
  <input name="user">
  <input name="pass" type="password">
  <button><span>Log in</span></button>
</form>
</body></html>`

func testRecorder(t *testing.T) *Recorder {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	n := 0
	return New(&Store{DB: db}, nil,
		WithIDGenerator(func() string { n++; return fmt.Sprintf("act_%d", n) }),
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
}

func TestRecorder_RecordAndList(t *testing.T) {
	r := testRecorder(t)
	ctx := context.Background()
	doc, err := htmldom.ParseString(form)
	if err != nil {
		t.Fatal(err)
	}
	first := func(css string) dom.Element {
		t.Helper()
		els, err := doc.Query(css)
		if err != nil || len(els) == 0 {
			t.Fatalf("Query(%q): %v", css, err)
		}
		return els[0]
	}

	steps := []struct {
		kind  Kind
		css   string
		value string
		want  string
	}{
		{KindInput, "input", "alice", `input[name="user"]`},
		{KindInput, "input[type=password]", "secret", `input[name="pass"]`},
		{KindClick, "span", "", `button:contains("Log in")`},
	}
	for _, s := range steps {
		a, err := r.Record(ctx, "s1", s.kind, first(s.css), s.value, "https://example.com/login")
		if err != nil {
			t.Fatalf("Record(%s): %v", s.css, err)
		}
		if a.Selector != s.want {
			t.Errorf("Record(%s): selector %q, want %q", s.css, a.Selector, s.want)
		}
	}

	got, err := r.List(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(steps) {
		t.Fatalf("List: got %d actions, want %d", len(got), len(steps))
	}
	for i, a := range got {
		if a.ID != fmt.Sprintf("act_%d", i+1) {
			t.Errorf("action %d: id %q", i, a.ID)
		}
		if a.Kind != steps[i].kind || a.Value != steps[i].value || a.Selector != steps[i].want {
			t.Errorf("action %d: got %+v", i, a)
		}
		if a.URL != "https://example.com/login" || !a.At.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
			t.Errorf("action %d: url/at %q %v", i, a.URL, a.At)
		}
	}

	if other, err := r.List(ctx, "s2"); err != nil || len(other) != 0 {
		t.Errorf("other session: %v, %v", other, err)
	}
	if err := r.Clear(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.List(ctx, "s1"); len(got) != 0 {
		t.Errorf("after Clear: %d actions", len(got))
	}
}

func TestRecorder_Rejects(t *testing.T) {
	r := testRecorder(t)
	ctx := context.Background()
	doc, err := htmldom.ParseString(form)
	if err != nil {
		t.Fatal(err)
	}
	el := doc.Element(doc.Root().FirstChild)

	if _, err := r.Record(ctx, "", KindClick, el, "", ""); err == nil {
		t.Error("empty session accepted")
	}
	if _, err := r.Record(ctx, "s", Kind("drag"), el, "", ""); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := r.Record(ctx, "s", KindClick, nil, "", ""); err == nil {
		t.Error("nil element accepted")
	}
	if _, err := r.Add(ctx, &Action{Session: "s", Kind: KindClick}); err == nil {
		t.Error("empty selector accepted")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"click", "input", "select", "hover", "assert"} {
		if k, err := ParseKind(s); err != nil || string(k) != s {
			t.Errorf("ParseKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := ParseKind("Click"); err == nil {
		t.Error("kinds are case-sensitive")
	}
}

func TestOpenStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec", "actions.db")
	s, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	a := &Action{ID: "a1", Session: "s", Kind: KindHover, Selector: "h1", At: time.UnixMilli(1000)}
	if err := s.Insert(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, a); err == nil {
		t.Error("duplicate id accepted")
	}
	got, err := s.List(ctx, "s")
	if err != nil || len(got) != 1 || got[0].Selector != "h1" {
		t.Fatalf("List: %v, %v", got, err)
	}
	n, err := s.DeleteSession(ctx, "s")
	if err != nil || n != 1 {
		t.Errorf("DeleteSession: %d, %v", n, err)
	}
}
