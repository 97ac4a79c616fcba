// Package recorder captures user actions against a page as replayable
// steps. Each action stores a selector synthesized for the element it
// targeted, so a recorded session can be replayed against a fresh load of
// the page.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/selkit/dom"
	"github.com/hazyhaar/selkit/idgen"
	"github.com/hazyhaar/selkit/synth"
)

// Kind is what the user did.
type Kind string

const (
	KindClick  Kind = "click"
	KindInput  Kind = "input"
	KindSelect Kind = "select"
	KindHover  Kind = "hover"
	KindAssert Kind = "assert"
)

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindClick, KindInput, KindSelect, KindHover, KindAssert:
		return k, nil
	}
	return "", fmt.Errorf("recorder: unknown action kind %q", s)
}

// Action is one recorded step.
type Action struct {
	ID       string    `json:"id"`
	Session  string    `json:"session"`
	Kind     Kind      `json:"kind"`
	Selector string    `json:"selector"`
	Value    string    `json:"value,omitempty"`
	URL      string    `json:"url,omitempty"`
	At       time.Time `json:"at"`
}

// Recorder synthesizes selectors for targeted elements and stores them.
type Recorder struct {
	store  *Store
	synth  *synth.Synthesizer
	ids    idgen.Generator
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(r *Recorder) { r.logger = l } }

// WithIDGenerator sets the action id generator. Default: "act_" + UUIDv7.
func WithIDGenerator(g idgen.Generator) Option { return func(r *Recorder) { r.ids = g } }

// WithClock sets the time source.
func WithClock(now func() time.Time) Option { return func(r *Recorder) { r.now = now } }

// New returns a Recorder writing to store. A nil s uses the default policy
// with PromoteToButton set, so a click on a button label records the button.
func New(store *Store, s *synth.Synthesizer, opts ...Option) *Recorder {
	r := &Recorder{
		store: store,
		synth: s,
		ids:   idgen.Prefixed("act_", idgen.Default),
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	if r.synth == nil {
		p := synth.DefaultPolicy()
		p.PromoteToButton = true
		r.synth, _ = synth.New(p)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Record stores kind performed on el. For input and select, value is what
// was entered or chosen; for assert it is the expected text.
func (r *Recorder) Record(ctx context.Context, session string, kind Kind, el dom.Element, value, url string) (*Action, error) {
	if el == nil {
		return nil, fmt.Errorf("recorder: record: nil element")
	}
	sel := r.synth.Synthesize(el)
	if sel == "" {
		return nil, fmt.Errorf("recorder: record: no selector for <%s>", el.TagName())
	}
	return r.Add(ctx, &Action{
		Session:  session,
		Kind:     kind,
		Selector: sel,
		Value:    value,
		URL:      url,
	})
}

// Add stores an action whose selector is already known, filling in the
// id and timestamp when unset.
func (r *Recorder) Add(ctx context.Context, a *Action) (*Action, error) {
	if a.Session == "" {
		return nil, fmt.Errorf("recorder: record: empty session")
	}
	if _, err := ParseKind(string(a.Kind)); err != nil {
		return nil, err
	}
	if a.Selector == "" {
		return nil, fmt.Errorf("recorder: record: empty selector")
	}
	if a.ID == "" {
		a.ID = r.ids()
	}
	if a.At.IsZero() {
		a.At = r.now().UTC()
	}
	if err := r.store.Insert(ctx, a); err != nil {
		return nil, err
	}
	r.logger.Debug("recorder: action", "session", a.Session, "kind", a.Kind, "selector", a.Selector)
	return a, nil
}

// List returns session's actions in recording order.
func (r *Recorder) List(ctx context.Context, session string) ([]*Action, error) {
	return r.store.List(ctx, session)
}

// Clear drops session.
func (r *Recorder) Clear(ctx context.Context, session string) error {
	n, err := r.store.DeleteSession(ctx, session)
	if err != nil {
		return err
	}
	r.logger.Info("recorder: session cleared", "session", session, "actions", n)
	return nil
}
