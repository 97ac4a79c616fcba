// Package engine wires the translators, the selector synthesizer and the
// action recorder behind one facade, and exposes it as MCP tools and an
// HTTP API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/selkit/cssxpath"
	"github.com/hazyhaar/selkit/dom"
	"github.com/hazyhaar/selkit/dom/htmldom"
	"github.com/hazyhaar/selkit/locator"
	"github.com/hazyhaar/selkit/recorder"
	"github.com/hazyhaar/selkit/safe"
	"github.com/hazyhaar/selkit/synth"
	"github.com/hazyhaar/selkit/xpathcss"
)

var (
	// ErrInvalidArgument reports a malformed or incomplete request.
	ErrInvalidArgument = errors.New("engine: invalid argument")

	// ErrNoMatch reports a target locator matching no element.
	ErrNoMatch = errors.New("engine: target matches no element")

	// ErrAmbiguous reports a target locator matching several elements.
	ErrAmbiguous = errors.New("engine: target matches more than one element")

	// ErrRecorderDisabled is returned by recorder operations when no
	// record_db is configured.
	ErrRecorderDisabled = errors.New("engine: recorder disabled")
)

// Dialect selects the XPath flavour produced from CSS.
type Dialect string

const (
	DialectCompact Dialect = "compact"
	DialectGeneric Dialect = "generic"
)

// Engine is safe for concurrent use.
type Engine struct {
	cfg    Config
	x2c    *xpathcss.Translator
	c2x    map[Dialect]*cssxpath.Translator
	synth  *synth.Synthesizer
	rec    *recorder.Recorder
	store  *recorder.Store
	logger *slog.Logger
}

// New builds an Engine. It opens the recorder database when configured.
func New(cfg Config) (*Engine, error) {
	cfg.defaults()
	s, err := synth.New(cfg.Policy, synth.WithLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{cfg: cfg, synth: s, logger: cfg.Logger}

	cache := func() *locator.Cache {
		if cfg.Cache {
			return locator.NewCache()
		}
		return nil
	}
	e.x2c = xpathcss.New(xpathcss.WithCache(cache()))
	e.c2x = map[Dialect]*cssxpath.Translator{
		DialectCompact: cssxpath.New(cssxpath.WithCache(cache())),
		DialectGeneric: cssxpath.New(cssxpath.WithEmitter(cssxpath.Generic{}), cssxpath.WithCache(cache())),
	}

	if cfg.RecordDB != "" {
		st, err := recorder.OpenStore(cfg.RecordDB)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.store = st
		e.rec = recorder.New(st, s, recorder.WithLogger(cfg.Logger))
	}

	e.logger.Info("engine: ready", "cache", cfg.Cache, "recorder", e.rec != nil)
	return e, nil
}

// Close releases the recorder database.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Config returns the configuration in use.
func (e *Engine) Config() Config { return e.cfg }

// XPathToCSS converts xpath to a CSS selector.
func (e *Engine) XPathToCSS(xpath string) (string, error) {
	css, err := e.x2c.Translate(xpath)
	if err != nil {
		e.logger.Debug("engine: xpath to css failed", "xpath", xpath, "error", err)
		return "", err
	}
	return css, nil
}

// CSSToXPath converts css to a compact XPath expression.
func (e *Engine) CSSToXPath(css string) (string, error) {
	return e.CSSToXPathDialect(css, DialectCompact)
}

// CSSToXPathDialect converts css to XPath in the given dialect. An empty
// dialect means compact.
func (e *Engine) CSSToXPathDialect(css string, d Dialect) (string, error) {
	if d == "" {
		d = DialectCompact
	}
	t, ok := e.c2x[d]
	if !ok {
		return "", fmt.Errorf("%w: unknown dialect %q", ErrInvalidArgument, d)
	}
	xpath, err := t.Translate(css)
	if err != nil {
		e.logger.Debug("engine: css to xpath failed", "css", css, "error", err)
		return "", err
	}
	return xpath, nil
}

// Convert translates l into the opposite kind.
func (e *Engine) Convert(l locator.Locator) (locator.Locator, error) {
	var (
		out string
		err error
	)
	switch l.Kind {
	case locator.KindXPath:
		out, err = e.XPathToCSS(l.Raw)
	case locator.KindCSS:
		out, err = e.CSSToXPath(l.Raw)
	default:
		return locator.Locator{}, fmt.Errorf("%w: kind %s", ErrInvalidArgument, l.Kind)
	}
	if err != nil {
		return locator.Locator{}, err
	}
	return locator.Locator{Raw: out, Kind: l.Kind.Opposite()}, nil
}

// ClearCache empties the translation caches.
func (e *Engine) ClearCache() {
	e.x2c.Cache().Clear()
	for _, t := range e.c2x {
		t.Cache().Clear()
	}
}

// CacheLen counts cached translations.
func (e *Engine) CacheLen() int {
	n := e.x2c.Cache().Len()
	for _, t := range e.c2x {
		n += t.Cache().Len()
	}
	return n
}

// Synthesize returns a selector resolving to exactly el.
func (e *Engine) Synthesize(el dom.Element) synth.Result {
	return e.synth.SynthesizeResult(el)
}

// SynthesizeHTML parses doc and synthesizes a selector for the element
// that target, CSS or XPath, resolves to.
func (e *Engine) SynthesizeHTML(doc, target string) (synth.Result, error) {
	el, err := e.target(doc, target)
	if err != nil {
		return synth.Result{}, err
	}
	return e.Synthesize(el), nil
}

// target resolves a locator to exactly one element of doc.
func (e *Engine) target(doc, target string) (dom.Element, error) {
	if strings.TrimSpace(doc) == "" || strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: html and target are required", ErrInvalidArgument)
	}
	d, err := htmldom.ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return Resolve(d, target)
}

// Resolve finds the single element of d that target matches. XPath
// targets run on htmlquery, CSS targets on cascadia.
func Resolve(d *htmldom.Document, target string) (dom.Element, error) {
	l := locator.Detect(target)
	var (
		found []dom.Element
		err   error
	)
	if l.Kind == locator.KindXPath {
		found, err = d.QueryXPath(l.Raw)
	} else {
		found, err = d.Query(l.Raw)
	}
	if err != nil {
		if errors.Is(err, locator.ErrUnsupportedCSS) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: target %q: %v", ErrInvalidArgument, target, err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, target)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q matches %d", ErrAmbiguous, target, len(found))
}

// Record stores an action on el for session.
func (e *Engine) Record(ctx context.Context, session string, kind recorder.Kind, el dom.Element, value, url string) (*recorder.Action, error) {
	if e.rec == nil {
		return nil, ErrRecorderDisabled
	}
	if _, err := recorder.ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := safe.ValidateSession(session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return e.rec.Record(ctx, session, kind, el, value, url)
}

// RecordSelector stores an action whose selector the caller already has.
func (e *Engine) RecordSelector(ctx context.Context, a *recorder.Action) (*recorder.Action, error) {
	if e.rec == nil {
		return nil, ErrRecorderDisabled
	}
	if err := safe.ValidateSession(a.Session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if a.Selector == "" {
		return nil, fmt.Errorf("%w: selector is required", ErrInvalidArgument)
	}
	if _, err := recorder.ParseKind(string(a.Kind)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return e.rec.Add(ctx, a)
}

// Actions lists session's recorded actions in order.
func (e *Engine) Actions(ctx context.Context, session string) ([]*recorder.Action, error) {
	if e.rec == nil {
		return nil, ErrRecorderDisabled
	}
	if err := safe.ValidateSession(session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return e.rec.List(ctx, session)
}

// ClearActions drops session's recorded actions.
func (e *Engine) ClearActions(ctx context.Context, session string) error {
	if e.rec == nil {
		return ErrRecorderDisabled
	}
	if err := safe.ValidateSession(session); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return e.rec.Clear(ctx, session)
}
