package engine

import (
	"context"
	"fmt"

	"github.com/hazyhaar/selkit/kit"
	"github.com/hazyhaar/selkit/locator"
	"github.com/hazyhaar/selkit/recorder"
)

// Requests and responses shared by the MCP tools and HTTP routes.

type xpathToCSSRequest struct {
	XPath string `json:"xpath"`
}

type cssToXPathRequest struct {
	CSS     string  `json:"css"`
	Dialect Dialect `json:"dialect,omitempty"`
}

type convertRequest struct {
	Locator string `json:"locator"`
	Kind    string `json:"kind,omitempty"`
}

type synthesizeRequest struct {
	HTML   string `json:"html"`
	Target string `json:"target"`
}

type recordRequest struct {
	Session  string `json:"session"`
	Kind     string `json:"kind"`
	HTML     string `json:"html,omitempty"`
	Target   string `json:"target,omitempty"`
	Selector string `json:"selector,omitempty"`
	Value    string `json:"value,omitempty"`
	URL      string `json:"url,omitempty"`
}

type sessionRequest struct {
	Session string `json:"session"`
}

type translation struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Kind   string `json:"kind"`
}

type actionsResponse struct {
	Session string             `json:"session"`
	Actions []*recorder.Action `json:"actions"`
}

// endpoints returns every engine operation by name, wrapped in logging.
func (e *Engine) endpoints() map[string]kit.Endpoint {
	raw := map[string]kit.Endpoint{
		"xpath_to_css": e.xpathToCSSEndpoint,
		"css_to_xpath": e.cssToXPathEndpoint,
		"convert":      e.convertEndpoint,
		"synthesize":   e.synthesizeEndpoint,
		"record":       e.recordEndpoint,
		"actions":      e.actionsEndpoint,
		"clear":        e.clearEndpoint,
	}
	out := make(map[string]kit.Endpoint, len(raw))
	for name, ep := range raw {
		out[name] = kit.Chain(kit.Logging(e.logger, name))(ep)
	}
	return out
}

func (e *Engine) xpathToCSSEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*xpathToCSSRequest)
	if r.XPath == "" {
		return nil, fmt.Errorf("%w: xpath is required", ErrInvalidArgument)
	}
	css, err := e.XPathToCSS(r.XPath)
	if err != nil {
		return nil, err
	}
	return translation{Input: r.XPath, Output: css, Kind: locator.KindCSS.String()}, nil
}

func (e *Engine) cssToXPathEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*cssToXPathRequest)
	if r.CSS == "" {
		return nil, fmt.Errorf("%w: css is required", ErrInvalidArgument)
	}
	xpath, err := e.CSSToXPathDialect(r.CSS, r.Dialect)
	if err != nil {
		return nil, err
	}
	return translation{Input: r.CSS, Output: xpath, Kind: locator.KindXPath.String()}, nil
}

func (e *Engine) convertEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*convertRequest)
	l := locator.Detect(r.Locator)
	if r.Kind != "" {
		k, err := locator.ParseKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if l, err = locator.New(r.Locator, k); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}
	if l.Raw == "" {
		return nil, fmt.Errorf("%w: locator is required", ErrInvalidArgument)
	}
	out, err := e.Convert(l)
	if err != nil {
		return nil, err
	}
	return translation{Input: l.Raw, Output: out.Raw, Kind: out.Kind.String()}, nil
}

func (e *Engine) synthesizeEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*synthesizeRequest)
	return e.SynthesizeHTML(r.HTML, r.Target)
}

func (e *Engine) recordEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*recordRequest)
	kind := recorder.Kind(r.Kind)
	if r.HTML == "" {
		return e.RecordSelector(ctx, &recorder.Action{
			Session:  r.Session,
			Kind:     kind,
			Selector: r.Selector,
			Value:    r.Value,
			URL:      r.URL,
		})
	}
	if e.rec == nil {
		return nil, ErrRecorderDisabled
	}
	el, err := e.target(r.HTML, r.Target)
	if err != nil {
		return nil, err
	}
	return e.Record(ctx, r.Session, kind, el, r.Value, r.URL)
}

func (e *Engine) actionsEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*sessionRequest)
	actions, err := e.Actions(ctx, r.Session)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []*recorder.Action{}
	}
	return actionsResponse{Session: r.Session, Actions: actions}, nil
}

func (e *Engine) clearEndpoint(ctx context.Context, req any) (any, error) {
	r := req.(*sessionRequest)
	if err := e.ClearActions(ctx, r.Session); err != nil {
		return nil, err
	}
	return map[string]string{"session": r.Session, "status": "cleared"}, nil
}
