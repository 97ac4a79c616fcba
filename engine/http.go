package engine

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/selkit/kit"
	"github.com/hazyhaar/selkit/locator"
	"github.com/hazyhaar/selkit/shield"
)

// Routes returns the HTTP API. A non-nil mcpSrv is also served over
// streamable HTTP at /mcp.
func (e *Engine) Routes(mcpSrv *mcp.Server) http.Handler {
	eps := e.endpoints()

	r := chi.NewRouter()
	for _, mw := range shield.APIStack(e.logger, e.cfg.MaxBody) {
		r.Use(mw)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{
			"status":   "ok",
			"cache":    e.CacheLen(),
			"recorder": e.rec != nil,
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/xpath-to-css", e.handle(eps["xpath_to_css"], decodeBody[xpathToCSSRequest]))
		r.Post("/css-to-xpath", e.handle(eps["css_to_xpath"], decodeBody[cssToXPathRequest]))
		r.Post("/convert", e.handle(eps["convert"], decodeBody[convertRequest]))
		r.Post("/synthesize", e.handle(eps["synthesize"], decodeBody[synthesizeRequest]))
		r.Post("/record", e.handle(eps["record"], decodeBody[recordRequest]))
		r.Get("/actions/{session}", e.handle(eps["actions"], sessionParam))
		r.Delete("/actions/{session}", e.handle(eps["clear"], sessionParam))
		r.Delete("/cache", func(w http.ResponseWriter, _ *http.Request) {
			e.ClearCache()
			w.WriteHeader(http.StatusNoContent)
		})
	})

	if mcpSrv != nil {
		r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))
	}
	return r
}

func (e *Engine) handle(ep kit.Endpoint, decode func(*http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(r)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
			return
		}
		resp, err := ep(r.Context(), req)
		if err != nil {
			status := statusOf(err)
			if status == http.StatusInternalServerError {
				shield.GetLogger(r.Context()).Error("engine: request failed", "error", err)
			}
			body := errorBody{Error: err.Error()}
			body.Fragment, _ = locator.FragmentOf(err)
			writeJSON(w, r, status, body)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

type errorBody struct {
	Error    string `json:"error"`
	Fragment string `json:"fragment,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, locator.ErrUnsupportedXPath), errors.Is(err, locator.ErrUnsupportedCSS):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, ErrAmbiguous):
		return http.StatusConflict
	case errors.Is(err, ErrRecorderDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func decodeBody[T any](r *http.Request) (any, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func sessionParam(r *http.Request) (any, error) {
	return &sessionRequest{Session: chi.URLParam(r, "session")}, nil
}

// writeJSON sends v with status. The header is already out when encoding
// fails, so the error is only logged.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		shield.GetLogger(r.Context()).Error("engine: write response", "status", status, "error", err)
	}
}
