package shield

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/selkit/kit"
)

func chain(h http.Handler, mws []func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestAPIStack(t *testing.T) {
	var gotID, gotMethod string
	var bodyErr error
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = kit.GetRequestID(r.Context())
		gotMethod = r.Method
		_, bodyErr = io.ReadAll(r.Body)
	}), APIStack(nil, 8))

	tests := []struct {
		name     string
		method   string
		body     string
		header   string
		wantID   string
		wantBody bool
	}{
		{"client id kept", http.MethodPost, "{}", "abc", "abc", true},
		{"generated id", http.MethodPost, "{}", "", "req_", true},
		{"body over cap", http.MethodPost, strings.Repeat("x", 9), "", "req_", false},
		{"head served as get", http.MethodHead, "", "", "req_", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/x", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if !strings.HasPrefix(gotID, tt.wantID) {
				t.Errorf("request id: got %q, want prefix %q", gotID, tt.wantID)
			}
			if rec.Header().Get("X-Request-ID") != gotID {
				t.Errorf("response header %q != context id %q", rec.Header().Get("X-Request-ID"), gotID)
			}
			if (bodyErr == nil) != tt.wantBody {
				t.Errorf("body read error: %v", bodyErr)
			}
			if tt.method == http.MethodHead && gotMethod != http.MethodGet {
				t.Errorf("method: got %s", gotMethod)
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff")
			}
		})
	}
}

func TestGetLogger_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetLogger(req.Context()) == nil {
		t.Fatal("nil logger")
	}
}
