package roddom

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/selkit/safe"
)

// Rejected URLs never reach the browser, so these run without Chrome.
func TestOpen_RejectsURL(t *testing.T) {
	tests := []struct {
		url  string
		cfg  Config
		want error
	}{
		{"javascript:alert(1)", DefaultConfig(), safe.ErrScheme},
		{"http://127.0.0.1/", Config{BlockPrivate: true}, safe.ErrPrivateAddress},
		{"file:///etc/hosts", Config{BlockPrivate: true}, safe.ErrPrivateAddress},
	}
	for _, tt := range tests {
		s, err := Open(context.Background(), tt.url, tt.cfg)
		if !errors.Is(err, tt.want) {
			t.Errorf("Open(%q): got %v, want %v", tt.url, err, tt.want)
		}
		if s != nil {
			s.Close()
		}
	}
}
