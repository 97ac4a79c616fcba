package safe

import (
	"errors"
	"net"
	"strings"
	"testing"
)

func TestValidateSession(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"checkout-flow_2.v1", false},
		{"", true},
		{"a/b", true},
		{"with space", true},
		{"..%2f", true},
		{strings.Repeat("s", 128), false},
		{strings.Repeat("s", 129), true},
	}
	for _, tt := range tests {
		if err := ValidateSession(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSession(%q) error=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidatePageURL(t *testing.T) {
	tests := []struct {
		url          string
		blockPrivate bool
		want         error
		wantErr      bool
	}{
		{"https://example.com/login", true, nil, false},
		{"http://127.0.0.1:8080/", false, nil, false},
		{"http://127.0.0.1:8080/", true, ErrPrivateAddress, true},
		{"http://10.1.2.3/", true, ErrPrivateAddress, true},
		{"http://[::1]/", true, ErrPrivateAddress, true},
		{"file:///tmp/page.html", false, nil, false},
		{"file:///tmp/page.html", true, ErrPrivateAddress, true},
		{"javascript:alert(1)", false, ErrScheme, true},
		{"ftp://example.com/", false, ErrScheme, true},
		{"http:///nohost", false, nil, true},
	}
	for _, tt := range tests {
		err := ValidatePageURL(tt.url, tt.blockPrivate)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePageURL(%q, %v) error=%v, wantErr=%v", tt.url, tt.blockPrivate, err, tt.wantErr)
			continue
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("ValidatePageURL(%q): got %v, want %v", tt.url, err, tt.want)
		}
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("<p>ok</p>"), 9)
	if err != nil || string(data) != "<p>ok</p>" {
		t.Fatalf("at limit: %q, %v", data, err)
	}
	if _, err := ReadLimited(strings.NewReader("<p>ok</p>!"), 9); !errors.Is(err, ErrTooLarge) {
		t.Errorf("over limit: %v", err)
	}
}

func TestIsPrivateIP(t *testing.T) {
	for _, s := range []string{"127.0.0.1", "10.0.0.1", "172.31.255.255", "192.168.0.10", "169.254.1.1", "::1", "fd00::1", "0.0.0.0"} {
		if !isPrivateIP(net.ParseIP(s)) {
			t.Errorf("%s should be private", s)
		}
	}
	for _, s := range []string{"8.8.8.8", "172.32.0.1", "2001:4860:4860::8888"} {
		if isPrivateIP(net.ParseIP(s)) {
			t.Errorf("%s should be public", s)
		}
	}
}
