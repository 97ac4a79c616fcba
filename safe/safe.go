// Package safe checks the untrusted inputs selkit accepts: recorder
// session names, page URLs handed to the browser, and HTML read from files
// or request bodies.
package safe

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// MaxDocument caps an HTML document read by ReadLimited callers (32 MiB).
const MaxDocument int64 = 32 << 20

var (
	// ErrPrivateAddress is returned when a URL targets a private or
	// loopback address and such targets are blocked.
	ErrPrivateAddress = errors.New("safe: URL targets a private or loopback address")

	// ErrScheme is returned for page URLs that are not http, https or file.
	ErrScheme = errors.New("safe: only http, https and file URLs can be opened")

	// ErrTooLarge is returned by ReadLimited past its cap.
	ErrTooLarge = errors.New("safe: input too large")
)

// ValidateSession accepts 1 to 128 characters of [A-Za-z0-9_.-], so a
// session name is usable as a URL path segment.
func ValidateSession(s string) error {
	if s == "" {
		return fmt.Errorf("safe: session must not be empty")
	}
	if len(s) > 128 {
		return fmt.Errorf("safe: session longer than 128 bytes")
	}
	for _, r := range s {
		if !isIdentChar(r) {
			return fmt.Errorf("safe: invalid character %q in session", r)
		}
	}
	return nil
}

// ValidatePageURL checks a URL before a browser navigates to it. With
// blockPrivate, hosts that are or resolve to private, loopback or
// link-local addresses are refused.
func ValidatePageURL(rawURL string, blockPrivate bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("safe: invalid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		if blockPrivate {
			return ErrPrivateAddress
		}
		return nil
	case "http", "https":
	default:
		return ErrScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("safe: URL has no host")
	}
	if !blockPrivate {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrPrivateAddress
		}
		return nil
	}
	addrs, err := net.LookupHost(host)
	if err != nil {
		// Unresolvable hosts fail at navigation.
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isPrivateIP(ip) {
			return ErrPrivateAddress
		}
	}
	return nil
}

// ReadLimited reads r whole, failing with ErrTooLarge past maxBytes.
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

func isIdentChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
}

var privateNets = func() []*net.IPNet {
	var out []*net.IPNet
	for _, s := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7", "100.64.0.0/10"} {
		_, n, _ := net.ParseCIDR(s)
		out = append(out, n)
	}
	return out
}()

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
