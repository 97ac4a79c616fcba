package roddom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/selkit/dom"
	"github.com/hazyhaar/selkit/locator"
	"github.com/hazyhaar/selkit/safe"
)

// Config configures Open.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local headless Chrome.
	RemoteURL string

	// NavigateTimeout bounds navigation and load. Default: 30s.
	NavigateTimeout time.Duration

	// Stealth applies go-rod/stealth evasions to the page.
	Stealth bool

	// BlockPrivate refuses pages on private, loopback or file URLs.
	BlockPrivate bool

	Logger *slog.Logger
}

// DefaultConfig returns a headless, stealth configuration.
func DefaultConfig() Config {
	return Config{Stealth: true}
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session is one browser with one page loaded.
type Session struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	logger  *slog.Logger
}

// Open starts or connects to Chrome, opens a page and loads pageURL.
func Open(ctx context.Context, pageURL string, cfg Config) (*Session, error) {
	cfg.defaults()
	if err := safe.ValidatePageURL(pageURL, cfg.BlockPrivate); err != nil {
		return nil, fmt.Errorf("roddom: open: %w", err)
	}
	log := cfg.Logger
	s := &Session{logger: log}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("roddom: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		log.Info("roddom: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("roddom: connect: %w", err)
	}
	s.browser = b

	var err error
	if cfg.Stealth {
		s.page, err = stealth.Page(b)
	} else {
		s.page, err = b.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("roddom: create page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.NavigateTimeout)
	defer cancel()
	if err := s.page.Context(navCtx).Navigate(pageURL); err != nil {
		s.Close()
		return nil, fmt.Errorf("roddom: navigate %s: %w", pageURL, err)
	}
	if err := s.page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("roddom: wait load timeout", "url", pageURL, "error", err)
	}
	return s, nil
}

// Page returns the loaded page.
func (s *Session) Page() *rod.Page { return s.page }

// Resolve finds the single element target names. Target may be CSS or
// XPath.
func (s *Session) Resolve(target string) (dom.Element, error) {
	var (
		found []dom.Element
		err   error
	)
	if locator.LooksLikeXPath(target) {
		var els rod.Elements
		if els, err = s.page.ElementsX(target); err == nil {
			for _, el := range els {
				found = append(found, Wrap(el, s.logger))
			}
		}
	} else {
		found, err = Query(s.page, target, s.logger)
	}
	if err != nil {
		return nil, fmt.Errorf("roddom: resolve %q: %w", target, err)
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("roddom: resolve %q: %d matches, want 1", target, len(found))
	}
	return found[0], nil
}

// Close closes the page, the browser connection and any launched Chrome.
func (s *Session) Close() error {
	var first error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			first = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.lnch != nil {
		s.lnch.Kill()
	}
	return first
}
