// Command selkit converts locators between CSS and XPath, synthesizes
// selectors for elements of a page, and serves both over HTTP and MCP.
//
// Usage:
//
//	selkit -xpath "//div[@id='main']/a"          # print the CSS form
//	selkit -css "div.card > a"                    # print the XPath form
//	selkit -html page.html -target "//form/input" # synthesize offline
//	selkit -url https://example.com -target h1    # synthesize in a browser
//	selkit -serve 127.0.0.1:8088                  # HTTP API + MCP at /mcp
//	selkit -mcp-stdio                             # MCP over stdin/stdout
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/selkit/dom"
	"github.com/hazyhaar/selkit/dom/htmldom"
	"github.com/hazyhaar/selkit/dom/roddom"
	"github.com/hazyhaar/selkit/engine"
	"github.com/hazyhaar/selkit/recorder"
	"github.com/hazyhaar/selkit/safe"
)

var version = "dev"

type options struct {
	xpath, css, dialect string
	htmlFile, url       string
	target              string
	remote              string
	blockPrivate        bool
	session, kind       string
	value               string
	serve               string
	mcpStdio            bool
}

func main() {
	var o options
	configPath := flag.String("config", "", "path to selkit.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&o.xpath, "xpath", "", "XPath locator to convert to CSS")
	flag.StringVar(&o.css, "css", "", "CSS selector to convert to XPath")
	flag.StringVar(&o.dialect, "dialect", "compact", "XPath output flavour: compact, generic")
	flag.StringVar(&o.htmlFile, "html", "", "HTML file to synthesize a selector in")
	flag.StringVar(&o.url, "url", "", "page to load in a headless browser")
	flag.StringVar(&o.target, "target", "", "CSS or XPath locator of the element (with -html or -url)")
	flag.StringVar(&o.remote, "remote", "", "DevTools URL of a running browser (with -url)")
	flag.BoolVar(&o.blockPrivate, "block-private", false, "refuse -url pages on private, loopback or file addresses")
	flag.StringVar(&o.session, "record", "", "record the targeted element as an action of this session")
	flag.StringVar(&o.kind, "kind", "click", "recorded action kind: click, input, select, hover, assert")
	flag.StringVar(&o.value, "value", "", "recorded action value")
	flag.StringVar(&o.serve, "serve", "", "serve the HTTP API and MCP on this address")
	flag.BoolVar(&o.mcpStdio, "mcp-stdio", false, "serve MCP over stdin/stdout")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, o); err != nil {
		logger.Error("selkit: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string, o options) error {
	cfg := engine.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = engine.LoadConfigFile(configPath); err != nil {
			return err
		}
	}
	cfg.Logger = logger

	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	switch {
	case o.xpath != "":
		css, err := e.XPathToCSS(o.xpath)
		if err != nil {
			return err
		}
		fmt.Println(css)
	case o.css != "":
		xpath, err := e.CSSToXPathDialect(o.css, engine.Dialect(o.dialect))
		if err != nil {
			return err
		}
		fmt.Println(xpath)
	case o.htmlFile != "":
		return runHTML(ctx, e, o)
	case o.url != "":
		return runURL(ctx, logger, e, o)
	case o.serve != "":
		return serve(ctx, logger, e, o.serve)
	case o.mcpStdio:
		return newMCPServer(e).Run(ctx, &mcp.StdioTransport{})
	default:
		fmt.Fprintln(os.Stderr, "usage: selkit -xpath X | -css C | -html FILE -target T | -url URL -target T | -serve ADDR | -mcp-stdio")
		os.Exit(2)
	}
	return nil
}

func runHTML(ctx context.Context, e *engine.Engine, o options) error {
	f, err := os.Open(o.htmlFile)
	if err != nil {
		return fmt.Errorf("read html: %w", err)
	}
	data, err := safe.ReadLimited(f, safe.MaxDocument)
	f.Close()
	if err != nil {
		return fmt.Errorf("read html %s: %w", o.htmlFile, err)
	}
	if o.session == "" {
		res, err := e.SynthesizeHTML(string(data), o.target)
		if err != nil {
			return err
		}
		return printJSON(res)
	}
	d, err := htmldom.ParseString(string(data))
	if err != nil {
		return err
	}
	el, err := engine.Resolve(d, o.target)
	if err != nil {
		return err
	}
	return record(ctx, e, o, el, "file://"+o.htmlFile)
}

func runURL(ctx context.Context, logger *slog.Logger, e *engine.Engine, o options) error {
	if o.target == "" {
		return errors.New("-url needs -target")
	}
	rc := roddom.DefaultConfig()
	rc.RemoteURL = o.remote
	rc.BlockPrivate = o.blockPrivate
	rc.Logger = logger
	s, err := roddom.Open(ctx, o.url, rc)
	if err != nil {
		return err
	}
	defer s.Close()

	el, err := s.Resolve(o.target)
	if err != nil {
		return err
	}
	if o.session != "" {
		return record(ctx, e, o, el, o.url)
	}
	return printJSON(e.Synthesize(el))
}

func record(ctx context.Context, e *engine.Engine, o options, el dom.Element, url string) error {
	a, err := e.Record(ctx, o.session, recorder.Kind(o.kind), el, o.value, url)
	if err != nil {
		return err
	}
	return printJSON(a)
}

func newMCPServer(e *engine.Engine) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "selkit", Version: version}, nil)
	e.RegisterMCP(srv)
	return srv
}

func serve(ctx context.Context, logger *slog.Logger, e *engine.Engine, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e.Routes(newMCPServer(e)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("selkit: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
