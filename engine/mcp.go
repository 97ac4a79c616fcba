package engine

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/selkit/kit"
)

var str = map[string]any{"type": "string"}

func strDesc(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strEnum(desc string, vals ...any) map[string]any {
	return map[string]any{"type": "string", "description": desc, "enum": vals}
}

// RegisterMCP registers the selkit tools on srv.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	eps := e.endpoints()

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "selkit_xpath_to_css",
		Description: "Convert an XPath locator to an equivalent CSS selector. Fails with the untranslatable fragment when the XPath uses features CSS cannot express.",
		InputSchema: kit.InputSchema(map[string]any{
			"xpath": strDesc("XPath expression, e.g. //div[@id='main']/a"),
		}, "xpath"),
	}, eps["xpath_to_css"], kit.DecodeArgs[xpathToCSSRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "selkit_css_to_xpath",
		Description: "Convert a CSS selector to XPath.",
		InputSchema: kit.InputSchema(map[string]any{
			"css":     strDesc("CSS selector, e.g. div.card > a[href]"),
			"dialect": strEnum("Output flavour (default compact)", string(DialectCompact), string(DialectGeneric)),
		}, "css"),
	}, eps["css_to_xpath"], kit.DecodeArgs[cssToXPathRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "selkit_convert",
		Description: "Convert a locator to the other grammar. The kind is detected from the locator unless given.",
		InputSchema: kit.InputSchema(map[string]any{
			"locator": str,
			"kind":    strEnum("Grammar of the input locator", "css", "xpath"),
		}, "locator"),
	}, eps["convert"], kit.DecodeArgs[convertRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "selkit_synthesize",
		Description: "Synthesize a short, stable CSS selector for the single element that target matches in the given HTML document.",
		InputSchema: kit.InputSchema(map[string]any{
			"html":   strDesc("Full HTML document"),
			"target": strDesc("CSS or XPath locator matching exactly one element"),
		}, "html", "target"),
	}, eps["synthesize"], kit.DecodeArgs[synthesizeRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "selkit_record",
		Description: "Record a user action. Give html and target to synthesize the selector, or a ready selector.",
		InputSchema: kit.InputSchema(map[string]any{
			"session":  str,
			"kind":     strEnum("Action kind", "click", "input", "select", "hover", "assert"),
			"html":     str,
			"target":   str,
			"selector": str,
			"value":    strDesc("Typed text, chosen option or expected text"),
			"url":      str,
		}, "session", "kind"),
	}, eps["record"], kit.DecodeArgs[recordRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "selkit_actions",
		Description: "List the recorded actions of a session in order.",
		InputSchema: kit.InputSchema(map[string]any{"session": str}, "session"),
	}, eps["actions"], kit.DecodeArgs[sessionRequest]())
}
