package locator

import (
	"errors"
	"fmt"
)

// ErrUnsupportedXPath is wrapped by every UnsupportedXPathError.
var ErrUnsupportedXPath = errors.New("locator: unsupported xpath")

// ErrUnsupportedCSS is wrapped by every UnsupportedCSSError.
var ErrUnsupportedCSS = errors.New("locator: unsupported css")

// ErrKindMismatch is returned when a locator string does not match its declared kind.
var ErrKindMismatch = errors.New("locator: kind does not match locator grammar")

// UnsupportedXPathError reports an XPath expression that falls outside the
// translatable subset. Fragment is the unconsumed remainder at the point
// parsing stopped.
type UnsupportedXPathError struct {
	Input    string
	Fragment string
}

func (e *UnsupportedXPathError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("unsupported xpath %q", e.Input)
	}
	return fmt.Sprintf("unsupported xpath %q at %q", e.Input, e.Fragment)
}

func (e *UnsupportedXPathError) Unwrap() error { return ErrUnsupportedXPath }

// UnsupportedCSSError reports a CSS selector the XPath translator cannot
// express, typically a pseudo-class outside the supported set.
type UnsupportedCSSError struct {
	Input    string
	Fragment string
}

func (e *UnsupportedCSSError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("unsupported css %q", e.Input)
	}
	return fmt.Sprintf("unsupported css %q at %q", e.Input, e.Fragment)
}

func (e *UnsupportedCSSError) Unwrap() error { return ErrUnsupportedCSS }

// FragmentOf extracts the untranslatable fragment from err, if it carries one.
func FragmentOf(err error) (string, bool) {
	var xe *UnsupportedXPathError
	if errors.As(err, &xe) {
		return xe.Fragment, true
	}
	var ce *UnsupportedCSSError
	if errors.As(err, &ce) {
		return ce.Fragment, true
	}
	return "", false
}
