package capability

import (
	"github.com/hairizuan-noorazman/browser-automation/browser"
)

// PageOptions are the navigation fields shared by every page-backed request.
// Numeric and boolean fields are loosely typed: callers may send numbers,
// strings or booleans and they are coerced per field.
type PageOptions struct {
	URL             string           `json:"url"`
	WaitUntil       string           `json:"waitUntil,omitempty"`
	WaitForSelector string           `json:"waitForSelector,omitempty"`
	Cookies         []browser.Cookie `json:"cookies,omitempty"`
	Timeout         interface{}      `json:"timeout,omitempty"`
}

// ScreenshotRequest captures a page as a PNG.
type ScreenshotRequest struct {
	PageOptions

	Width             interface{}   `json:"width,omitempty"`
	Height            interface{}   `json:"height,omitempty"`
	DeviceScaleFactor interface{}   `json:"deviceScaleFactor,omitempty"`
	FullPage          interface{}   `json:"fullPage,omitempty"`
	Clip              *browser.Clip `json:"clip,omitempty"`

	// Scroll warm-up before capture, for pages that lazy-load below the fold.
	ScrollSteps   interface{} `json:"scrollSteps,omitempty"`
	ScrollDelayMs interface{} `json:"scrollDelayMs,omitempty"`

	// Post-navigation settle delay. waitAfter is an accepted alias of delayMs.
	DelayMs   interface{} `json:"delayMs,omitempty"`
	WaitAfter interface{} `json:"waitAfter,omitempty"`

	AsBase64 interface{} `json:"asBase64,omitempty"`
	Save     interface{} `json:"save,omitempty"`
}

// PDFRequest renders a page as a PDF document.
type PDFRequest struct {
	PageOptions

	PrintOptions map[string]interface{} `json:"printOptions,omitempty"`
	AsBase64     interface{}            `json:"asBase64,omitempty"`
	Save         interface{}            `json:"save,omitempty"`
}

// ScrapeRequest runs caller-supplied JavaScript in the page and returns its
// value. The evaluate field is executed verbatim in the page: this capability
// is for trusted callers only.
type ScrapeRequest struct {
	PageOptions

	Evaluate string      `json:"evaluate,omitempty"`
	AsBase64 interface{} `json:"asBase64,omitempty"`
}

// HTMLRequest returns the serialized document markup.
type HTMLRequest struct {
	PageOptions

	AsBase64 interface{} `json:"asBase64,omitempty"`
}

// ElementExistsRequest checks whether a selector matches without waiting.
type ElementExistsRequest struct {
	PageOptions

	Selector string `json:"selector"`
}

// ActionsRequest runs a step list against a freshly navigated page.
type ActionsRequest struct {
	PageOptions

	Actions []map[string]interface{} `json:"actions"`
}

// CookiesRequest sets cookies on a page and returns the resulting cookie set.
type CookiesRequest struct {
	URL     string           `json:"url"`
	Cookies []browser.Cookie `json:"cookies,omitempty"`
}

// ExecRequest runs a stored script by key, or, with no store configured,
// dispatches a caller-supplied type and payload directly.
type ExecRequest struct {
	Key     string                 `json:"key,omitempty"`
	Type    string                 `json:"type,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
