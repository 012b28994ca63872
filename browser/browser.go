// Package browser wraps the chromedp browser engine behind a small capability
// interface. One Engine is shared process-wide; every request gets its own
// isolated Page (a dedicated CDP browser context plus tab) that must be closed
// on every exit path.
package browser

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrEngineClosed is returned when a page is requested after shutdown.
	ErrEngineClosed = errors.New("browser engine is closed")

	// ErrRequestWaitTimeout is returned when no matching network request was
	// observed before the deadline.
	ErrRequestWaitTimeout = errors.New("timed out waiting for matching request")
)

// Target is something a step can act on: the page itself or one of its frames.
type Target interface {
	// WaitSelector blocks until an element matching selector reaches the given
	// state: "visible" (default), "hidden" or "attached".
	WaitSelector(ctx context.Context, selector, state string) error

	// Click waits for the element to become visible and clicks it.
	Click(ctx context.Context, selector string) error

	// Type focuses the element and types text. A positive delay inserts a pause
	// between keystrokes.
	Type(ctx context.Context, selector, text string, delay time.Duration) error

	// Fill sets the element's value directly without synthesizing keystrokes.
	Fill(ctx context.Context, selector, value string) error

	// Press sends a single key (named like "Enter", "Tab", "Escape") to the
	// focused element.
	Press(ctx context.Context, key string) error
}

// Frame is a child frame of a page. Frame identity is resolved live on each
// call; a frame handle stays valid as long as the frame is attached.
type Frame interface {
	Target

	// URL returns the frame's document URL at the time the frame set was listed.
	URL() string

	// Name returns the frame's name attribute, possibly empty.
	Name() string
}

// Page is one isolated browsing session. All methods honor the deadline of the
// passed context.
type Page interface {
	Target

	// Navigate loads a URL and waits according to opts.WaitUntil.
	Navigate(ctx context.Context, url string, opts NavigateOptions) error

	// Frames lists the page's current live child frames.
	Frames(ctx context.Context) ([]Frame, error)

	// WaitRequest blocks until the page issues a network request satisfying
	// match, and returns its captured snapshot. Only requests issued after the
	// call are considered.
	WaitRequest(ctx context.Context, match RequestMatch) (*Request, error)

	// Screenshot captures the page as a PNG.
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)

	// PDF renders the page as a PDF document.
	PDF(ctx context.Context, opts PDFOptions) ([]byte, error)

	// HTML returns the serialized document markup.
	HTML(ctx context.Context) (string, error)

	// Evaluate runs a JavaScript expression in the page and returns its value.
	Evaluate(ctx context.Context, expression string) (interface{}, error)

	// ElementExists reports whether any element matches the selector right now,
	// without waiting.
	ElementExists(ctx context.Context, selector string) (bool, error)

	// SetCookies installs cookies into the page's browser context.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// Cookies returns all cookies visible to the page's browser context.
	Cookies(ctx context.Context) ([]Cookie, error)

	// Close releases the tab and its browser context. Safe to call more than
	// once; close errors are best-effort and ignored.
	Close() error
}

// NavigateOptions controls how long navigation blocks.
type NavigateOptions struct {
	// WaitUntil is one of "load" (default), "domcontentloaded", "networkidle".
	WaitUntil string
}

// Clip is a rectangular capture region in CSS pixels.
type Clip struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenshotOptions controls screenshot capture.
type ScreenshotOptions struct {
	Width    int64
	Height   int64
	Scale    float64
	FullPage bool
	Clip     *Clip
}

// PDFOptions controls PDF rendering. Zero values defer to Chrome defaults.
type PDFOptions struct {
	Landscape       bool
	PrintBackground bool
	Scale           float64
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	PageRanges      string
}

// Cookie is a browser cookie in loosely the CDP shape.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	URL      string  `json:"url,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
}

// Request is the captured snapshot of an observed outbound network request.
// Immutable once captured.
type Request struct {
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	PostData   string            `json:"postData,omitempty"`
	CapturedAt time.Time         `json:"capturedAt"`
}

// Header returns the value of a header by case-insensitive name.
func (r *Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// RequestMatch selects network requests. URLIncludesAny is OR'ed; Method, when
// set, must match case-insensitively.
type RequestMatch struct {
	URLIncludesAny []string
	Method         string
}

// Matches reports whether the request satisfies all criteria.
func (m RequestMatch) Matches(r *Request) bool {
	found := false
	for _, needle := range m.URLIncludesAny {
		if needle != "" && strings.Contains(r.URL, needle) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if m.Method != "" && !strings.EqualFold(m.Method, r.Method) {
		return false
	}
	return true
}
