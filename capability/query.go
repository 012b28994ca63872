package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/internal/coerce"
)

// Scrape navigates to the requested URL and evaluates caller-supplied
// JavaScript in the page, returning its value. Without an evaluate expression
// the full document markup is returned instead.
func (s *Service) Scrape(ctx context.Context, req ScrapeRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "scrape", req.URL, start, "", err) }()

	page, reqCtx, release, err := s.openPage(ctx, req.PageOptions)
	if err != nil {
		return nil, err
	}
	defer release()

	var value interface{}
	if req.Evaluate != "" {
		value, err = page.Evaluate(reqCtx, req.Evaluate)
		if err != nil {
			return nil, fmt.Errorf("evaluate failed: %w", err)
		}
	} else {
		value, err = page.HTML(reqCtx)
		if err != nil {
			return nil, err
		}
	}

	if coerce.BoolOr(req.AsBase64, false) {
		if text, ok := value.(string); ok {
			return base64Result("text/plain", []byte(text)), nil
		}
	}

	return &Result{
		JSON: map[string]interface{}{
			"ok":     true,
			"result": value,
		},
	}, nil
}

// HTML navigates to the requested URL and returns the serialized document.
func (s *Service) HTML(ctx context.Context, req HTMLRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "html", req.URL, start, "", err) }()

	page, reqCtx, release, err := s.openPage(ctx, req.PageOptions)
	if err != nil {
		return nil, err
	}
	defer release()

	markup, err := page.HTML(reqCtx)
	if err != nil {
		return nil, err
	}

	if coerce.BoolOr(req.AsBase64, false) {
		return base64Result("text/html", []byte(markup)), nil
	}

	return &Result{
		JSON: map[string]interface{}{
			"ok":   true,
			"html": markup,
		},
	}, nil
}

// ElementExists reports whether the selector matches anything on the page
// right now, without waiting for it to appear.
func (s *Service) ElementExists(ctx context.Context, req ElementExistsRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "element-exists", req.URL, start, "", err) }()

	if req.Selector == "" {
		return nil, fmt.Errorf("%w: selector is required", ErrInvalidRequest)
	}

	page, reqCtx, release, err := s.openPage(ctx, req.PageOptions)
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := page.ElementExists(reqCtx, req.Selector)
	if err != nil {
		return nil, err
	}

	return &Result{
		JSON: map[string]interface{}{
			"ok":     true,
			"exists": exists,
		},
	}, nil
}

// Cookies installs the supplied cookies into a fresh browsing context scoped
// to the URL and returns the context's resulting cookie set.
func (s *Service) Cookies(ctx context.Context, req CookiesRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "cookies", req.URL, start, "", err) }()

	page, reqCtx, release, err := s.openPage(ctx, PageOptions{URL: req.URL, Cookies: req.Cookies})
	if err != nil {
		return nil, err
	}
	defer release()

	cookies, err := page.Cookies(reqCtx)
	if err != nil {
		return nil, err
	}

	return &Result{
		JSON: map[string]interface{}{
			"ok":      true,
			"cookies": cookies,
		},
	}, nil
}
