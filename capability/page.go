package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/browser"
	"github.com/hairizuan-noorazman/browser-automation/internal/coerce"
)

const defaultRequestTimeout = 30 * time.Second

// openPage acquires an isolated page, primes cookies, navigates and optionally
// waits for a selector. The returned context carries the request's resolved
// timeout; the returned release func closes the page and must be called on
// every exit path.
func (s *Service) openPage(ctx context.Context, opts PageOptions) (browser.Page, context.Context, func(), error) {
	if opts.URL == "" {
		return nil, nil, nil, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	// An explicit 0 or negative timeout means "use the default", not an
	// already-expired deadline.
	timeout := coerce.DurationMsOr(opts.Timeout, defaultRequestTimeout)
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)

	page, err := s.engine.NewPage(reqCtx)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	release := func() {
		page.Close()
		cancel()
	}

	if len(opts.Cookies) > 0 {
		if err := page.SetCookies(reqCtx, opts.Cookies); err != nil {
			release()
			return nil, nil, nil, fmt.Errorf("failed to set cookies: %w", err)
		}
	}

	if err := page.Navigate(reqCtx, opts.URL, browser.NavigateOptions{WaitUntil: opts.WaitUntil}); err != nil {
		release()
		return nil, nil, nil, fmt.Errorf("navigation failed: %w", err)
	}

	if opts.WaitForSelector != "" {
		if err := page.WaitSelector(reqCtx, opts.WaitForSelector, "visible"); err != nil {
			release()
			return nil, nil, nil, fmt.Errorf("waitForSelector failed: %w", err)
		}
	}

	return page, reqCtx, release, nil
}

// settle sleeps for the request's delayMs (waitAfter is an alias), bounded by
// the context deadline.
func settle(ctx context.Context, delayMs, waitAfter interface{}) {
	delay := coerce.DurationMsOr(delayMs, 0)
	if delay == 0 {
		delay = coerce.DurationMsOr(waitAfter, 0)
	}
	if delay <= 0 {
		return
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// scrollWarmUp scrolls the page down in steps to trigger lazy-loaded content,
// then returns to the top. Scroll failures are not fatal to the capture.
func (s *Service) scrollWarmUp(ctx context.Context, page browser.Page, steps int, stepDelay time.Duration) {
	for i := 0; i < steps; i++ {
		if _, err := page.Evaluate(ctx, "window.scrollBy(0, window.innerHeight)"); err != nil {
			s.logger.Debug(ctx, "scroll warm-up aborted", map[string]interface{}{
				"error": err.Error(),
				"step":  i,
			})
			return
		}
		select {
		case <-time.After(stepDelay):
		case <-ctx.Done():
			return
		}
	}

	if _, err := page.Evaluate(ctx, "window.scrollTo(0, 0)"); err != nil {
		s.logger.Debug(ctx, "scroll reset failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
