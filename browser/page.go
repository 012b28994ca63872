package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	cdpstorage "github.com/chromedp/cdproto/storage"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// chromePage implements Page on top of a dedicated chromedp tab context.
type chromePage struct {
	engine     *Engine
	ctx        context.Context
	cancel     context.CancelFunc
	browserCtx context.Context
	contextID  cdp.BrowserContextID

	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	subs     map[int]chan *Request
	nextSub  int
	closed   bool
}

// runCtx derives an execution context from the tab context. chromedp actions
// must run on the tab's own context; the caller's deadline is carried over.
func (p *chromePage) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(p.ctx, deadline)
	}
	return context.WithCancel(p.ctx)
}

// onEvent feeds the request subscribers and the in-flight set backing the
// networkidle wait. It must never block: subscriber channels are buffered and
// overflow is dropped.
//
// In-flight tracking is keyed by RequestID, not counted: redirect hops re-fire
// EventRequestWillBeSent with the same ID while LoadingFinished fires once, so
// a counter would never drain back to zero. data: URLs emit no LoadingFinished
// at all and are not tracked.
func (p *chromePage) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		req := snapshotRequest(e)
		p.mu.Lock()
		if !strings.HasPrefix(e.Request.URL, "data:") {
			p.inflight[e.RequestID] = struct{}{}
		}
		for _, ch := range p.subs {
			select {
			case ch <- req:
			default:
			}
		}
		p.mu.Unlock()
	case *network.EventLoadingFinished:
		p.mu.Lock()
		delete(p.inflight, e.RequestID)
		p.mu.Unlock()
	case *network.EventLoadingFailed:
		p.mu.Lock()
		delete(p.inflight, e.RequestID)
		p.mu.Unlock()
	}
}

func (p *chromePage) inflightCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}

func snapshotRequest(ev *network.EventRequestWillBeSent) *Request {
	headers := make(map[string]string, len(ev.Request.Headers))
	for k, v := range ev.Request.Headers {
		headers[k] = fmt.Sprint(v)
	}

	var postData string
	for _, entry := range ev.Request.PostDataEntries {
		if entry == nil || entry.Bytes == "" {
			continue
		}
		if decoded, err := base64.StdEncoding.DecodeString(entry.Bytes); err == nil {
			postData += string(decoded)
		} else {
			postData += entry.Bytes
		}
	}

	return &Request{
		URL:        ev.Request.URL,
		Method:     ev.Request.Method,
		Headers:    headers,
		PostData:   postData,
		CapturedAt: time.Now().UTC(),
	}
}

func (p *chromePage) subscribe(ch chan *Request) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	return id
}

func (p *chromePage) unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subs, id)
}

func (p *chromePage) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	// chromedp.Navigate blocks until the load event fires.
	if err := chromedp.Run(tctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}

	switch opts.WaitUntil {
	case "", "load", "domcontentloaded":
		return nil
	case "networkidle", "networkidle0", "networkidle2":
		return p.waitNetworkIdle(tctx)
	default:
		return nil
	}
}

// waitNetworkIdle waits for a 500ms window with no in-flight requests.
func (p *chromePage) waitNetworkIdle(ctx context.Context) error {
	const quietWindow = 500 * time.Millisecond

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	quietSince := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait network idle: %w", ctx.Err())
		case now := <-ticker.C:
			if p.inflightCount() > 0 {
				quietSince = time.Time{}
				continue
			}
			if quietSince.IsZero() {
				quietSince = now
				continue
			}
			if now.Sub(quietSince) >= quietWindow {
				return nil
			}
		}
	}
}

func (p *chromePage) WaitRequest(ctx context.Context, match RequestMatch) (*Request, error) {
	ch := make(chan *Request, 64)
	id := p.subscribe(ch)
	defer p.unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrRequestWaitTimeout, ctx.Err())
		case <-p.ctx.Done():
			return nil, fmt.Errorf("%w: page closed", ErrRequestWaitTimeout)
		case req := <-ch:
			if match.Matches(req) {
				return req, nil
			}
		}
	}
}

// waitSelector implements WaitSelector for both page and frame targets; extra
// query options scope the selector to a frame's document.
func (p *chromePage) waitSelector(ctx context.Context, selector, state string, extra ...chromedp.QueryOption) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	opts := append([]chromedp.QueryOption{chromedp.ByQuery}, extra...)

	var action chromedp.Action
	switch state {
	case "", "visible":
		action = chromedp.WaitVisible(selector, opts...)
	case "hidden":
		action = chromedp.WaitNotVisible(selector, opts...)
	case "attached":
		action = chromedp.WaitReady(selector, opts...)
	default:
		return fmt.Errorf("unknown selector state %q", state)
	}

	if err := chromedp.Run(tctx, action); err != nil {
		return fmt.Errorf("wait for selector %q (%s): %w", selector, state, err)
	}
	return nil
}

func (p *chromePage) click(ctx context.Context, selector string, extra ...chromedp.QueryOption) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	opts := append([]chromedp.QueryOption{chromedp.ByQuery}, extra...)
	if err := chromedp.Run(tctx,
		chromedp.WaitVisible(selector, opts...),
		chromedp.Click(selector, opts...),
	); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (p *chromePage) typeText(ctx context.Context, selector, text string, delay time.Duration, extra ...chromedp.QueryOption) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	opts := append([]chromedp.QueryOption{chromedp.ByQuery}, extra...)

	if delay <= 0 {
		if err := chromedp.Run(tctx,
			chromedp.WaitVisible(selector, opts...),
			chromedp.SendKeys(selector, text, opts...),
		); err != nil {
			return fmt.Errorf("type into %q: %w", selector, err)
		}
		return nil
	}

	// Keystroke pacing: focus once, then send runes one at a time.
	if err := chromedp.Run(tctx,
		chromedp.WaitVisible(selector, opts...),
		chromedp.Focus(selector, opts...),
	); err != nil {
		return fmt.Errorf("type into %q: %w", selector, err)
	}
	for _, r := range text {
		if err := chromedp.Run(tctx, chromedp.KeyEvent(string(r))); err != nil {
			return fmt.Errorf("type into %q: %w", selector, err)
		}
		select {
		case <-tctx.Done():
			return fmt.Errorf("type into %q: %w", selector, tctx.Err())
		case <-time.After(delay):
		}
	}
	return nil
}

func (p *chromePage) fill(ctx context.Context, selector, value string, extra ...chromedp.QueryOption) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	opts := append([]chromedp.QueryOption{chromedp.ByQuery}, extra...)
	if err := chromedp.Run(tctx,
		chromedp.WaitReady(selector, opts...),
		chromedp.SetValue(selector, value, opts...),
	); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// namedKeys maps DSL key names onto chromedp's key runes.
var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
}

func (p *chromePage) press(ctx context.Context, key string) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	keys, ok := namedKeys[key]
	if !ok {
		// Unrecognized names are sent literally (single characters, etc).
		keys = key
	}
	if err := chromedp.Run(tctx, chromedp.KeyEvent(keys)); err != nil {
		return fmt.Errorf("press %q: %w", key, err)
	}
	return nil
}

func (p *chromePage) WaitSelector(ctx context.Context, selector, state string) error {
	return p.waitSelector(ctx, selector, state)
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.click(ctx, selector)
}

func (p *chromePage) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	return p.typeText(ctx, selector, text, delay)
}

func (p *chromePage) Fill(ctx context.Context, selector, value string) error {
	return p.fill(ctx, selector, value)
}

func (p *chromePage) Press(ctx context.Context, key string) error {
	return p.press(ctx, key)
}

func (p *chromePage) Frames(ctx context.Context) ([]Frame, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	var tree *page.FrameTree
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(actx context.Context) error {
		var err error
		tree, err = page.GetFrameTree().Do(actx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}

	var frames []Frame
	var walk func(node *page.FrameTree)
	walk = func(node *page.FrameTree) {
		for _, child := range node.ChildFrames {
			if child.Frame != nil {
				frames = append(frames, &chromeFrame{
					page: p,
					id:   child.Frame.ID,
					url:  child.Frame.URL,
					name: child.Frame.Name,
				})
			}
			walk(child)
		}
	}
	if tree != nil {
		walk(tree)
	}
	return frames, nil
}

func (p *chromePage) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	if opts.Width > 0 && opts.Height > 0 {
		scale := opts.Scale
		if scale <= 0 {
			scale = 1
		}
		if err := chromedp.Run(tctx,
			chromedp.EmulateViewport(opts.Width, opts.Height, chromedp.EmulateScale(scale)),
		); err != nil {
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}

	var buf []byte
	var action chromedp.Action
	switch {
	case opts.Clip != nil:
		clip := opts.Clip
		action = chromedp.ActionFunc(func(actx context.Context) error {
			data, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{
					X:      clip.X,
					Y:      clip.Y,
					Width:  clip.Width,
					Height: clip.Height,
					Scale:  1,
				}).
				WithCaptureBeyondViewport(true).
				Do(actx)
			if err != nil {
				return err
			}
			buf = data
			return nil
		})
	case opts.FullPage:
		// Quality 100 selects lossless PNG in chromedp.
		action = chromedp.FullScreenshot(&buf, 100)
	default:
		action = chromedp.CaptureScreenshot(&buf)
	}

	if err := chromedp.Run(tctx, action); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

func (p *chromePage) PDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	var buf []byte
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(actx context.Context) error {
		params := page.PrintToPDF().
			WithLandscape(opts.Landscape).
			WithPrintBackground(opts.PrintBackground)
		if opts.Scale > 0 {
			params = params.WithScale(opts.Scale)
		}
		if opts.PaperWidth > 0 {
			params = params.WithPaperWidth(opts.PaperWidth)
		}
		if opts.PaperHeight > 0 {
			params = params.WithPaperHeight(opts.PaperHeight)
		}
		if opts.MarginTop > 0 {
			params = params.WithMarginTop(opts.MarginTop)
		}
		if opts.MarginBottom > 0 {
			params = params.WithMarginBottom(opts.MarginBottom)
		}
		if opts.MarginLeft > 0 {
			params = params.WithMarginLeft(opts.MarginLeft)
		}
		if opts.MarginRight > 0 {
			params = params.WithMarginRight(opts.MarginRight)
		}
		if opts.PageRanges != "" {
			params = params.WithPageRanges(opts.PageRanges)
		}

		data, _, err := params.Do(actx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return buf, nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(tctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("get html: %w", err)
	}
	return html, nil
}

func (p *chromePage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	var result interface{}
	err := chromedp.Run(tctx, chromedp.Evaluate(expression, &result,
		func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
			return params.WithAwaitPromise(true).WithReturnByValue(true)
		},
	))
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return result, nil
}

func (p *chromePage) ElementExists(ctx context.Context, selector string) (bool, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(tctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return len(nodes) > 0, nil
}

func (p *chromePage) SetCookies(ctx context.Context, cookies []Cookie) error {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	return chromedp.Run(tctx, chromedp.ActionFunc(func(actx context.Context) error {
		for _, c := range cookies {
			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.URL != "" {
				params = params.WithURL(c.URL)
			}
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				params = params.WithExpires(&expires)
			}
			if err := params.Do(actx); err != nil {
				return fmt.Errorf("set cookie %q: %w", c.Name, err)
			}
		}
		return nil
	}))
}

func (p *chromePage) Cookies(ctx context.Context) ([]Cookie, error) {
	tctx, cancel := p.runCtx(ctx)
	defer cancel()

	var raw []*network.Cookie
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(actx context.Context) error {
		var err error
		raw, err = cdpstorage.GetCookies().WithBrowserContextID(p.contextID).Do(actx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			Expires:  c.Expires,
		})
	}
	return cookies, nil
}

// Close cancels the tab and disposes its browser context. Dispose failures are
// ignored; the browser reaps orphaned contexts on detach.
func (p *chromePage) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()

	disposeCtx, cancel := context.WithTimeout(p.browserCtx, 5*time.Second)
	defer cancel()
	_ = chromedp.Run(disposeCtx, chromedp.ActionFunc(func(actx context.Context) error {
		return target.DisposeBrowserContext(p.contextID).Do(actx)
	}))
	return nil
}

// chromeFrame targets a child frame. Selector-based operations are scoped to
// the frame's document through its iframe owner node; key presses go to the
// page-level focused element.
type chromeFrame struct {
	page *chromePage
	id   cdp.FrameID
	url  string
	name string
}

func (f *chromeFrame) URL() string  { return f.url }
func (f *chromeFrame) Name() string { return f.name }

// frameOpts resolves the iframe's owner node so chromedp queries search inside
// the frame's content document.
func (f *chromeFrame) frameOpts(ctx context.Context) ([]chromedp.QueryOption, error) {
	tctx, cancel := f.page.runCtx(ctx)
	defer cancel()

	var nodeID cdp.NodeID
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(actx context.Context) error {
		var err error
		_, nodeID, err = dom.GetFrameOwner(f.id).Do(actx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("resolve frame owner: %w", err)
	}
	return []chromedp.QueryOption{chromedp.FromNode(&cdp.Node{NodeID: nodeID})}, nil
}

func (f *chromeFrame) WaitSelector(ctx context.Context, selector, state string) error {
	opts, err := f.frameOpts(ctx)
	if err != nil {
		return err
	}
	return f.page.waitSelector(ctx, selector, state, opts...)
}

func (f *chromeFrame) Click(ctx context.Context, selector string) error {
	opts, err := f.frameOpts(ctx)
	if err != nil {
		return err
	}
	return f.page.click(ctx, selector, opts...)
}

func (f *chromeFrame) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	opts, err := f.frameOpts(ctx)
	if err != nil {
		return err
	}
	return f.page.typeText(ctx, selector, text, delay, opts...)
}

func (f *chromeFrame) Fill(ctx context.Context, selector, value string) error {
	opts, err := f.frameOpts(ctx)
	if err != nil {
		return err
	}
	return f.page.fill(ctx, selector, value, opts...)
}

func (f *chromeFrame) Press(ctx context.Context, key string) error {
	return f.page.press(ctx, key)
}
