package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/hairizuan-noorazman/browser-automation/logger"
)

// Config holds browser engine configuration.
type Config struct {
	// RemoteURL is a CDP WebSocket endpoint for connecting to an already
	// running Chrome. If empty, a local instance is launched.
	RemoteURL string

	// Headless controls whether a locally launched Chrome runs headless.
	Headless bool

	// LaunchTimeout bounds the initial browser startup.
	LaunchTimeout time.Duration
}

// Engine is the process-wide browser handle. The underlying Chrome is launched
// lazily on first use; concurrent first callers all wait on the same in-flight
// launch. Close must be called on shutdown.
type Engine struct {
	cfg    Config
	logger logger.Logger

	startMu  sync.Mutex
	started  bool
	launchFn func(ctx context.Context) error

	mu            sync.Mutex
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewEngine creates an engine. No browser process is started until the first
// NewPage call.
func NewEngine(cfg Config, log logger.Logger) *Engine {
	if cfg.LaunchTimeout <= 0 {
		cfg.LaunchTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	e := &Engine{cfg: cfg, logger: log}
	e.launchFn = e.launch
	return e
}

// start launches the browser on first use. Concurrent callers serialize on
// startMu, so only one launch is ever in flight and the rest wait on its
// outcome. A failed launch is not memoized: the next caller retries, so a
// transient startup failure (remote CDP endpoint briefly down) does not brick
// the engine for the life of the process.
func (e *Engine) start(ctx context.Context) error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.started {
		return nil
	}
	if err := e.launchFn(ctx); err != nil {
		return err
	}
	e.started = true
	return nil
}

func (e *Engine) launch(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	var allocCtx context.Context
	if e.cfg.RemoteURL != "" {
		allocCtx, e.allocCancel = chromedp.NewRemoteAllocator(
			context.Background(), e.cfg.RemoteURL,
		)
		e.logger.Info(ctx, "connecting to remote browser", map[string]interface{}{
			"url": e.cfg.RemoteURL,
		})
	} else {
		// Copy default options to avoid mutating the package-level slice.
		opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
		copy(opts, chromedp.DefaultExecAllocatorOptions[:])
		opts = append(opts,
			chromedp.Flag("headless", e.cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1280, 720),
		)
		allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		e.logger.Info(ctx, "launching local browser", map[string]interface{}{
			"headless": e.cfg.Headless,
		})
	}

	e.browserCtx, e.browserCancel = chromedp.NewContext(allocCtx)

	// Start the browser by running an empty action. The browser context must
	// not be wrapped in a timeout context: chromedp binds the CDP session to
	// the context passed to the first Run, and canceling a derived context
	// would kill the session.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(e.browserCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			e.teardownLocked()
			return fmt.Errorf("start browser: %w", err)
		}
	case <-time.After(e.cfg.LaunchTimeout):
		e.teardownLocked()
		return fmt.Errorf("start browser: timed out after %v", e.cfg.LaunchTimeout)
	}

	e.logger.Info(ctx, "browser started", nil)
	return nil
}

// NewPage creates an isolated browsing session: a fresh CDP browser context
// (own cookies and storage) with a single tab attached. The caller owns the
// page and must Close it.
func (e *Engine) NewPage(ctx context.Context) (Page, error) {
	if err := e.start(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	browserCtx := e.browserCtx
	e.mu.Unlock()

	// Create the isolated browser context and a blank tab inside it. Both CDP
	// calls run against the browser-level session.
	var bctxID cdp.BrowserContextID
	var targetID target.ID
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(actx context.Context) error {
		id, err := target.CreateBrowserContext().
			WithDisposeOnDetach(true).
			Do(actx)
		if err != nil {
			return fmt.Errorf("create browser context: %w", err)
		}
		bctxID = id

		tid, err := target.CreateTarget("about:blank").
			WithBrowserContextID(id).
			Do(actx)
		if err != nil {
			return fmt.Errorf("create target: %w", err)
		}
		targetID = tid
		return nil
	}))
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(targetID))

	p := &chromePage{
		engine:     e,
		ctx:        tabCtx,
		cancel:     tabCancel,
		browserCtx: browserCtx,
		contextID:  bctxID,
		inflight:   make(map[network.RequestID]struct{}),
		subs:       make(map[int]chan *Request),
	}
	chromedp.ListenTarget(tabCtx, p.onEvent)

	// Attach and enable the domains the page relies on. Network events back
	// WaitRequest and the networkidle heuristic; DOM backs frame targeting.
	if err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(actx context.Context) error {
		if err := network.Enable().Do(actx); err != nil {
			return err
		}
		return dom.Enable().Do(actx)
	})); err != nil {
		p.Close()
		return nil, fmt.Errorf("attach page: %w", err)
	}

	e.logger.Debug(ctx, "page created", map[string]interface{}{
		"target_id": string(targetID),
	})
	return p, nil
}

// Close shuts down the shared browser. Pending pages are not awaited;
// cancellation tears their sessions down best-effort.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.teardownLocked()
	e.logger.Info(context.Background(), "browser engine closed", nil)
	return nil
}

func (e *Engine) teardownLocked() {
	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
}
