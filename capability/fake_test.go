package capability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-automation/browser"
	"github.com/hairizuan-noorazman/browser-automation/runlog"
	"github.com/hairizuan-noorazman/browser-automation/script"
)

// fakeEngine hands out a single prepared page.
type fakeEngine struct {
	page     *fakePage
	err      error
	newCalls int
}

func (e *fakeEngine) NewPage(ctx context.Context) (browser.Page, error) {
	e.newCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.page, nil
}

// fakePage records interactions and serves canned capture results.
type fakePage struct {
	navigatedURL string
	waitUntil    string
	setCookies   []browser.Cookie
	calls        []string
	closed       int

	screenshotOpts browser.ScreenshotOptions
	pdfOpts        browser.PDFOptions
	evaluated      []string
	evalResult     interface{}
	htmlResult     string
	exists         bool
	cookies        []browser.Cookie
	failNavigate   error
}

func newPageEngine() (*fakeEngine, *fakePage) {
	page := &fakePage{htmlResult: "<html><body>ok</body></html>"}
	return &fakeEngine{page: page}, page
}

func (p *fakePage) WaitSelector(ctx context.Context, selector, state string) error {
	p.calls = append(p.calls, "waitSelector:"+selector)
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.calls = append(p.calls, "click:"+selector)
	return nil
}

func (p *fakePage) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	p.calls = append(p.calls, "type:"+selector)
	return nil
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.calls = append(p.calls, "fill:"+selector)
	return nil
}

func (p *fakePage) Press(ctx context.Context, key string) error {
	p.calls = append(p.calls, "press:"+key)
	return nil
}

func (p *fakePage) Navigate(ctx context.Context, url string, opts browser.NavigateOptions) error {
	p.navigatedURL = url
	p.waitUntil = opts.WaitUntil
	return p.failNavigate
}

func (p *fakePage) Frames(ctx context.Context) ([]browser.Frame, error) {
	return nil, nil
}

func (p *fakePage) WaitRequest(ctx context.Context, match browser.RequestMatch) (*browser.Request, error) {
	<-ctx.Done()
	return nil, browser.ErrRequestWaitTimeout
}

func (p *fakePage) Screenshot(ctx context.Context, opts browser.ScreenshotOptions) ([]byte, error) {
	p.screenshotOpts = opts
	return []byte("png-bytes"), nil
}

func (p *fakePage) PDF(ctx context.Context, opts browser.PDFOptions) ([]byte, error) {
	p.pdfOpts = opts
	return []byte("pdf-bytes"), nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return p.htmlResult, nil
}

func (p *fakePage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	p.evaluated = append(p.evaluated, expression)
	return p.evalResult, nil
}

func (p *fakePage) ElementExists(ctx context.Context, selector string) (bool, error) {
	return p.exists, nil
}

func (p *fakePage) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	p.setCookies = append(p.setCookies, cookies...)
	return nil
}

func (p *fakePage) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	return p.cookies, nil
}

func (p *fakePage) Close() error {
	p.closed++
	return nil
}

// fakeScriptStore serves scripts from a map.
type fakeScriptStore struct {
	scripts map[string]*script.Script
}

func (s *fakeScriptStore) Create(ctx context.Context, sc *script.Script) error { return nil }

func (s *fakeScriptStore) GetByKey(ctx context.Context, key string) (*script.Script, error) {
	sc, ok := s.scripts[key]
	if !ok {
		return nil, script.ErrScriptNotFound
	}
	return sc, nil
}

func (s *fakeScriptStore) Update(ctx context.Context, key string, setters ...script.UpdateSetter) error {
	return nil
}

func (s *fakeScriptStore) Delete(ctx context.Context, key string) error { return nil }

func (s *fakeScriptStore) List(ctx context.Context, limit, offset int) ([]*script.Script, error) {
	return nil, nil
}

// fakeRunStore collects recorded runs in memory.
type fakeRunStore struct {
	runs []*runlog.Run
}

func (s *fakeRunStore) Create(ctx context.Context, run *runlog.Run) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *fakeRunStore) GetByID(ctx context.Context, id uuid.UUID) (*runlog.Run, error) {
	return nil, runlog.ErrRunNotFound
}

func (s *fakeRunStore) List(ctx context.Context, limit, offset int) ([]*runlog.Run, error) {
	return s.runs, nil
}
