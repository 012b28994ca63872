package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/browser"
)

// fakeTarget records interaction calls and optionally fails a named method.
type fakeTarget struct {
	calls  []string
	failOn string
}

func (t *fakeTarget) call(name, detail string) error {
	t.calls = append(t.calls, name+":"+detail)
	if t.failOn == name {
		return fmt.Errorf("forced %s failure", name)
	}
	return nil
}

func (t *fakeTarget) WaitSelector(ctx context.Context, selector, state string) error {
	return t.call("waitSelector", selector+"/"+state)
}

func (t *fakeTarget) Click(ctx context.Context, selector string) error {
	return t.call("click", selector)
}

func (t *fakeTarget) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	return t.call("type", selector+"/"+text)
}

func (t *fakeTarget) Fill(ctx context.Context, selector, value string) error {
	return t.call("fill", selector+"/"+value)
}

func (t *fakeTarget) Press(ctx context.Context, key string) error {
	return t.call("press", key)
}

// fakeFrame is a frame handle with fixed URL and name.
type fakeFrame struct {
	fakeTarget
	url  string
	name string
}

func (f *fakeFrame) URL() string  { return f.url }
func (f *fakeFrame) Name() string { return f.name }

// fakePage serves a single canned network request and a fixed frame set.
type fakePage struct {
	fakeTarget
	frames    []browser.Frame
	framesErr error
	request   *browser.Request
}

func (p *fakePage) Navigate(ctx context.Context, url string, opts browser.NavigateOptions) error {
	return p.call("navigate", url)
}

func (p *fakePage) Frames(ctx context.Context) ([]browser.Frame, error) {
	return p.frames, p.framesErr
}

func (p *fakePage) WaitRequest(ctx context.Context, match browser.RequestMatch) (*browser.Request, error) {
	if p.request != nil && match.Matches(p.request) {
		return p.request, nil
	}
	<-ctx.Done()
	return nil, browser.ErrRequestWaitTimeout
}

func (p *fakePage) Screenshot(ctx context.Context, opts browser.ScreenshotOptions) ([]byte, error) {
	return []byte("png"), nil
}

func (p *fakePage) PDF(ctx context.Context, opts browser.PDFOptions) ([]byte, error) {
	return []byte("pdf"), nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return "<html></html>", nil
}

func (p *fakePage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	return nil, nil
}

func (p *fakePage) ElementExists(ctx context.Context, selector string) (bool, error) {
	return false, nil
}

func (p *fakePage) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	return nil
}

func (p *fakePage) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	return nil, nil
}

func (p *fakePage) Close() error { return nil }
