package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/browser"
	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/webhook"
)

// Bounds applied to the run-level timeout when a step carries no override.
const (
	minStepTimeout = time.Second
	maxStepTimeout = 45 * time.Second
)

// StepResult records the outcome of one completed step, in step order.
type StepResult struct {
	Type       Kind   `json:"type"`
	OK         bool   `json:"ok"`
	SaveAs     string `json:"saveAs,omitempty"`
	MatchedURL string `json:"matchedUrl,omitempty"`
	Status     int    `json:"status,omitempty"`
}

// Output is the interpreter's result: one StepResult per completed step plus
// the final variable snapshot.
type Output struct {
	Results []StepResult           `json:"results"`
	Vars    map[string]interface{} `json:"vars"`
}

// Runner executes a step list against one page. Steps run strictly
// sequentially; the first error aborts the run with no retries.
type Runner struct {
	page     browser.Page
	webhooks *webhook.Client
	timeout  time.Duration
	logger   logger.Logger
}

// NewRunner creates a runner bound to a page. globalTimeout is the run-level
// timeout ceiling from which per-step timeouts are resolved.
func NewRunner(page browser.Page, webhooks *webhook.Client, globalTimeout time.Duration, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Runner{
		page:     page,
		webhooks: webhooks,
		timeout:  globalTimeout,
		logger:   log,
	}
}

// Run executes the raw step records in order. On failure the partial Output
// (results for every step completed before the failure, plus the variable
// snapshot at that point) is returned alongside the error.
func (r *Runner) Run(ctx context.Context, rawSteps []map[string]interface{}) (*Output, error) {
	vars := NewVars()
	results := make([]StepResult, 0, len(rawSteps))

	for i, raw := range rawSteps {
		step, err := DecodeStep(raw)
		if err != nil {
			return &Output{Results: results, Vars: vars.Snapshot()}, fmt.Errorf("step %d: %w", i, err)
		}

		result, err := r.runStep(ctx, step, vars)
		if err != nil {
			return &Output{Results: results, Vars: vars.Snapshot()}, fmt.Errorf("step %d (%s): %w", i, step.Kind, err)
		}
		results = append(results, result)

		r.logger.Debug(ctx, "step completed", map[string]interface{}{
			"index": i,
			"type":  string(step.Kind),
		})
	}

	return &Output{Results: results, Vars: vars.Snapshot()}, nil
}

// effectiveTimeout resolves the dispatch timeout for one step: the step's own
// override when it is at least 1ms, else the run timeout clamped to [1s, 45s].
func (r *Runner) effectiveTimeout(step Step) time.Duration {
	if step.StepTimeout >= time.Millisecond {
		return step.StepTimeout
	}
	timeout := r.timeout
	if timeout < minStepTimeout {
		timeout = minStepTimeout
	}
	if timeout > maxStepTimeout {
		timeout = maxStepTimeout
	}
	return timeout
}

func (r *Runner) runStep(ctx context.Context, step Step, vars *Vars) (StepResult, error) {
	result := StepResult{Type: step.Kind}
	eff := r.effectiveTimeout(step)

	switch step.Kind {
	case KindWaitForSelector:
		target := ResolveTarget(ctx, r.page, step)
		tctx, cancel := context.WithTimeout(ctx, eff)
		defer cancel()
		if err := target.WaitSelector(tctx, step.Selector, step.State); err != nil {
			return result, err
		}

	case KindClick:
		target := ResolveTarget(ctx, r.page, step)
		tctx, cancel := context.WithTimeout(ctx, eff)
		defer cancel()
		if err := target.Click(tctx, step.Selector); err != nil {
			return result, err
		}

	case KindType:
		target := ResolveTarget(ctx, r.page, step)
		tctx, cancel := context.WithTimeout(ctx, eff)
		defer cancel()
		if err := target.Type(tctx, step.Selector, step.Text, step.Delay); err != nil {
			return result, err
		}

	case KindFill:
		target := ResolveTarget(ctx, r.page, step)
		tctx, cancel := context.WithTimeout(ctx, eff)
		defer cancel()
		if err := target.Fill(tctx, step.Selector, step.Value); err != nil {
			return result, err
		}

	case KindPress:
		target := ResolveTarget(ctx, r.page, step)
		tctx, cancel := context.WithTimeout(ctx, eff)
		defer cancel()
		if err := target.Press(tctx, step.Key); err != nil {
			return result, err
		}

	case KindWait:
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(step.Duration):
		}

	case KindWaitForRequest:
		timeout := step.Timeout
		if timeout < time.Millisecond {
			timeout = eff
		}
		wctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		req, err := r.page.WaitRequest(wctx, browser.RequestMatch{
			URLIncludesAny: step.URLIncludesAny,
			Method:         step.Method,
		})
		if err != nil {
			return result, err
		}
		vars.Set(step.SaveAs, req)
		result.SaveAs = step.SaveAs
		result.MatchedURL = req.URL

	case KindRequestToCurl:
		req, err := requestVar(vars, step.FromVar)
		if err != nil {
			return result, err
		}
		vars.Set(step.SaveAs, RequestToCurl(req))
		result.SaveAs = step.SaveAs

	case KindPostWebhook:
		var payload interface{}
		if step.Payload != nil {
			// A literal payload is used verbatim and never requires the
			// request variable to exist.
			payload = step.Payload
		} else {
			built, err := defaultWebhookPayload(vars, step)
			if err != nil {
				return result, err
			}
			payload = built
		}
		timeout := step.Timeout
		if timeout < time.Millisecond {
			timeout = eff
		}
		resp, err := r.webhooks.Post(ctx, step.WebhookURL, payload, timeout)
		if err != nil {
			return result, err
		}
		vars.Set(step.SaveAs, resp)
		result.SaveAs = step.SaveAs
		result.Status = resp.Status

	default:
		// DecodeStep rejects unknown tags; this keeps the dispatch closed.
		return result, fmt.Errorf("%w: %q", ErrUnsupportedStepKind, step.Kind)
	}

	result.OK = true
	return result, nil
}

// defaultWebhookPayload synthesizes the webhook body from the run's captured
// request and, when present, its derived curl command.
func defaultWebhookPayload(vars *Vars, step Step) (map[string]interface{}, error) {
	req, err := requestVar(vars, step.RequestVar)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"capturedAt": req.CapturedAt.UTC().Format(time.RFC3339),
		"url":        req.URL,
		"method":     req.Method,
		"headers":    req.Headers,
		"postData":   req.PostData,
		"cookie":     strings.TrimSpace(req.Header("cookie")),
	}
	if v, ok := vars.Get(step.CurlVar); ok {
		if curl, ok := v.(string); ok {
			payload["curl"] = curl
		}
	}
	return payload, nil
}

// requestVar fetches a captured request from the store by name.
func requestVar(vars *Vars, name string) (*browser.Request, error) {
	v, ok := vars.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	req, ok := v.(*browser.Request)
	if !ok {
		return nil, fmt.Errorf("%w: variable %q does not hold a captured request", ErrInvalidStep, name)
	}
	return req, nil
}
