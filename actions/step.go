// Package actions implements the browser action DSL: a flat, ordered list of
// typed steps executed sequentially against a page, threading named variables
// (captured requests, derived curl commands, webhook responses) between steps.
package actions

import (
	"errors"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/internal/coerce"
)

var (
	// ErrMissingStepType is returned when a step record has no type tag.
	ErrMissingStepType = errors.New("step type is required")

	// ErrUnsupportedStepKind is returned for an unrecognized step type tag.
	ErrUnsupportedStepKind = errors.New("unsupported step kind")

	// ErrInvalidStep is wrapped around per-kind field validation failures.
	ErrInvalidStep = errors.New("invalid step")

	// ErrUnknownVariable is returned when a step references a variable name
	// not present in the run's variable store.
	ErrUnknownVariable = errors.New("unknown variable")
)

// Kind enumerates the closed set of step types.
type Kind string

const (
	KindWaitForSelector Kind = "waitForSelector"
	KindClick           Kind = "click"
	KindType            Kind = "type"
	KindFill            Kind = "fill"
	KindPress           Kind = "press"
	KindWait            Kind = "wait"
	KindWaitForRequest  Kind = "waitForRequest"
	KindRequestToCurl   Kind = "requestToCurl"
	KindPostWebhook     Kind = "postWebhook"
)

// Variable names used when a step omits its saveAs/fromVar fields.
const (
	DefaultRequestVar = "lastRequest"
	DefaultCurlVar    = "lastCurl"
	DefaultWebhookVar = "lastWebhookResponse"
)

// Step is one decoded unit of the DSL: a tagged record whose meaningful fields
// depend on Kind. Frame hints and the step timeout override apply to every kind.
type Step struct {
	Kind Kind

	// Selector-based interaction fields.
	Selector string
	State    string
	Text     string
	Value    string
	Key      string
	Delay    time.Duration

	// wait
	Duration time.Duration

	// waitForRequest
	URLIncludesAny []string
	Method         string

	// requestToCurl / postWebhook variable plumbing.
	FromVar    string
	SaveAs     string
	WebhookURL string
	RequestVar string
	CurlVar    string
	Payload    map[string]interface{}

	// Timeout for the step's own wait (waitForRequest, postWebhook), distinct
	// from the step-dispatch timeout below. Zero means unset.
	Timeout time.Duration

	// StepTimeout overrides the run's resolved per-step timeout. Zero means unset.
	StepTimeout time.Duration

	// Frame targeting hints, highest precedence first.
	FrameURLEquals   string
	FrameURLIncludes string
	FrameName        string
}

// DecodeStep converts one loosely-typed step record into a Step, applying the
// per-kind defaults and validating required fields. Numeric and boolean fields
// tolerate stringified values.
func DecodeStep(raw map[string]interface{}) (Step, error) {
	kindStr := coerce.StringOr(raw["type"], "")
	if kindStr == "" {
		return Step{}, ErrMissingStepType
	}

	step := Step{
		Kind:             Kind(kindStr),
		FrameURLEquals:   coerce.StringOr(raw["frameUrlEquals"], ""),
		FrameURLIncludes: coerce.StringOr(raw["frameUrlIncludes"], ""),
		FrameName:        coerce.StringOr(raw["frameName"], ""),
	}

	// stepTimeout only applies when it is a finite number >= 1 (milliseconds).
	if ms := coerce.NumberOr(raw["stepTimeout"], 0); ms >= 1 {
		step.StepTimeout = time.Duration(ms) * time.Millisecond
	}

	switch step.Kind {
	case KindWaitForSelector:
		step.Selector = coerce.StringOr(raw["selector"], "")
		step.State = coerce.StringOr(raw["state"], "visible")
		if step.Selector == "" {
			return Step{}, fmt.Errorf("%w: waitForSelector requires selector", ErrInvalidStep)
		}

	case KindClick:
		step.Selector = coerce.StringOr(raw["selector"], "")
		if step.Selector == "" {
			return Step{}, fmt.Errorf("%w: click requires selector", ErrInvalidStep)
		}

	case KindType:
		step.Selector = coerce.StringOr(raw["selector"], "")
		step.Text = coerce.StringOr(raw["text"], "")
		step.Delay = coerce.DurationMsOr(raw["delay"], 0)
		if step.Selector == "" {
			return Step{}, fmt.Errorf("%w: type requires selector", ErrInvalidStep)
		}

	case KindFill:
		step.Selector = coerce.StringOr(raw["selector"], "")
		step.Value = coerce.StringOr(raw["value"], "")
		if step.Selector == "" {
			return Step{}, fmt.Errorf("%w: fill requires selector", ErrInvalidStep)
		}

	case KindPress:
		step.Key = coerce.StringOr(raw["key"], "")
		if step.Key == "" {
			return Step{}, fmt.Errorf("%w: press requires key", ErrInvalidStep)
		}

	case KindWait:
		step.Duration = coerce.DurationMsOr(raw["ms"], time.Second)

	case KindWaitForRequest:
		step.URLIncludesAny = stringList(raw["urlIncludesAny"])
		if len(step.URLIncludesAny) == 0 {
			return Step{}, fmt.Errorf("%w: waitForRequest requires a non-empty urlIncludesAny", ErrInvalidStep)
		}
		step.Method = coerce.StringOr(raw["method"], "")
		step.SaveAs = coerce.StringOr(raw["saveAs"], DefaultRequestVar)
		if ms := coerce.NumberOr(raw["timeout_ms"], 0); ms >= 1 {
			step.Timeout = time.Duration(ms) * time.Millisecond
		}

	case KindRequestToCurl:
		step.FromVar = coerce.StringOr(raw["fromVar"], DefaultRequestVar)
		step.SaveAs = coerce.StringOr(raw["saveAs"], DefaultCurlVar)

	case KindPostWebhook:
		step.WebhookURL = coerce.StringOr(raw["url"], coerce.StringOr(raw["webhookUrl"], ""))
		if step.WebhookURL == "" {
			return Step{}, fmt.Errorf("%w: postWebhook requires url", ErrInvalidStep)
		}
		step.RequestVar = coerce.StringOr(raw["requestVar"], DefaultRequestVar)
		step.CurlVar = coerce.StringOr(raw["curlVar"], DefaultCurlVar)
		step.SaveAs = coerce.StringOr(raw["saveAs"], DefaultWebhookVar)
		if payload, ok := raw["payload"].(map[string]interface{}); ok {
			step.Payload = payload
		}
		if ms := coerce.NumberOr(raw["timeout_ms"], 0); ms >= 1 {
			step.Timeout = time.Duration(ms) * time.Millisecond
		}

	default:
		return Step{}, fmt.Errorf("%w: %q", ErrUnsupportedStepKind, kindStr)
	}

	return step, nil
}

// stringList coerces a JSON value into a list of non-empty strings. A lone
// string becomes a single-element list; falsy entries are filtered out.
func stringList(v interface{}) []string {
	var out []string
	switch list := v.(type) {
	case string:
		if list != "" {
			out = append(out, list)
		}
	case []string:
		for _, s := range list {
			if s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
