package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/actions"
	"github.com/hairizuan-noorazman/browser-automation/internal/coerce"
)

// Actions navigates to the requested URL and runs the step list against the
// page. The response carries one result per completed step plus the final
// variable snapshot.
func (s *Service) Actions(ctx context.Context, req ActionsRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "actions", req.URL, start, "", err) }()

	if len(req.Actions) == 0 {
		return nil, fmt.Errorf("%w: actions is required", ErrInvalidRequest)
	}

	page, _, release, err := s.openPage(ctx, req.PageOptions)
	if err != nil {
		return nil, err
	}
	defer release()

	// The run itself is not deadline-bounded: each step resolves its own
	// timeout from this ceiling.
	timeout := coerce.DurationMsOr(req.Timeout, defaultRequestTimeout)
	runner := actions.NewRunner(page, s.webhooks, timeout, s.logger)

	out, err := runner.Run(ctx, req.Actions)
	if err != nil {
		return nil, err
	}

	return &Result{
		JSON: map[string]interface{}{
			"ok":      true,
			"results": out.Results,
			"vars":    out.Vars,
		},
	}, nil
}
