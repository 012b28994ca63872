package actions

import (
	"context"
	"strings"

	"github.com/hairizuan-noorazman/browser-automation/browser"
)

// ResolveTarget returns the page or the frame a step should act on. When the
// step carries no frame hints the page itself is returned. Otherwise the
// page's live frame set is searched in precedence order: exact URL match, URL
// substring match, exact name match; the first frame satisfying the highest
// provided criterion wins. No match falls back to the page rather than
// returning an error.
func ResolveTarget(ctx context.Context, page browser.Page, step Step) browser.Target {
	if step.FrameURLEquals == "" && step.FrameURLIncludes == "" && step.FrameName == "" {
		return page
	}

	frames, err := page.Frames(ctx)
	if err != nil || len(frames) == 0 {
		return page
	}

	if step.FrameURLEquals != "" {
		for _, f := range frames {
			if f.URL() == step.FrameURLEquals {
				return f
			}
		}
	}
	if step.FrameURLIncludes != "" {
		for _, f := range frames {
			if strings.Contains(f.URL(), step.FrameURLIncludes) {
				return f
			}
		}
	}
	if step.FrameName != "" {
		for _, f := range frames {
			if f.Name() == step.FrameName {
				return f
			}
		}
	}

	return page
}
