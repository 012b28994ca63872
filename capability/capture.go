package capability

import (
	"context"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/browser"
	"github.com/hairizuan-noorazman/browser-automation/internal/coerce"
)

const defaultScrollDelay = 250 * time.Millisecond

// Screenshot navigates to the requested URL and captures it as a PNG.
func (s *Service) Screenshot(ctx context.Context, req ScreenshotRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "screenshot", req.URL, start, resultAssetPath(res), err) }()

	page, reqCtx, release, err := s.openPage(ctx, req.PageOptions)
	if err != nil {
		return nil, err
	}
	defer release()

	if steps := coerce.IntOr(req.ScrollSteps, 0); steps > 0 {
		s.scrollWarmUp(reqCtx, page, steps, coerce.DurationMsOr(req.ScrollDelayMs, defaultScrollDelay))
	}
	settle(reqCtx, req.DelayMs, req.WaitAfter)

	data, err := page.Screenshot(reqCtx, browser.ScreenshotOptions{
		Width:    int64(coerce.IntOr(req.Width, 0)),
		Height:   int64(coerce.IntOr(req.Height, 0)),
		Scale:    coerce.NumberOr(req.DeviceScaleFactor, 0),
		FullPage: coerce.BoolOr(req.FullPage, false),
		Clip:     req.Clip,
	})
	if err != nil {
		return nil, err
	}

	var asset string
	if coerce.BoolOr(req.Save, false) {
		asset, err = s.saveArtifact(reqCtx, "screenshot", "png", data)
		if err != nil {
			return nil, err
		}
	}

	if coerce.BoolOr(req.AsBase64, false) {
		res = base64Result("image/png", data)
		res.AssetPath = asset
		return res, nil
	}

	return &Result{
		ContentType: "image/png",
		Filename:    "screenshot.png",
		Body:        data,
		AssetPath:   asset,
	}, nil
}

// PDF navigates to the requested URL and renders it as a PDF document.
func (s *Service) PDF(ctx context.Context, req PDFRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.record(ctx, "pdf", req.URL, start, resultAssetPath(res), err) }()

	page, reqCtx, release, err := s.openPage(ctx, req.PageOptions)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := page.PDF(reqCtx, decodePrintOptions(req.PrintOptions))
	if err != nil {
		return nil, err
	}

	var asset string
	if coerce.BoolOr(req.Save, false) {
		asset, err = s.saveArtifact(reqCtx, "pdf", "pdf", data)
		if err != nil {
			return nil, err
		}
	}

	if coerce.BoolOr(req.AsBase64, false) {
		res = base64Result("application/pdf", data)
		res.AssetPath = asset
		return res, nil
	}

	return &Result{
		ContentType: "application/pdf",
		Filename:    "page.pdf",
		Body:        data,
		AssetPath:   asset,
	}, nil
}

// decodePrintOptions coerces a loosely-typed printOptions object into
// browser.PDFOptions. Unknown keys are ignored.
func decodePrintOptions(raw map[string]interface{}) browser.PDFOptions {
	if raw == nil {
		return browser.PDFOptions{}
	}
	return browser.PDFOptions{
		Landscape:       coerce.BoolOr(raw["landscape"], false),
		PrintBackground: coerce.BoolOr(raw["printBackground"], false),
		Scale:           coerce.NumberOr(raw["scale"], 0),
		PaperWidth:      coerce.NumberOr(raw["paperWidth"], 0),
		PaperHeight:     coerce.NumberOr(raw["paperHeight"], 0),
		MarginTop:       coerce.NumberOr(raw["marginTop"], 0),
		MarginBottom:    coerce.NumberOr(raw["marginBottom"], 0),
		MarginLeft:      coerce.NumberOr(raw["marginLeft"], 0),
		MarginRight:     coerce.NumberOr(raw["marginRight"], 0),
		PageRanges:      coerce.StringOr(raw["pageRanges"], ""),
	}
}

func resultAssetPath(res *Result) string {
	if res == nil {
		return ""
	}
	return res.AssetPath
}
