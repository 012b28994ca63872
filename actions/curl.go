package actions

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hairizuan-noorazman/browser-automation/browser"
)

// Headers that curl supplies itself, or that only make sense on the original
// connection. They are dropped from synthesized commands.
var skippedCurlHeaders = map[string]bool{
	"content-length": true,
	"host":           true,
	"connection":     true,
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// RequestToCurl converts a captured request snapshot into an equivalent shell
// command line. The output is deterministic for a given request: headers are
// emitted in sorted order and all values are single-quote escaped. The data
// flag is omitted for GET requests and empty bodies; --compressed is appended
// only when the original request advertised accept-encoding.
func RequestToCurl(req *browser.Request) string {
	parts := []string{"curl", shellQuote(req.URL)}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = "GET"
	}
	if method != "GET" {
		parts = append(parts, "-X", method)
	}

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	hasAcceptEncoding := false
	for _, name := range names {
		lower := strings.ToLower(name)
		if skippedCurlHeaders[lower] {
			continue
		}
		if lower == "accept-encoding" {
			hasAcceptEncoding = true
		}
		parts = append(parts, "-H", shellQuote(name+": "+req.Headers[name]))
	}

	if method != "GET" && req.PostData != "" {
		parts = append(parts, "--data-raw", shellQuote(req.PostData))
	}

	if hasAcceptEncoding {
		parts = append(parts, "--compressed")
	}

	return whitespaceRuns.ReplaceAllString(strings.Join(parts, " "), " ")
}

// shellQuote wraps s in single quotes, escaping embedded single quotes with
// the standard '\'' sequence so the result survives shell parsing intact.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
