package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hairizuan-noorazman/browser-automation/browser"
)

func TestRequestToCurl(t *testing.T) {
	t.Run("simple GET", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{
			URL:    "https://api.example.com/v1/items?page=2",
			Method: "GET",
		})
		assert.Equal(t, "curl 'https://api.example.com/v1/items?page=2'", cmd)
	})

	t.Run("POST with sorted headers and body", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{
			URL:    "https://api.example.com/v1/items",
			Method: "post",
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": "Bearer abc",
			},
			PostData: `{"name":"widget"}`,
		})
		assert.Equal(t,
			`curl 'https://api.example.com/v1/items' -X POST `+
				`-H 'Authorization: Bearer abc' -H 'Content-Type: application/json' `+
				`--data-raw '{"name":"widget"}'`,
			cmd)
	})

	t.Run("connection headers are dropped", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{
			URL:    "https://api.example.com/ping",
			Method: "GET",
			Headers: map[string]string{
				"Content-Length": "42",
				"Host":           "api.example.com",
				"Connection":     "keep-alive",
				"Accept":         "*/*",
			},
		})
		assert.Equal(t, "curl 'https://api.example.com/ping' -H 'Accept: */*'", cmd)
	})

	t.Run("compressed only with accept-encoding", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{
			URL:     "https://api.example.com/feed",
			Method:  "GET",
			Headers: map[string]string{"Accept-Encoding": "gzip, deflate"},
		})
		assert.Contains(t, cmd, "--compressed")
		assert.Equal(t, "curl 'https://api.example.com/feed' -H 'Accept-Encoding: gzip, deflate' --compressed", cmd)
	})

	t.Run("GET body is omitted", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{
			URL:      "https://api.example.com/search",
			Method:   "GET",
			PostData: "ignored",
		})
		assert.NotContains(t, cmd, "--data-raw")
	})

	t.Run("single quotes are escaped", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{
			URL:      "https://api.example.com/say",
			Method:   "POST",
			PostData: `it's fine`,
		})
		assert.Contains(t, cmd, `--data-raw 'it'\''s fine'`)
	})

	t.Run("empty method defaults to GET", func(t *testing.T) {
		cmd := RequestToCurl(&browser.Request{URL: "https://api.example.com/"})
		assert.Equal(t, "curl 'https://api.example.com/'", cmd)
	})
}
