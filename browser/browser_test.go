package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestMatch_Matches(t *testing.T) {
	req := &Request{
		URL:    "https://api.example.com/v1/orders?id=1",
		Method: "POST",
	}

	t.Run("substring match is OR across the list", func(t *testing.T) {
		m := RequestMatch{URLIncludesAny: []string{"/nope", "/v1/orders"}}
		assert.True(t, m.Matches(req))
	})

	t.Run("no substring matches", func(t *testing.T) {
		m := RequestMatch{URLIncludesAny: []string{"/checkout"}}
		assert.False(t, m.Matches(req))
	})

	t.Run("method compares case-insensitively", func(t *testing.T) {
		m := RequestMatch{URLIncludesAny: []string{"orders"}, Method: "post"}
		assert.True(t, m.Matches(req))

		m.Method = "GET"
		assert.False(t, m.Matches(req))
	})

	t.Run("empty needles never match", func(t *testing.T) {
		m := RequestMatch{URLIncludesAny: []string{""}}
		assert.False(t, m.Matches(req))
	})
}

func TestRequest_Header(t *testing.T) {
	req := &Request{
		Headers: map[string]string{"Content-Type": "application/json"},
	}
	assert.Equal(t, "application/json", req.Header("content-type"))
	assert.Equal(t, "", req.Header("cookie"))
}
