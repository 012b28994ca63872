package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	t.Run("dotted paths", func(t *testing.T) {
		got := Interpolate(
			map[string]interface{}{"a": "{{x}}-{{y.z}}"},
			map[string]interface{}{"x": "1", "y": map[string]interface{}{"z": "2"}},
		)
		assert.Equal(t, map[string]interface{}{"a": "1-2"}, got)
	})

	t.Run("missing path substitutes empty string", func(t *testing.T) {
		got := Interpolate("before {{no.such.path}} after", map[string]interface{}{})
		assert.Equal(t, "before  after", got)
	})

	t.Run("nil value substitutes empty string", func(t *testing.T) {
		got := Interpolate("[{{gone}}]", map[string]interface{}{"gone": nil})
		assert.Equal(t, "[]", got)
	})

	t.Run("non-string values use their string form", func(t *testing.T) {
		got := Interpolate("count={{n}} on={{flag}}", map[string]interface{}{
			"n":    float64(3),
			"flag": true,
		})
		assert.Equal(t, "count=3 on=true", got)
	})

	t.Run("arrays element-wise", func(t *testing.T) {
		got := Interpolate(
			[]interface{}{"{{a}}", map[string]interface{}{"b": "{{a}}"}, float64(7)},
			map[string]interface{}{"a": "x"},
		)
		assert.Equal(t, []interface{}{"x", map[string]interface{}{"b": "x"}, float64(7)}, got)
	})

	t.Run("non-string leaves pass through", func(t *testing.T) {
		got := Interpolate(float64(42), map[string]interface{}{"x": "ignored"})
		assert.Equal(t, float64(42), got)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		in := map[string]interface{}{"a": "{{x}}"}
		Interpolate(in, map[string]interface{}{"x": "replaced"})
		assert.Equal(t, "{{x}}", in["a"])
	})

	t.Run("whitespace inside braces tolerated", func(t *testing.T) {
		got := Interpolate("{{ x }}", map[string]interface{}{"x": "v"})
		assert.Equal(t, "v", got)
	})
}

func TestMerge(t *testing.T) {
	t.Run("overlay replaces nested objects wholesale", func(t *testing.T) {
		got := Merge(
			map[string]interface{}{"a": float64(1), "b": map[string]interface{}{"c": float64(1)}},
			map[string]interface{}{"b": map[string]interface{}{"d": float64(2)}},
		)
		assert.Equal(t, map[string]interface{}{
			"a": float64(1),
			"b": map[string]interface{}{"d": float64(2)},
		}, got)
	})

	t.Run("base is deep cloned", func(t *testing.T) {
		base := map[string]interface{}{"nested": map[string]interface{}{"k": "v"}}
		got := Merge(base, map[string]interface{}{})
		got["nested"].(map[string]interface{})["k"] = "mutated"
		assert.Equal(t, "v", base["nested"].(map[string]interface{})["k"])
	})

	t.Run("empty overlay keeps base", func(t *testing.T) {
		got := Merge(map[string]interface{}{"a": "x"}, nil)
		assert.Equal(t, map[string]interface{}{"a": "x"}, got)
	})
}
