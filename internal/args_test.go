package internal_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/servant/internal"
)

type userID string

func TestArg(t *testing.T) {
	t.Parallel()

	args := internal.Args{
		"counter": json.Number("3"),
		"page":    "7",
		"ratio":   json.Number("0.5"),
		"flag":    true,
		"name":    "alice",
		"nested":  map[string]any{"a": 1},
	}

	t.Run("numbers", func(t *testing.T) {
		t.Parallel()
		n, ok := internal.Arg[int](args, "counter")
		assert.True(t, ok)
		assert.Equal(t, 3, n)

		p, ok := internal.Arg[int64](args, "page")
		assert.True(t, ok)
		assert.Equal(t, int64(7), p)

		f, ok := internal.Arg[float64](args, "ratio")
		assert.True(t, ok)
		assert.InDelta(t, 0.5, f, 1e-9)

		_, ok = internal.Arg[int](args, "ratio")
		assert.False(t, ok)
	})

	t.Run("bool and strings", func(t *testing.T) {
		t.Parallel()
		b, ok := internal.Arg[bool](args, "flag")
		assert.True(t, ok)
		assert.True(t, b)

		id, ok := internal.Arg[userID](args, "name")
		assert.True(t, ok)
		assert.Equal(t, userID("alice"), id)
	})

	t.Run("missing and unconvertible", func(t *testing.T) {
		t.Parallel()
		_, ok := internal.Arg[string](args, "missing")
		assert.False(t, ok)
		_, ok = internal.Arg[string](args, "nested")
		assert.False(t, ok)
		assert.Equal(t, 10, internal.ArgOr(args, "missing", 10))
		assert.Equal(t, 3, internal.ArgOr(args, "counter", 10))
	})

	t.Run("accessors", func(t *testing.T) {
		t.Parallel()
		assert.True(t, args.Has("flag"))
		assert.False(t, args.Has("missing"))
		assert.Equal(t, "3", args.String("counter"))
		assert.Equal(t, "", args.String("missing"))
		assert.Equal(t, 7, args.Int("page"))
		assert.Equal(t, 0, args.Int("name"))
	})
}
