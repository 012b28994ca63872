package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_Create(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("creates a valid script", func(t *testing.T) {
		s := sampleScript("checkout-flow")
		err := store.Create(ctx, s)
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)

		got, err := store.GetByKey(ctx, "checkout-flow")
		require.NoError(t, err)
		assert.Equal(t, TypeActions, got.Type)
		assert.Equal(t, "{{target.url}}", got.DSL["url"])
		assert.Equal(t, "load", got.Defaults["waitUntil"])
		assert.True(t, got.Enabled)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		s := sampleScript("")
		err := store.Create(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidScriptKey)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		s := sampleScript("bad-type")
		s.Type = "teleport"
		err := store.Create(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidScriptType)
	})

	t.Run("duplicate key fails", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, sampleScript("dup")))
		err := store.Create(ctx, sampleScript("dup"))
		assert.Error(t, err)
	})
}

func TestMySQLStore_GetByKey(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.GetByKey(ctx, "nope")
		assert.ErrorIs(t, err, ErrScriptNotFound)
	})
}

func TestMySQLStore_Update(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, sampleScript("editable")))

	t.Run("applies setters", func(t *testing.T) {
		err := store.Update(ctx, "editable",
			SetType(TypeScreenshot),
			SetDefaults(Document{"fullPage": true}),
			SetEnabled(false),
		)
		require.NoError(t, err)

		got, err := store.GetByKey(ctx, "editable")
		require.NoError(t, err)
		assert.Equal(t, TypeScreenshot, got.Type)
		assert.Equal(t, true, got.Defaults["fullPage"])
		assert.False(t, got.Enabled)
	})

	t.Run("setter validation failure rolls back", func(t *testing.T) {
		err := store.Update(ctx, "editable", SetType("bogus"))
		require.ErrorIs(t, err, ErrInvalidScriptType)

		got, err := store.GetByKey(ctx, "editable")
		require.NoError(t, err)
		assert.Equal(t, TypeScreenshot, got.Type)
	})

	t.Run("missing key", func(t *testing.T) {
		err := store.Update(ctx, "nope", SetEnabled(true))
		assert.ErrorIs(t, err, ErrScriptNotFound)
	})
}

func TestMySQLStore_Delete(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, sampleScript("doomed")))

	t.Run("deletes existing", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "doomed"))
		_, err := store.GetByKey(ctx, "doomed")
		assert.ErrorIs(t, err, ErrScriptNotFound)
	})

	t.Run("missing key", func(t *testing.T) {
		err := store.Delete(ctx, "doomed")
		assert.ErrorIs(t, err, ErrScriptNotFound)
	})
}

func TestMySQLStore_List(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"one", "two", "three"} {
		require.NoError(t, store.Create(ctx, sampleScript(key)))
	}

	t.Run("paginates", func(t *testing.T) {
		page, err := store.List(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := store.List(ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}
