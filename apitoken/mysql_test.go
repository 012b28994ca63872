package apitoken

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/testutil"
)

func setupTestStore(t *testing.T) Store {
	db := testutil.SetupTestDB(t, &APIToken{})
	return NewMySQLStore(db, logger.NewTestLogger())
}

func mintToken(t *testing.T, store Store, name string) (raw string, token *APIToken) {
	t.Helper()

	raw, hash, err := GenerateToken()
	require.NoError(t, err)

	token = &APIToken{Name: name, TokenHash: hash, Enabled: true}
	require.NoError(t, store.Create(context.Background(), token))
	return raw, token
}

func TestMySQLStore_GetByTokenHash(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	raw, minted := mintToken(t, store, "ci")

	t.Run("finds enabled token by hash", func(t *testing.T) {
		got, err := store.GetByTokenHash(ctx, HashToken(raw))
		require.NoError(t, err)
		assert.Equal(t, minted.ID, got.ID)
		assert.Equal(t, "ci", got.Name)
	})

	t.Run("unknown hash", func(t *testing.T) {
		_, err := store.GetByTokenHash(ctx, HashToken("never-minted"))
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, minted.ID))
		_, err := store.GetByTokenHash(ctx, HashToken(raw))
		assert.ErrorIs(t, err, ErrTokenDisabled)
	})
}

func TestMySQLStore_Revoke(t *testing.T) {
	store := setupTestStore(t)

	err := store.Revoke(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMySQLStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mintToken(t, store, "ci")
	mintToken(t, store, "cron")

	tokens, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}
