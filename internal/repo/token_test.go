package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/repo"
	"github.com/tripboard/tripboard/testutil"
)

func TestLocalRepo_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	local := repo.NewLocalRepo(testutil.NewSQLDB(t))

	_, err := local.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, local.Set(ctx, "k", "v1"))
	require.NoError(t, local.Set(ctx, "k", "v2"))

	got, err := local.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	require.NoError(t, local.Delete(ctx, "k"))
	require.NoError(t, local.Delete(ctx, "k"), "deleting an absent key is not an error")
	_, err = local.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenStore_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTokenStore(t)

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.SetToken(ctx, "abc.def.ghi"))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	require.NoError(t, store.RemoveToken(ctx))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

// TestTokenStore_SentinelsAreClearedOnRead verifies that values written by
// something other than the store (e.g. an older client) that are sentinel
// strings read back as absent and are removed from storage.
func TestTokenStore_SentinelsAreClearedOnRead(t *testing.T) {
	for _, sentinel := range []string{"", "   ", "null", "undefined"} {
		t.Run(sentinel, func(t *testing.T) {
			ctx := context.Background()
			local := repo.NewLocalRepo(testutil.NewSQLDB(t))
			store := repo.NewTokenStore(local)

			require.NoError(t, local.Set(ctx, repo.KeyPendingInvite, sentinel))

			got, err := store.PendingInvite(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			_, err = local.Get(ctx, repo.KeyPendingInvite)
			assert.ErrorIs(t, err, domain.ErrNotFound, "sentinel should have been deleted")
		})
	}
}

func TestTokenStore_SetSentinelRemoves(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTokenStore(t)

	require.NoError(t, store.SetPendingInvite(ctx, "tok-1"))
	require.NoError(t, store.SetPendingInvite(ctx, "null"))

	got, err := store.PendingInvite(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenStore_ActiveTrip(t *testing.T) {
	ctx := context.Background()
	local := repo.NewLocalRepo(testutil.NewSQLDB(t))
	store := repo.NewTokenStore(local)

	id, err := store.ActiveTrip(ctx)
	require.NoError(t, err)
	assert.Zero(t, id)

	require.NoError(t, store.SetActiveTrip(ctx, 42))
	id, err = store.ActiveTrip(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	require.NoError(t, local.Set(ctx, repo.KeyActiveTrip, "not-a-number"))
	id, err = store.ActiveTrip(ctx)
	require.NoError(t, err)
	assert.Zero(t, id)
}
