package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	favorited, err := s.ToggleFavorite(ctx, "local-1")
	require.NoError(t, err)
	assert.True(t, favorited)

	isFav, err := s.IsFavorite(ctx, "local-1")
	require.NoError(t, err)
	assert.True(t, isFav)

	favorited, err = s.ToggleFavorite(ctx, "local-1")
	require.NoError(t, err)
	assert.False(t, favorited)

	isFav, err = s.IsFavorite(ctx, "local-1")
	require.NoError(t, err)
	assert.False(t, isFav)
}

func TestFavoritesAreKeyedPerSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Local and remote movies with the same numeric id are distinct.
	_, err := s.ToggleFavorite(ctx, "local-7")
	require.NoError(t, err)

	isFav, err := s.IsFavorite(ctx, "remote-7")
	require.NoError(t, err)
	assert.False(t, isFav)
}

func TestListFavoriteKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keys, err := s.ListFavoriteKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, key := range []string{"local-1", "remote-3", "local-2"} {
		_, err := s.ToggleFavorite(ctx, key)
		require.NoError(t, err)
	}

	keys, err = s.ListFavoriteKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"local-1", "local-2", "remote-3"}, keys)
}

func TestMigrateLegacyFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Seed the old flat-array record directly, the shape the previous
	// storage format used.
	require.NoError(t, s.set([]byte(legacyFavoriteKey), []string{"local-1", "remote-9", ""}))

	keys, err := s.ListFavoriteKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"local-1", "remote-9"}, keys)

	// The legacy record is gone after migration.
	found, err := s.exists([]byte(legacyFavoriteKey))
	require.NoError(t, err)
	assert.False(t, found)

	// Migrated entries behave like natively written ones.
	favorited, err := s.ToggleFavorite(ctx, "local-1")
	require.NoError(t, err)
	assert.False(t, favorited)
}

func TestMigrateLegacyFavoritesNoLegacyRecord(t *testing.T) {
	s := newTestStore(t)

	keys, err := s.ListFavoriteKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
