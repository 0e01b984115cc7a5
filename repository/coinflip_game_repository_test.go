package repository

import (
	"context"
	"testing"

	"satsdice/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinflipGameRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	settingsRepo := NewCoinflipSettingsRepository(testDB.DB)
	gameRepo := NewCoinflipGameRepository(testDB.DB)
	ctx := context.Background()

	settings := testutil.CreateTestCoinflipSettings("wallet-1")
	require.NoError(t, settingsRepo.Create(ctx, settings))

	t.Run("create and get preserves player order", func(t *testing.T) {
		game := testutil.CreateTestCoinflipGame(settings.ID, 1000, 3)
		require.NoError(t, gameRepo.Create(ctx, game))

		game.Players = append(game.Players, "alice@ln.host", "bob@ln.host")
		require.NoError(t, gameRepo.Update(ctx, game))

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, []string{"alice@ln.host", "bob@ln.host"}, stored.Players)
		assert.False(t, stored.Completed)
	})

	t.Run("completion keeps only the winner", func(t *testing.T) {
		game := testutil.CreateTestCoinflipGame(settings.ID, 1000, 2)
		require.NoError(t, gameRepo.Create(ctx, game))

		game.Players = []string{"bob@ln.host"}
		game.Completed = true
		require.NoError(t, gameRepo.Update(ctx, game))

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, stored.Completed)
		assert.Equal(t, []string{"bob@ln.host"}, stored.Players)
	})

	t.Run("get unknown game returns nil", func(t *testing.T) {
		stored, err := gameRepo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("duplicate buy-ins from the same player are kept", func(t *testing.T) {
		game := testutil.CreateTestCoinflipGame(settings.ID, 500, 3)
		require.NoError(t, gameRepo.Create(ctx, game))

		game.Players = append(game.Players, "alice@ln.host", "alice@ln.host")
		require.NoError(t, gameRepo.Update(ctx, game))

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Players, 2)
	})
}
