package repository

import (
	"context"
	"sync"
	"testing"

	"satsdice/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawRepository_ClaimByUniqueHash(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("claim unused credential", func(t *testing.T) {
		credential := testutil.CreateTestWithdrawCredential("hash-1", "wallet-1", 200)
		require.NoError(t, repo.Create(ctx, credential))

		claimed, err := repo.ClaimByUniqueHash(ctx, credential.UniqueHash)
		require.NoError(t, err)
		require.NotNil(t, claimed)
		assert.True(t, claimed.Used)
		assert.Equal(t, int64(200), claimed.Value)
	})

	t.Run("claim used credential returns nil", func(t *testing.T) {
		credential := testutil.CreateTestWithdrawCredential("hash-2", "wallet-1", 200)
		require.NoError(t, repo.Create(ctx, credential))

		first, err := repo.ClaimByUniqueHash(ctx, credential.UniqueHash)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := repo.ClaimByUniqueHash(ctx, credential.UniqueHash)
		require.NoError(t, err)
		assert.Nil(t, second)
	})

	t.Run("claim unknown credential returns nil", func(t *testing.T) {
		claimed, err := repo.ClaimByUniqueHash(ctx, "no-such-hash")
		require.NoError(t, err)
		assert.Nil(t, claimed)
	})

	t.Run("concurrent claims succeed exactly once", func(t *testing.T) {
		credential := testutil.CreateTestWithdrawCredential("hash-3", "wallet-1", 200)
		require.NoError(t, repo.Create(ctx, credential))

		const attempts = 10
		results := make(chan bool, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimed, err := repo.ClaimByUniqueHash(ctx, credential.UniqueHash)
				require.NoError(t, err)
				results <- claimed != nil
			}()
		}
		wg.Wait()
		close(results)

		winners := 0
		for won := range results {
			if won {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})

	t.Run("release makes credential claimable again", func(t *testing.T) {
		credential := testutil.CreateTestWithdrawCredential("hash-4", "wallet-1", 200)
		require.NoError(t, repo.Create(ctx, credential))

		claimed, err := repo.ClaimByUniqueHash(ctx, credential.UniqueHash)
		require.NoError(t, err)
		require.NotNil(t, claimed)

		require.NoError(t, repo.Release(ctx, credential.ID))

		reclaimed, err := repo.ClaimByUniqueHash(ctx, credential.UniqueHash)
		require.NoError(t, err)
		require.NotNil(t, reclaimed)
	})
}

func TestWithdrawRepository_GetByID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		credential, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, credential)
	})

	t.Run("found", func(t *testing.T) {
		created := testutil.CreateTestWithdrawCredential("hash-10", "wallet-1", 500)
		require.NoError(t, repo.Create(ctx, created))

		credential, err := repo.GetByID(ctx, "hash-10")
		require.NoError(t, err)
		require.NotNil(t, credential)
		assert.Equal(t, created.UniqueHash, credential.UniqueHash)
		assert.Equal(t, created.K1, credential.K1)
		assert.False(t, credential.Used)
	})
}
