package users

import (
	"context"
	"sync"
	"testing"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id string) *models.User {
	return &models.User{
		ID:            id,
		DisplayName:   "alice",
		SessionSecret: "secret",
		Capabilities:  []string{"companion"},
		Online:        true,
	}
}

func TestMemory_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1")))
	err := repo.Create(ctx, newUser("u1"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.DisplayName)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1")))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	got.SessionSecret = "tampered"
	got.Capabilities[0] = "tampered"

	again, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "secret", again.SessionSecret)
	assert.Equal(t, []string{"companion"}, again.Capabilities)
}

func TestMemory_ClearSession(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1")))
	require.NoError(t, repo.UpdateTrack(ctx, "u1", &models.Track{Title: "T"}))

	require.NoError(t, repo.ClearSession(ctx, "u1"))
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.SessionSecret)
	assert.False(t, got.Online)
	assert.Nil(t, got.CurrentTrack)

	// unknown id is still success
	assert.NoError(t, repo.ClearSession(ctx, "ghost"))
}

func TestMemory_AddCapabilityIsSetLike(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1")))
	require.NoError(t, repo.AddCapability(ctx, "u1", "overlay"))
	require.NoError(t, repo.AddCapability(ctx, "u1", "overlay"))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"companion", "overlay"}, got.Capabilities)
}

func TestMemory_Counts(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1")))
	require.NoError(t, repo.Create(ctx, newUser("u2")))
	require.NoError(t, repo.ClearSession(ctx, "u2"))

	all, err := repo.CountAll(ctx)
	require.NoError(t, err)
	online, err := repo.CountOnline(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)
	assert.Equal(t, int64(1), online)
}

func TestMemory_ConcurrentSetSecret(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newUser("u1")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.SetSecret(ctx, "u1", common.NewSecret())
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got.SessionSecret, common.SecretLength)
	assert.True(t, got.Online)
}
