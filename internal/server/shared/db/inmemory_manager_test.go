package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenalong/backend/internal/server/models"
)

func TestInMemoryRepositoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	assert.Nil(t, m.Conn())
	assert.NoError(t, m.RunMigrations(ctx))

	require.NoError(t, m.Users().Create(ctx, &models.User{
		ID:          "82074fcd-6eef-4caf-bc95-4dac50485fb7",
		DisplayName: "listener",
	}))
	user, err := m.Users().Get(ctx, "82074fcd-6eef-4caf-bc95-4dac50485fb7")
	require.NoError(t, err)
	assert.Equal(t, "listener", user.DisplayName)

	require.NoError(t, m.Parties().Insert(ctx, &models.Party{
		Code:         "aZ3kQ9",
		HostID:       user.ID,
		HostSecret:   "s",
		Participants: []string{user.ID},
	}))
	party, err := m.Parties().GetByCode(ctx, "aZ3kQ9")
	require.NoError(t, err)
	assert.Equal(t, user.ID, party.HostID)
}
