package partycode

import (
	"context"
	"strings"
	"testing"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/repositories/parties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alwaysTaken reports every code as assigned.
type alwaysTaken struct{}

func (alwaysTaken) GetByCode(ctx context.Context, code string) (*models.Party, error) {
	return &models.Party{Code: code}, nil
}

func TestGenerate_ReturnsUnassignedCode(t *testing.T) {
	repo := parties.NewMemoryRepository()
	gen := NewGenerator(repo)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, models.CodeLength)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q", c)
	}
}

func TestGenerate_SkipsTakenCodes(t *testing.T) {
	repo := parties.NewMemoryRepository()
	gen := NewGenerator(repo)

	ctx := context.Background()
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		code, err := gen.Generate(ctx)
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "code %q issued twice while still open", code)
		seen[code] = struct{}{}

		require.NoError(t, repo.Insert(ctx, &models.Party{
			Code: code, HostID: "h", HostSecret: "s", Participants: []string{"h"},
		}))
	}
}

func TestGenerate_ExhaustsAfterBoundedAttempts(t *testing.T) {
	gen := NewGenerator(alwaysTaken{})

	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, common.ErrorNamespaceExhausted)
}
