// Package partycode generates the short shareable codes identifying open
// parties.
package partycode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/repositories/parties"
)

// alphabet is the 62-character case-sensitive code alphabet.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultMaxAttempts bounds the collision-retry loop. With a 62^6 namespace
// a collision is vanishingly rare under normal load; the bound is a safety
// valve against pathological code density, not an expected code path.
const DefaultMaxAttempts = 10

// Lookup is the slice of the party repository the generator needs.
type Lookup interface {
	GetByCode(ctx context.Context, code string) (*models.Party, error)
}

var _ Lookup = (parties.Repository)(nil)

// Generator draws 6-character codes uniformly at random and guarantees the
// returned code is not assigned to any open party at the time of the check.
type Generator struct {
	lookup      Lookup
	maxAttempts int
}

func NewGenerator(lookup Lookup) *Generator {
	return &Generator{lookup: lookup, maxAttempts: DefaultMaxAttempts}
}

// Generate returns a fresh unassigned code. After maxAttempts collisions it
// fails with common.ErrorNamespaceExhausted; the loop is iterative, never
// recursive, so a collision storm cannot grow the stack.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("code draw error: %w", err)
		}

		_, err = g.lookup.GetByCode(ctx, code)
		if errors.Is(err, common.ErrorNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// code taken, draw again
	}
	return "", common.ErrorNamespaceExhausted
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, models.CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
