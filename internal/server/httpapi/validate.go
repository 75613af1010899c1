package httpapi

import (
	"fmt"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/identity"
	"github.com/listenalong/backend/internal/server/models"
)

// Input checks rejected before any repository lookup: malformed ids and
// wrong-length tokens never reach the services.

func canonicalID(raw string) (string, error) {
	if len(raw) != common.SecretLength {
		return "", fmt.Errorf("%w: invalid uuid", common.ErrorValidation)
	}
	return identity.NormalizeID(raw)
}

func checkSessionSecret(secret string) error {
	if len(secret) != common.SecretLength {
		return fmt.Errorf("%w: invalid secret", common.ErrorValidation)
	}
	return nil
}

func checkPartyCode(code string) error {
	if len(code) != models.CodeLength {
		return fmt.Errorf("%w: invalid party code", common.ErrorValidation)
	}
	return nil
}
