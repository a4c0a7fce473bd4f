//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package user

import (
	"context"

	"github.com/google/uuid"
)

type DBRepo interface {
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, displayName, avatarURL *string) error
}
