package ports

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// AuthService issues and verifies admin credentials. Everything downstream of
// the auth middleware trusts the identity it produced.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Admin, error)
	Login(ctx context.Context, username, password string) (string, *domain.Admin, error)
}
