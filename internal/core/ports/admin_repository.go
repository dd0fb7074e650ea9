package ports

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// AdminRepository defines the interface for admin credential persistence.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	FindByUsername(ctx context.Context, username string) (*domain.Admin, error)
}
