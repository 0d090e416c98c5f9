package insurance

import (
	"context"
	"time"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/user"
	"happi-app-go/internal/domain/vehicles"
)

type Repository interface {
	ledger.Recorder

	Transaction(ctx context.Context, fn func(Repository) error) error
	GetUser(ctx context.Context, userID string) (*user.User, error)
	GetActiveProduct(ctx context.Context, productID string) (*catalog.Product, error)
	GetVehicle(ctx context.Context, userID, vehicleID string) (*vehicles.Vehicle, error)
	ListVehicles(ctx context.Context, userID string) ([]vehicles.Vehicle, error)
	PolicyNumberExists(ctx context.Context, number string) (bool, error)
	CreatePolicy(ctx context.Context, policy *Policy) error
	GetPolicy(ctx context.Context, userID, policyID string) (*Policy, error)
	RenewPolicy(ctx context.Context, policyID string, expiresAt time.Time) error
	ListPolicies(ctx context.Context, userID string) ([]Policy, error)
	ActivePolicies(ctx context.Context, userID string, now time.Time, limit int) ([]Policy, error)
	ExpiringBetween(ctx context.Context, userID string, from, to time.Time) ([]Policy, error)
}
