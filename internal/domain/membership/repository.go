package membership

import (
	"context"
	"time"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/user"
)

type Repository interface {
	ledger.Recorder

	Transaction(ctx context.Context, fn func(Repository) error) error
	GetUser(ctx context.Context, userID string) (*user.User, error)
	ListActivePlans(ctx context.Context) ([]catalog.Plan, error)
	GetActivePlan(ctx context.Context, planID string) (*catalog.Plan, error)
	GetActivePlanByTier(ctx context.Context, tier string) (*catalog.Plan, error)
	UpdateMembership(ctx context.Context, userID, tier string, expiresAt time.Time) error
}
