package vehicles

import (
	"context"
	"io"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListByUser(ctx context.Context, userID string) ([]Vehicle, error)
	Get(ctx context.Context, userID, id string) (*Vehicle, error)
	Create(ctx context.Context, vehicle *Vehicle) error
	Update(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id string) error
	InsuredVehicleIDs(ctx context.Context, userID string, now time.Time) ([]string, error)
	ActivePolicies(ctx context.Context, vehicleID string, now time.Time) ([]PolicySummary, error)
}

// ImageStore keeps uploaded vehicle card images under opaque keys.
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
