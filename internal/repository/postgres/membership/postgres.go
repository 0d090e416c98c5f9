package membership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	domain "happi-app-go/internal/domain/membership"
	"happi-app-go/internal/domain/user"
	ledgerrepo "happi-app-go/internal/repository/postgres/ledger"
)

type PostgresRepository struct {
	ledger.Recorder
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{Recorder: ledgerrepo.NewPostgres(db), db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgres(tx))
	})
}

func (r *PostgresRepository) GetUser(ctx context.Context, userID string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) ListActivePlans(ctx context.Context) ([]catalog.Plan, error) {
	var plans []catalog.Plan
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price asc").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PostgresRepository) GetActivePlan(ctx context.Context, planID string) (*catalog.Plan, error) {
	if uuid.Validate(planID) != nil {
		return nil, catalog.ErrPlanNotFound
	}
	return r.findPlan(ctx, "id = ? AND is_active = ?", planID, true)
}

func (r *PostgresRepository) GetActivePlanByTier(ctx context.Context, tier string) (*catalog.Plan, error) {
	return r.findPlan(ctx, "tier = ? AND is_active = ?", tier, true)
}

func (r *PostgresRepository) findPlan(ctx context.Context, query string, args ...interface{}) (*catalog.Plan, error) {
	var plan catalog.Plan
	err := r.db.WithContext(ctx).Where(query, args...).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PostgresRepository) UpdateMembership(ctx context.Context, userID, tier string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"membership_tier":       tier,
			"membership_expires_at": expiresAt,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
