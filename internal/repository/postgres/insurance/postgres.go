package insurance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"happi-app-go/internal/domain/catalog"
	domain "happi-app-go/internal/domain/insurance"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/user"
	"happi-app-go/internal/domain/vehicles"
	ledgerrepo "happi-app-go/internal/repository/postgres/ledger"
)

// PostgresRepository writes payments and coin entries through the ledger
// repository bound to the same handle, so a workflow transaction covers them.
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

func (r *PostgresRepository) GetActiveProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	if uuid.Validate(productID) != nil {
		return nil, catalog.ErrProductNotFound
	}
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *PostgresRepository) GetVehicle(ctx context.Context, userID, vehicleID string) (*vehicles.Vehicle, error) {
	if uuid.Validate(vehicleID) != nil {
		return nil, vehicles.ErrVehicleNotFound
	}
	var vehicle vehicles.Vehicle
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", vehicleID, userID).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, vehicles.ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *PostgresRepository) ListVehicles(ctx context.Context, userID string) ([]vehicles.Vehicle, error) {
	var list []vehicles.Vehicle
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresRepository) PolicyNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Policy{}).
		Where("policy_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresRepository) CreatePolicy(ctx context.Context, policy *domain.Policy) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(policy).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrPolicyNumberTaken
	}
	return err
}

func (r *PostgresRepository) GetPolicy(ctx context.Context, userID, policyID string) (*domain.Policy, error) {
	if uuid.Validate(policyID) != nil {
		return nil, domain.ErrPolicyNotFound
	}
	var policy domain.Policy
	err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Preload("Vehicle").
		Where("id = ? AND user_id = ?", policyID, userID).
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *PostgresRepository) RenewPolicy(ctx context.Context, policyID string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Policy{}).
		Where("id = ?", policyID).
		Updates(map[string]interface{}{
			"expires_at": expiresAt,
			"status":     domain.StatusActive,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPolicyNotFound
	}
	return nil
}

func (r *PostgresRepository) ListPolicies(ctx context.Context, userID string) ([]domain.Policy, error) {
	var policies []domain.Policy
	if err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Preload("Vehicle").
		Where("user_id = ?", userID).
		Order("expires_at desc").
		Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *PostgresRepository) ActivePolicies(ctx context.Context, userID string, now time.Time, limit int) ([]domain.Policy, error) {
	var policies []domain.Policy
	query := r.db.WithContext(ctx).
		Preload("Product.Category").
		Preload("Vehicle").
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, domain.StatusActive, now).
		Order("expires_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

// ExpiringBetween returns active policies with from < expires_at <= to.
func (r *PostgresRepository) ExpiringBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Policy, error) {
	var policies []domain.Policy
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND status = ? AND expires_at > ? AND expires_at <= ?", userID, domain.StatusActive, from, to).
		Order("expires_at asc").
		Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}
