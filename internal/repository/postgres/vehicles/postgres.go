package vehicles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "happi-app-go/internal/domain/vehicles"
)

const policyStatusActive = "active"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Vehicle, error) {
	var list []domain.Vehicle
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*domain.Vehicle, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrVehicleNotFound
	}
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *PostgresRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *PostgresRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Vehicle{}).
		Where("id = ? AND user_id = ?", vehicle.ID, vehicle.UserID).
		Updates(map[string]interface{}{
			"make":                    vehicle.Make,
			"model":                   vehicle.Model,
			"year":                    vehicle.Year,
			"license_plate":           vehicle.LicensePlate,
			"vin":                     vehicle.VIN,
			"color":                   vehicle.Color,
			"vehicle_card_image_path": vehicle.VehicleCardImagePath,
			"updated_at":              time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

// Delete detaches the vehicle from its policies before removing it, matching
// the ON DELETE SET NULL constraint for stores that do not enforce it.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Table("user_insurances").
		Where("vehicle_id = ?", id).
		Update("vehicle_id", nil).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&domain.Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

func (r *PostgresRepository) InsuredVehicleIDs(ctx context.Context, userID string, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("user_insurances").
		Distinct("vehicle_id").
		Where("user_id = ? AND vehicle_id IS NOT NULL AND status = ? AND expires_at > ?", userID, policyStatusActive, now).
		Pluck("vehicle_id", &ids).Error
	return ids, err
}

func (r *PostgresRepository) ActivePolicies(ctx context.Context, vehicleID string, now time.Time) ([]domain.PolicySummary, error) {
	var summaries []domain.PolicySummary
	err := r.db.WithContext(ctx).
		Table("user_insurances").
		Select("user_insurances.id, user_insurances.policy_number, insurance_products.name AS product_name, user_insurances.status, user_insurances.starts_at, user_insurances.expires_at").
		Joins("join insurance_products on insurance_products.id = user_insurances.insurance_product_id").
		Where("user_insurances.vehicle_id = ? AND user_insurances.status = ? AND user_insurances.expires_at > ?", vehicleID, policyStatusActive, now).
		Order("user_insurances.expires_at asc").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
