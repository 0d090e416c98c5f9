// Package repotest opens throwaway SQLite databases carrying the schema the
// gorm repositories expect.
package repotest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"happi-app-go/internal/db"
	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/family"
	"happi-app-go/internal/domain/insurance"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/notifications"
	"happi-app-go/internal/domain/user"
	"happi-app-go/internal/domain/vehicles"
)

// Open returns an in-memory database closed at the end of the test. A single
// connection keeps every query on the same in-memory schema.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), db.GormConfig())
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gormDB.AutoMigrate(
		&user.User{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Plan{},
		&vehicles.Vehicle{},
		&insurance.Policy{},
		&ledger.Transaction{},
		&ledger.CoinEntry{},
		&notifications.Notification{},
		&family.Group{},
		&family.Member{},
		&family.Invitation{},
	))
	require.NoError(t, gormDB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_family_invitations_pending ON family_invitations (family_group_id, email) WHERE status = 'pending'",
	).Error)

	return gormDB
}

func CreateUser(t *testing.T, gormDB *gorm.DB, email string) *user.User {
	t.Helper()

	u := &user.User{
		ID:             uuid.NewString(),
		Name:           "User " + email,
		Email:          email,
		PasswordHash:   "hash",
		MembershipTier: user.TierStandard,
	}
	require.NoError(t, gormDB.Create(u).Error)
	return u
}

func CreateCategory(t *testing.T, gormDB *gorm.DB, slug string, order int) *catalog.Category {
	t.Helper()

	category := &catalog.Category{
		ID:           uuid.NewString(),
		Name:         slug,
		Slug:         slug,
		DisplayOrder: order,
		IsActive:     true,
	}
	require.NoError(t, gormDB.Create(category).Error)
	return category
}

func CreateProduct(t *testing.T, gormDB *gorm.DB, category *catalog.Category, slug string, price string) *catalog.Product {
	t.Helper()

	product := &catalog.Product{
		ID:               uuid.NewString(),
		CategoryID:       category.ID,
		Name:             slug,
		Slug:             slug,
		BasePrice:        decimal.RequireFromString(price),
		HappiCoinsReward: 50,
		DurationDays:     365,
		IsActive:         true,
	}
	require.NoError(t, gormDB.Create(product).Error)
	return product
}

func CreatePlan(t *testing.T, gormDB *gorm.DB, tier string, price string) *catalog.Plan {
	t.Helper()

	plan := &catalog.Plan{
		ID:               uuid.NewString(),
		Name:             tier,
		Tier:             tier,
		Price:            decimal.RequireFromString(price),
		DurationDays:     365,
		HappiCoinsReward: 100,
		IsActive:         true,
	}
	require.NoError(t, gormDB.Create(plan).Error)
	return plan
}

func CreateVehicle(t *testing.T, gormDB *gorm.DB, userID string) *vehicles.Vehicle {
	t.Helper()

	vehicle := &vehicles.Vehicle{
		ID:           uuid.NewString(),
		UserID:       userID,
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         "2020",
		LicensePlate: "B 1234 XY",
	}
	require.NoError(t, gormDB.Create(vehicle).Error)
	return vehicle
}

// CreatePolicy stores an active policy expiring at expiresAt.
func CreatePolicy(t *testing.T, gormDB *gorm.DB, userID, productID string, vehicleID *string, expiresAt time.Time) *insurance.Policy {
	t.Helper()

	policy := &insurance.Policy{
		ID:                 uuid.NewString(),
		UserID:             userID,
		InsuranceProductID: productID,
		VehicleID:          vehicleID,
		PolicyNumber:       "HAP-TST-" + uuid.NewString()[:6],
		PricePaid:          decimal.RequireFromString("100.00"),
		StartsAt:           expiresAt.AddDate(-1, 0, 0),
		ExpiresAt:          expiresAt,
		Status:             insurance.StatusActive,
	}
	require.NoError(t, gormDB.Omit("Product", "Vehicle").Create(policy).Error)
	return policy
}
