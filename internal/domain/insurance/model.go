package insurance

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/vehicles"
)

const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Policy is a purchased insurance product. Rows are never hard deleted.
type Policy struct {
	ID                 string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string          `gorm:"type:uuid;not null;index" json:"user_id"`
	InsuranceProductID string          `gorm:"type:uuid;not null" json:"insurance_product_id"`
	VehicleID          *string         `gorm:"type:uuid;index" json:"vehicle_id"`
	PolicyNumber       string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"policy_number"`
	PricePaid          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_paid"`
	StartsAt           time.Time       `gorm:"not null" json:"starts_at"`
	ExpiresAt          time.Time       `gorm:"not null" json:"expires_at"`
	Status             string          `gorm:"type:varchar(16);not null" json:"status"`
	PolicyData         datatypes.JSON  `json:"policy_data"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Product *catalog.Product  `gorm:"foreignKey:InsuranceProductID" json:"product,omitempty"`
	Vehicle *vehicles.Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

func (Policy) TableName() string {
	return "user_insurances"
}

// IsActiveAt reports whether the policy covers now.
func (p Policy) IsActiveAt(now time.Time) bool {
	return p.Status == StatusActive && p.ExpiresAt.After(now)
}

// DaysRemaining rounds down; expired policies report 0.
func (p Policy) DaysRemaining(now time.Time) int {
	if !p.ExpiresAt.After(now) {
		return 0
	}
	return int(p.ExpiresAt.Sub(now) / (24 * time.Hour))
}

type policySnapshot struct {
	ProductName     string  `json:"product_name"`
	Category        string  `json:"category"`
	CoverageDetails string  `json:"coverage_details"`
	DurationDays    int     `json:"duration_days"`
	VehiclePlate    *string `json:"vehicle_license_plate,omitempty"`
}

// Result is what a purchase or renewal produced.
type Result struct {
	Policy       Policy             `json:"policy"`
	Payment      ledger.Transaction `json:"payment"`
	CoinsAwarded int64              `json:"coins_awarded"`
}

type ProductPage struct {
	Product  catalog.Product    `json:"product"`
	Vehicles []vehicles.Vehicle `json:"vehicles"`
}

type CheckoutPage struct {
	Product  catalog.Product    `json:"product"`
	Vehicle  *vehicles.Vehicle  `json:"vehicle"`
	Vehicles []vehicles.Vehicle `json:"vehicles"`
}
