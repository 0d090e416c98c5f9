package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const SlugAuto = "auto"

type Category struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Slug         string    `gorm:"not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"not null" json:"description"`
	Icon         *string   `json:"icon"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (Category) TableName() string {
	return "insurance_categories"
}

type Product struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID       string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Name             string          `gorm:"not null" json:"name"`
	Slug             string          `gorm:"not null;uniqueIndex" json:"slug"`
	ShortDescription string          `gorm:"not null" json:"short_description"`
	Description      string          `gorm:"not null" json:"description"`
	BasePrice        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_price"`
	HappiCoinsReward int64           `gorm:"not null;default:0" json:"happi_coins_reward"`
	CoverageDetails  string          `gorm:"not null" json:"coverage_details"`
	DurationDays     int             `gorm:"not null" json:"duration_days"`
	IsFeatured       bool            `gorm:"not null;default:false" json:"is_featured"`
	IsPopular        bool            `gorm:"not null;default:false" json:"is_popular"`
	IsActive         bool            `gorm:"not null" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "insurance_products"
}

// IsAuto reports whether policies for this product attach to a vehicle.
func (p Product) IsAuto() bool {
	return p.Category != nil && p.Category.Slug == SlugAuto
}

type Plan struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string          `gorm:"not null" json:"name"`
	Tier             string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"tier"`
	Price            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	DurationDays     int             `gorm:"not null" json:"duration_days"`
	HappiCoinsReward int64           `gorm:"not null;default:0" json:"happi_coins_reward"`
	Description      string          `gorm:"not null" json:"description"`
	Benefits         string          `gorm:"not null" json:"benefits"`
	IsActive         bool            `gorm:"not null" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "memberships"
}
