package vehicles

import "time"

type Vehicle struct {
	ID                   string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Make                 string    `gorm:"not null" json:"make"`
	Model                string    `gorm:"not null" json:"model"`
	Year                 string    `gorm:"size:4;not null" json:"year"`
	LicensePlate         string    `gorm:"size:20;not null" json:"license_plate"`
	VIN                  *string   `gorm:"column:vin;size:17" json:"vin"`
	Color                *string   `gorm:"size:50" json:"color"`
	VehicleCardImagePath *string   `gorm:"column:vehicle_card_image_path" json:"vehicle_card_image_path"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	HasInsurance        bool   `gorm:"-" json:"has_insurance"`
	VehicleCardImageURL string `gorm:"-" json:"vehicle_card_image_url,omitempty"`
}

// PolicySummary is the slice of a policy shown on a vehicle page.
type PolicySummary struct {
	ID           string    `json:"id"`
	PolicyNumber string    `json:"policy_number"`
	ProductName  string    `json:"product_name"`
	Status       string    `json:"status"`
	StartsAt     time.Time `json:"starts_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Detail struct {
	Vehicle        Vehicle         `json:"vehicle"`
	ActivePolicies []PolicySummary `json:"active_policies"`
}

type Input struct {
	Make         string  `json:"make" validate:"required,max=255"`
	Model        string  `json:"model" validate:"required,max=255"`
	Year         string  `json:"year" validate:"required,max=4"`
	LicensePlate string  `json:"license_plate" validate:"required,max=20"`
	VIN          *string `json:"vin" validate:"omitempty,max=17"`
	Color        *string `json:"color" validate:"omitempty,max=50"`
}

// Image is an uploaded vehicle card scan.
type Image struct {
	Filename string
	Data     []byte
}
