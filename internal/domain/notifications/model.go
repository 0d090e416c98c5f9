package notifications

import (
	"time"

	"happi-app-go/internal/domain/reference"
)

type Notification struct {
	ID        string        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string        `gorm:"type:varchar(64);not null" json:"type"`
	Title     string        `gorm:"not null" json:"title"`
	Message   string        `gorm:"not null" json:"message"`
	Reference reference.Ref `gorm:"embedded;embeddedPrefix:reference_" json:"reference"`
	IsRead    bool          `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
