package user

import "time"

const TierStandard = "standard"

type User struct {
	ID                  string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string     `gorm:"not null" json:"name"`
	Email               string     `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash        string     `gorm:"column:password_hash;not null" json:"-"`
	PhoneNumber         *string    `gorm:"size:20" json:"phone_number"`
	MembershipTier      string     `gorm:"type:varchar(32);not null;default:standard" json:"membership_tier"`
	HappiCoins          int64      `gorm:"not null;default:0" json:"happi_coins"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasActiveMembership reports whether a paid tier is in effect at now.
func (u User) HasActiveMembership(now time.Time) bool {
	return u.MembershipTier != TierStandard && u.MembershipExpiresAt != nil && u.MembershipExpiresAt.After(now)
}
