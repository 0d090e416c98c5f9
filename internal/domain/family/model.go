package family

import (
	"time"

	"happi-app-go/internal/domain/user"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

const (
	RelationshipSelf    = "self"
	RelationshipSpouse  = "spouse"
	RelationshipChild   = "child"
	RelationshipParent  = "parent"
	RelationshipSibling = "sibling"
	RelationshipOther   = "other"
)

const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationCancelled = "cancelled"
)

type Group struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Group) TableName() string {
	return "family_groups"
}

// Member rows exist for the owner too (role owner, relationship self), so
// user_id is unique across all groups.
type Member struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyGroupID string    `gorm:"type:uuid;not null;index" json:"family_group_id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Relationship  string    `gorm:"type:varchar(16);not null" json:"relationship"`
	Role          string    `gorm:"type:varchar(16);not null" json:"role"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	JoinedAt      time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User *user.User `gorm:"foreignKey:UserID" json:"-"`
}

func (Member) TableName() string {
	return "family_members"
}

type Invitation struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyGroupID string    `gorm:"type:uuid;not null;index" json:"family_group_id"`
	Email         string    `gorm:"not null" json:"email"`
	Relationship  string    `gorm:"type:varchar(16);not null" json:"relationship"`
	Token         string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Status        string    `gorm:"type:varchar(16);not null" json:"status"`
	ExpiresAt     time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Group *Group `gorm:"foreignKey:FamilyGroupID" json:"group,omitempty"`
}

func (Invitation) TableName() string {
	return "family_invitations"
}

type MemberView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Relationship string    `json:"relationship"`
	Role         string    `json:"role"`
	IsOwner      bool      `json:"is_owner"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Overview is a user's family page. Group is nil when the user has none.
type Overview struct {
	Group              *Group       `json:"family_group"`
	Members            []MemberView `json:"members"`
	PendingInvitations []Invitation `json:"pending_invitations"`
	IsOwner            bool         `json:"is_owner"`
}

type JoinView struct {
	Invitation  Invitation `json:"invitation"`
	Group       Group      `json:"family_group"`
	UserMatches bool       `json:"user_matches"`
}

// Viewer is the authenticated caller of the public invitation routes.
type Viewer struct {
	UserID string
	Email  string
}

type CreateGroupInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type InviteInput struct {
	Email        string `json:"email" validate:"required,email,max=255"`
	Relationship string `json:"relationship" validate:"required,oneof=spouse child parent sibling other"`
}

type UpdateMemberInput struct {
	Relationship string `json:"relationship" validate:"required,oneof=spouse child parent sibling other"`
}
