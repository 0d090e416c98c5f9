package family

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	familydomain "happi-app-go/internal/domain/family"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetGroup(ctx context.Context, groupID string) (*familydomain.Group, error) {
	if uuid.Validate(groupID) != nil {
		return nil, familydomain.ErrGroupNotFound
	}
	var group familydomain.Group
	if err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *PostgresRepository) GetGroupByOwner(ctx context.Context, ownerID string) (*familydomain.Group, error) {
	var group familydomain.Group
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *PostgresRepository) GetMembership(ctx context.Context, userID string) (*familydomain.Member, error) {
	var member familydomain.Member
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// CreateGroup relies on the owner_id unique index for racing creators.
func (r *PostgresRepository) CreateGroup(ctx context.Context, group *familydomain.Group) error {
	err := r.db.WithContext(ctx).Create(group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return familydomain.ErrAlreadyInGroup
	}
	return err
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *familydomain.Member) error {
	err := r.db.WithContext(ctx).Omit("User").Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return familydomain.ErrAlreadyInGroup
	}
	return err
}

func (r *PostgresRepository) ListMembers(ctx context.Context, groupID string) ([]familydomain.Member, error) {
	var members []familydomain.Member
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("family_group_id = ?", groupID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, groupID, memberID string) (*familydomain.Member, error) {
	if uuid.Validate(memberID) != nil {
		return nil, familydomain.ErrMemberNotFound
	}
	var member familydomain.Member
	if err := r.db.WithContext(ctx).Where("id = ? AND family_group_id = ?", memberID, groupID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) UpdateMemberRelationship(ctx context.Context, memberID, relationship string) error {
	return r.db.WithContext(ctx).Model(&familydomain.Member{}).
		Where("id = ?", memberID).
		Update("relationship", relationship).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, memberID string) error {
	return r.db.WithContext(ctx).Delete(&familydomain.Member{}, "id = ?", memberID).Error
}

func (r *PostgresRepository) IsMemberEmail(ctx context.Context, groupID, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("family_members").
		Joins("join users on users.id = family_members.user_id").
		Where("family_members.family_group_id = ? AND users.email = ?", groupID, email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) HasPendingInvitation(ctx context.Context, groupID, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&familydomain.Invitation{}).
		Where("family_group_id = ? AND email = ? AND status = ?", groupID, email, familydomain.InvitationPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateInvitation maps the partial unique index on pending (group, email)
// pairs to ErrInvitationPending.
func (r *PostgresRepository) CreateInvitation(ctx context.Context, invitation *familydomain.Invitation) error {
	err := r.db.WithContext(ctx).Omit("Group").Create(invitation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return familydomain.ErrInvitationPending
	}
	return err
}

func (r *PostgresRepository) GetPendingInvitationByToken(ctx context.Context, token string, now time.Time) (*familydomain.Invitation, error) {
	var invitation familydomain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("token = ? AND status = ? AND expires_at > ?", token, familydomain.InvitationPending, now).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, familydomain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *PostgresRepository) GetInvitation(ctx context.Context, groupID, invitationID string) (*familydomain.Invitation, error) {
	if uuid.Validate(invitationID) != nil {
		return nil, familydomain.ErrInvitationNotFound
	}
	var invitation familydomain.Invitation
	err := r.db.WithContext(ctx).
		Where("id = ? AND family_group_id = ?", invitationID, groupID).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, familydomain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *PostgresRepository) ListPendingInvitations(ctx context.Context, groupID string) ([]familydomain.Invitation, error) {
	var invitations []familydomain.Invitation
	if err := r.db.WithContext(ctx).
		Where("family_group_id = ? AND status = ?", groupID, familydomain.InvitationPending).
		Order("created_at desc").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *PostgresRepository) SetInvitationStatus(ctx context.Context, invitationID, status string) error {
	return r.db.WithContext(ctx).Model(&familydomain.Invitation{}).
		Where("id = ?", invitationID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
