package family

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	GetGroupByOwner(ctx context.Context, ownerID string) (*Group, error)
	GetMembership(ctx context.Context, userID string) (*Member, error)
	CreateGroup(ctx context.Context, group *Group) error
	AddMember(ctx context.Context, member *Member) error
	ListMembers(ctx context.Context, groupID string) ([]Member, error)
	GetMember(ctx context.Context, groupID, memberID string) (*Member, error)
	UpdateMemberRelationship(ctx context.Context, memberID, relationship string) error
	DeleteMember(ctx context.Context, memberID string) error
	IsMemberEmail(ctx context.Context, groupID, email string) (bool, error)
	HasPendingInvitation(ctx context.Context, groupID, email string) (bool, error)
	CreateInvitation(ctx context.Context, invitation *Invitation) error
	GetPendingInvitationByToken(ctx context.Context, token string, now time.Time) (*Invitation, error)
	GetInvitation(ctx context.Context, groupID, invitationID string) (*Invitation, error)
	ListPendingInvitations(ctx context.Context, groupID string) ([]Invitation, error)
	SetInvitationStatus(ctx context.Context, invitationID, status string) error
}
