package family

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"happi-app-go/internal/events"
	"happi-app-go/internal/validation"
)

const (
	invitationTokenLength = 32
	invitationTTL         = 7 * 24 * time.Hour
)

type Service struct {
	repo   Repository
	events events.Publisher
	now    func() time.Time
}

func NewService(repo Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:   repo,
		events: publisher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateGroup makes userID the owner of a new group. Owners and members of
// another group are rejected.
func (s *Service) CreateGroup(ctx context.Context, userID string, input CreateGroupInput) (*Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var result Group
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetMembership(ctx, userID); err == nil {
			return ErrAlreadyInGroup
		} else if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		group := Group{
			ID:      uuid.NewString(),
			OwnerID: userID,
			Name:    input.Name,
		}
		if err := tx.CreateGroup(ctx, &group); err != nil {
			return err
		}

		owner := Member{
			ID:            uuid.NewString(),
			FamilyGroupID: group.ID,
			UserID:        userID,
			Relationship:  RelationshipSelf,
			Role:          RoleOwner,
			IsActive:      true,
		}
		if err := tx.AddMember(ctx, &owner); err != nil {
			return err
		}

		result = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) Invite(ctx context.Context, ownerID string, input InviteInput) (*Invitation, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Relationship = strings.ToLower(strings.TrimSpace(input.Relationship))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		result Invitation
		group  *Group
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		group, err = tx.GetGroupByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		member, err := tx.IsMemberEmail(ctx, group.ID, input.Email)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}

		pending, err := tx.HasPendingInvitation(ctx, group.ID, input.Email)
		if err != nil {
			return err
		}
		if pending {
			return ErrInvitationPending
		}

		token, err := generateToken(invitationTokenLength)
		if err != nil {
			return err
		}

		invitation := Invitation{
			ID:            uuid.NewString(),
			FamilyGroupID: group.ID,
			Email:         input.Email,
			Relationship:  input.Relationship,
			Token:         token,
			Status:        InvitationPending,
			ExpiresAt:     now.Add(invitationTTL),
		}
		if err := tx.CreateInvitation(ctx, &invitation); err != nil {
			return err
		}

		result = invitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Type:       events.TypeInvitationCreated,
		OccurredAt: now,
		Payload: events.InvitationCreated{
			InvitationID: result.ID,
			GroupID:      group.ID,
			GroupName:    group.Name,
			InvitedBy:    ownerID,
			Email:        result.Email,
			Relationship: result.Relationship,
			Token:        result.Token,
			ExpiresAt:    result.ExpiresAt,
		},
	})
	return &result, nil
}

// Join resolves a pending, unexpired invitation for the public join page.
func (s *Service) Join(ctx context.Context, token string, viewer *Viewer) (*JoinView, error) {
	invitation, err := s.repo.GetPendingInvitationByToken(ctx, strings.TrimSpace(token), s.now())
	if err != nil {
		return nil, err
	}

	group := invitation.Group
	if group == nil {
		group, err = s.repo.GetGroup(ctx, invitation.FamilyGroupID)
		if err != nil {
			return nil, err
		}
	}

	view := &JoinView{
		Invitation:  *invitation,
		Group:       *group,
		UserMatches: viewer != nil && viewer.Email == invitation.Email,
	}
	view.Invitation.Group = nil
	return view, nil
}

// Accept adds the viewer to the inviting group. A viewer who already belongs
// to a group gets the invitation declined, which is kept, and ErrAlreadyInGroup.
func (s *Service) Accept(ctx context.Context, token string, viewer *Viewer) (*Group, error) {
	token = strings.TrimSpace(token)
	now := s.now()

	var (
		result   Group
		declined bool
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		invitation, err := tx.GetPendingInvitationByToken(ctx, token, now)
		if err != nil {
			return err
		}
		if viewer == nil || viewer.Email != invitation.Email {
			return ErrEmailMismatch
		}

		if _, err := tx.GetMembership(ctx, viewer.UserID); err == nil {
			declined = true
			return tx.SetInvitationStatus(ctx, invitation.ID, InvitationDeclined)
		} else if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		member := Member{
			ID:            uuid.NewString(),
			FamilyGroupID: invitation.FamilyGroupID,
			UserID:        viewer.UserID,
			Relationship:  invitation.Relationship,
			Role:          RoleMember,
			IsActive:      true,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}
		if err := tx.SetInvitationStatus(ctx, invitation.ID, InvitationAccepted); err != nil {
			return err
		}

		group, err := tx.GetGroup(ctx, invitation.FamilyGroupID)
		if err != nil {
			return err
		}
		result = *group
		return nil
	})
	if err != nil {
		return nil, err
	}
	if declined {
		return nil, ErrAlreadyInGroup
	}
	return &result, nil
}

func (s *Service) CancelInvitation(ctx context.Context, ownerID, invitationID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		group, err := tx.GetGroupByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		invitation, err := tx.GetInvitation(ctx, group.ID, invitationID)
		if err != nil {
			return err
		}
		if invitation.Status != InvitationPending {
			return ErrInvitationNotFound
		}
		return tx.SetInvitationStatus(ctx, invitation.ID, InvitationCancelled)
	})
}

func (s *Service) UpdateMember(ctx context.Context, ownerID, memberID string, input UpdateMemberInput) (*Member, error) {
	input.Relationship = strings.ToLower(strings.TrimSpace(input.Relationship))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var result Member
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := s.ownedMember(ctx, tx, ownerID, memberID)
		if err != nil {
			return err
		}
		if err := tx.UpdateMemberRelationship(ctx, member.ID, input.Relationship); err != nil {
			return err
		}
		member.Relationship = input.Relationship
		result = *member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) RemoveMember(ctx context.Context, ownerID, memberID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := s.ownedMember(ctx, tx, ownerID, memberID)
		if err != nil {
			return err
		}
		return tx.DeleteMember(ctx, member.ID)
	})
}

func (s *Service) ownedMember(ctx context.Context, tx Repository, ownerID, memberID string) (*Member, error) {
	group, err := tx.GetGroupByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	member, err := tx.GetMember(ctx, group.ID, memberID)
	if err != nil {
		return nil, err
	}
	if member.Role == RoleOwner {
		return nil, ErrCannotChangeOwner
	}
	return member, nil
}

// OwnedGroup returns the group userID owns.
func (s *Service) OwnedGroup(ctx context.Context, userID string) (*Group, error) {
	return s.repo.GetGroupByOwner(ctx, userID)
}

// Overview describes the group userID owns or belongs to.
func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	membership, err := s.repo.GetMembership(ctx, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return &Overview{Members: []MemberView{}, PendingInvitations: []Invitation{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, userID, membership.FamilyGroupID)
}

// Show is Overview for an explicit group, visible only to its members.
func (s *Service) Show(ctx context.Context, userID, groupID string) (*Overview, error) {
	membership, err := s.repo.GetMembership(ctx, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if membership.FamilyGroupID != groupID {
		return nil, ErrGroupNotFound
	}
	return s.overview(ctx, userID, groupID)
}

func (s *Service) overview(ctx context.Context, userID, groupID string) (*Overview, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	views := make([]MemberView, 0, len(members))
	for _, member := range members {
		view := MemberView{
			ID:           member.ID,
			UserID:       member.UserID,
			Relationship: member.Relationship,
			Role:         member.Role,
			IsOwner:      member.UserID == group.OwnerID,
			JoinedAt:     member.JoinedAt,
		}
		if member.User != nil {
			view.Name = member.User.Name
			view.Email = member.User.Email
		}
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].IsOwner != views[j].IsOwner {
			return views[i].IsOwner
		}
		return views[i].JoinedAt.Before(views[j].JoinedAt)
	})

	result := &Overview{
		Group:              group,
		Members:            views,
		PendingInvitations: []Invitation{},
		IsOwner:            group.OwnerID == userID,
	}
	if result.IsOwner {
		pending, err := s.repo.ListPendingInvitations(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		if pending != nil {
			result.PendingInvitations = pending
		}
	}
	return result, nil
}

func generateToken(length int) (string, error) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
