package family

import (
	"context"
	"errors"
	"testing"
	"time"

	"happi-app-go/internal/domain/user"
	"happi-app-go/internal/events"
	"happi-app-go/internal/validation"
)

type fakeFamilyRepo struct {
	groups      map[string]*Group
	members     map[string]*Member
	invitations map[string]*Invitation
	users       map[string]*user.User
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{
		groups:      make(map[string]*Group),
		members:     make(map[string]*Member),
		invitations: make(map[string]*Invitation),
		users:       make(map[string]*user.User),
	}
}

func (r *fakeFamilyRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeFamilyRepo) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	group, ok := r.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (r *fakeFamilyRepo) GetGroupByOwner(ctx context.Context, ownerID string) (*Group, error) {
	for _, group := range r.groups {
		if group.OwnerID == ownerID {
			copied := *group
			return &copied, nil
		}
	}
	return nil, ErrGroupNotFound
}

func (r *fakeFamilyRepo) GetMembership(ctx context.Context, userID string) (*Member, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeFamilyRepo) CreateGroup(ctx context.Context, group *Group) error {
	for _, existing := range r.groups {
		if existing.OwnerID == group.OwnerID {
			return ErrAlreadyInGroup
		}
	}
	copied := *group
	r.groups[group.ID] = &copied
	return nil
}

func (r *fakeFamilyRepo) AddMember(ctx context.Context, member *Member) error {
	if _, exists := r.members[member.UserID]; exists {
		return ErrAlreadyInGroup
	}
	copied := *member
	if copied.JoinedAt.IsZero() {
		copied.JoinedAt = time.Now()
	}
	r.members[member.UserID] = &copied
	return nil
}

func (r *fakeFamilyRepo) ListMembers(ctx context.Context, groupID string) ([]Member, error) {
	result := make([]Member, 0)
	for _, member := range r.members {
		if member.FamilyGroupID == groupID {
			copied := *member
			copied.User = r.users[member.UserID]
			result = append(result, copied)
		}
	}
	return result, nil
}

func (r *fakeFamilyRepo) GetMember(ctx context.Context, groupID, memberID string) (*Member, error) {
	for _, member := range r.members {
		if member.ID == memberID && member.FamilyGroupID == groupID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *fakeFamilyRepo) UpdateMemberRelationship(ctx context.Context, memberID, relationship string) error {
	for _, member := range r.members {
		if member.ID == memberID {
			member.Relationship = relationship
			return nil
		}
	}
	return ErrMemberNotFound
}

func (r *fakeFamilyRepo) DeleteMember(ctx context.Context, memberID string) error {
	for userID, member := range r.members {
		if member.ID == memberID {
			delete(r.members, userID)
		}
	}
	return nil
}

func (r *fakeFamilyRepo) IsMemberEmail(ctx context.Context, groupID, email string) (bool, error) {
	for userID, member := range r.members {
		if member.FamilyGroupID != groupID {
			continue
		}
		if u, ok := r.users[userID]; ok && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFamilyRepo) HasPendingInvitation(ctx context.Context, groupID, email string) (bool, error) {
	for _, invitation := range r.invitations {
		if invitation.FamilyGroupID == groupID && invitation.Email == email && invitation.Status == InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFamilyRepo) CreateInvitation(ctx context.Context, invitation *Invitation) error {
	copied := *invitation
	r.invitations[invitation.ID] = &copied
	return nil
}

func (r *fakeFamilyRepo) GetPendingInvitationByToken(ctx context.Context, token string, now time.Time) (*Invitation, error) {
	for _, invitation := range r.invitations {
		if invitation.Token == token && invitation.Status == InvitationPending && invitation.ExpiresAt.After(now) {
			copied := *invitation
			copied.Group = r.groups[invitation.FamilyGroupID]
			return &copied, nil
		}
	}
	return nil, ErrInvitationNotFound
}

func (r *fakeFamilyRepo) GetInvitation(ctx context.Context, groupID, invitationID string) (*Invitation, error) {
	invitation, ok := r.invitations[invitationID]
	if !ok || invitation.FamilyGroupID != groupID {
		return nil, ErrInvitationNotFound
	}
	copied := *invitation
	return &copied, nil
}

func (r *fakeFamilyRepo) ListPendingInvitations(ctx context.Context, groupID string) ([]Invitation, error) {
	var result []Invitation
	for _, invitation := range r.invitations {
		if invitation.FamilyGroupID == groupID && invitation.Status == InvitationPending {
			result = append(result, *invitation)
		}
	}
	return result, nil
}

func (r *fakeFamilyRepo) SetInvitationStatus(ctx context.Context, invitationID, status string) error {
	invitation, ok := r.invitations[invitationID]
	if !ok {
		return ErrInvitationNotFound
	}
	invitation.Status = status
	return nil
}

type capturedEvents struct {
	events []events.Event
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) {
	c.events = append(c.events, event)
}

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *fakeFamilyRepo, publisher events.Publisher) *Service {
	svc := NewService(repo, publisher)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// seedGroup creates group fam-1 owned by owner with one child member.
func seedGroup(repo *fakeFamilyRepo) {
	repo.users["owner"] = &user.User{ID: "owner", Name: "Olga", Email: "olga@example.com"}
	repo.users["kid"] = &user.User{ID: "kid", Name: "Kai", Email: "kai@example.com"}
	repo.groups["fam-1"] = &Group{ID: "fam-1", OwnerID: "owner", Name: "Family"}
	repo.members["kid"] = &Member{ID: "m-kid", FamilyGroupID: "fam-1", UserID: "kid", Role: RoleMember, Relationship: RelationshipChild, JoinedAt: fixedNow.Add(-time.Hour)}
	repo.members["owner"] = &Member{ID: "m-owner", FamilyGroupID: "fam-1", UserID: "owner", Role: RoleOwner, Relationship: RelationshipSelf, JoinedAt: fixedNow.Add(-2 * time.Hour)}
}

func TestCreateGroupSuccess(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := newTestService(repo, nil)

	result, err := svc.CreateGroup(context.Background(), "user-1", CreateGroupInput{Name: "  The Smiths  "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "The Smiths" {
		t.Fatalf("expected name trimmed, got %q", result.Name)
	}
	if result.OwnerID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", result.OwnerID)
	}
	member, ok := repo.members["user-1"]
	if !ok {
		t.Fatalf("expected owner member row created")
	}
	if member.Role != RoleOwner || member.Relationship != RelationshipSelf {
		t.Fatalf("unexpected owner row %+v", member)
	}
	if member.FamilyGroupID != result.ID {
		t.Fatalf("expected member group %s, got %s", result.ID, member.FamilyGroupID)
	}
}

func TestCreateGroupWhileMemberFails(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	svc := newTestService(repo, nil)

	if _, err := svc.CreateGroup(context.Background(), "kid", CreateGroupInput{Name: "Mine"}); !errors.Is(err, ErrAlreadyInGroup) {
		t.Fatalf("expected ErrAlreadyInGroup for member, got %v", err)
	}
	if _, err := svc.CreateGroup(context.Background(), "owner", CreateGroupInput{Name: "Second"}); !errors.Is(err, ErrAlreadyInGroup) {
		t.Fatalf("expected ErrAlreadyInGroup for owner, got %v", err)
	}
	if len(repo.groups) != 1 {
		t.Fatalf("expected no new group, got %d", len(repo.groups))
	}
}

func TestCreateGroupValidatesName(t *testing.T) {
	svc := newTestService(newFakeFamilyRepo(), nil)

	_, err := svc.CreateGroup(context.Background(), "user-1", CreateGroupInput{Name: "   "})
	if verr, ok := validation.As(err); !ok || verr["name"] == "" {
		t.Fatalf("expected name validation error, got %v", err)
	}
}

func TestInviteCreatesPendingInvitation(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	captured := &capturedEvents{}
	svc := newTestService(repo, captured)

	invitation, err := svc.Invite(context.Background(), "owner", InviteInput{Email: " Spouse@Example.com ", Relationship: "spouse"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if invitation.Status != InvitationPending || invitation.Email != "spouse@example.com" {
		t.Fatalf("unexpected invitation %+v", invitation)
	}
	if len(invitation.Token) != 32 {
		t.Fatalf("expected 32-char token, got %q", invitation.Token)
	}
	if !invitation.ExpiresAt.Equal(fixedNow.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected 7 day expiry, got %v", invitation.ExpiresAt)
	}
	if len(captured.events) != 1 || captured.events[0].Type != events.TypeInvitationCreated {
		t.Fatalf("expected invitation event, got %+v", captured.events)
	}

	if _, err := svc.Invite(context.Background(), "owner", InviteInput{Email: "spouse@example.com", Relationship: "spouse"}); !errors.Is(err, ErrInvitationPending) {
		t.Fatalf("expected ErrInvitationPending, got %v", err)
	}
	if _, err := svc.Invite(context.Background(), "owner", InviteInput{Email: "kai@example.com", Relationship: "child"}); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestInviteRequiresOwnership(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	svc := newTestService(repo, nil)

	if _, err := svc.Invite(context.Background(), "kid", InviteInput{Email: "x@example.com", Relationship: "sibling"}); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	_, err := svc.Invite(context.Background(), "owner", InviteInput{Email: "x@example.com", Relationship: "cousin"})
	if verr, ok := validation.As(err); !ok || verr["relationship"] == "" {
		t.Fatalf("expected relationship validation error, got %v", err)
	}
}

func TestAcceptTwice(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-1", Email: "sam@example.com", Relationship: RelationshipSibling, Token: "tok", Status: InvitationPending, ExpiresAt: fixedNow.Add(time.Hour)}
	svc := newTestService(repo, nil)
	viewer := &Viewer{UserID: "sam", Email: "sam@example.com"}

	group, err := svc.Accept(context.Background(), "tok", viewer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if group.ID != "fam-1" {
		t.Fatalf("expected fam-1, got %s", group.ID)
	}
	if repo.invitations["inv-1"].Status != InvitationAccepted {
		t.Fatalf("expected accepted, got %s", repo.invitations["inv-1"].Status)
	}
	member := repo.members["sam"]
	if member == nil || member.Relationship != RelationshipSibling || member.Role != RoleMember {
		t.Fatalf("unexpected member %+v", member)
	}

	if _, err := svc.Accept(context.Background(), "tok", viewer); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound on second accept, got %v", err)
	}
}

func TestAcceptEmailMismatch(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-1", Email: "sam@example.com", Token: "tok", Status: InvitationPending, ExpiresAt: fixedNow.Add(time.Hour)}
	svc := newTestService(repo, nil)

	if _, err := svc.Accept(context.Background(), "tok", nil); !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("expected ErrEmailMismatch for guest, got %v", err)
	}
	if _, err := svc.Accept(context.Background(), "tok", &Viewer{UserID: "x", Email: "Sam@example.com"}); !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("expected case-sensitive mismatch, got %v", err)
	}
	if repo.invitations["inv-1"].Status != InvitationPending {
		t.Fatalf("expected invitation still pending")
	}
}

func TestAcceptWhileInGroupDeclines(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.groups["fam-2"] = &Group{ID: "fam-2", OwnerID: "other", Name: "Other"}
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-2", Email: "kai@example.com", Token: "tok", Status: InvitationPending, ExpiresAt: fixedNow.Add(time.Hour)}
	svc := newTestService(repo, nil)

	_, err := svc.Accept(context.Background(), "tok", &Viewer{UserID: "kid", Email: "kai@example.com"})
	if !errors.Is(err, ErrAlreadyInGroup) {
		t.Fatalf("expected ErrAlreadyInGroup, got %v", err)
	}
	if repo.invitations["inv-1"].Status != InvitationDeclined {
		t.Fatalf("expected declined, got %s", repo.invitations["inv-1"].Status)
	}
	if repo.members["kid"].FamilyGroupID != "fam-1" {
		t.Fatalf("expected membership unchanged")
	}
}

func TestAcceptExpiredIsNotFound(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-1", Email: "sam@example.com", Token: "tok", Status: InvitationPending, ExpiresAt: fixedNow.Add(-time.Minute)}
	svc := newTestService(repo, nil)

	if _, err := svc.Join(context.Background(), "tok", nil); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound, got %v", err)
	}
}

func TestJoinUserMatches(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-1", Email: "sam@example.com", Token: "tok", Status: InvitationPending, ExpiresAt: fixedNow.Add(time.Hour)}
	svc := newTestService(repo, nil)

	view, err := svc.Join(context.Background(), "tok", &Viewer{UserID: "sam", Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !view.UserMatches || view.Group.ID != "fam-1" {
		t.Fatalf("unexpected view %+v", view)
	}

	view, _ = svc.Join(context.Background(), "tok", nil)
	if view.UserMatches {
		t.Fatalf("expected guest not to match")
	}
}

func TestCancelInvitationScopedToOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.groups["fam-2"] = &Group{ID: "fam-2", OwnerID: "other", Name: "Other"}
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-1", Status: InvitationPending}
	repo.invitations["inv-2"] = &Invitation{ID: "inv-2", FamilyGroupID: "fam-2", Status: InvitationPending}
	svc := newTestService(repo, nil)

	if err := svc.CancelInvitation(context.Background(), "owner", "inv-2"); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound for foreign invitation, got %v", err)
	}
	if err := svc.CancelInvitation(context.Background(), "owner", "inv-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.invitations["inv-1"].Status != InvitationCancelled {
		t.Fatalf("expected cancelled, got %s", repo.invitations["inv-1"].Status)
	}
	if err := svc.CancelInvitation(context.Background(), "owner", "inv-1"); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("expected terminal invitation to stay terminal, got %v", err)
	}
}

func TestUpdateAndRemoveMember(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	svc := newTestService(repo, nil)

	member, err := svc.UpdateMember(context.Background(), "owner", "m-kid", UpdateMemberInput{Relationship: "Other"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if member.Relationship != RelationshipOther || repo.members["kid"].Relationship != RelationshipOther {
		t.Fatalf("expected relationship updated, got %+v", member)
	}

	if _, err := svc.UpdateMember(context.Background(), "owner", "m-owner", UpdateMemberInput{Relationship: "spouse"}); !errors.Is(err, ErrCannotChangeOwner) {
		t.Fatalf("expected ErrCannotChangeOwner, got %v", err)
	}
	if err := svc.RemoveMember(context.Background(), "owner", "m-owner"); !errors.Is(err, ErrCannotChangeOwner) {
		t.Fatalf("expected ErrCannotChangeOwner, got %v", err)
	}
	if err := svc.RemoveMember(context.Background(), "kid", "m-kid"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound for non-owner, got %v", err)
	}

	if err := svc.RemoveMember(context.Background(), "owner", "m-kid"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members["kid"]; ok {
		t.Fatalf("expected member removed")
	}
}

func TestOverviewOwnerFirst(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.members["kid"].JoinedAt = fixedNow.Add(-3 * time.Hour)
	repo.invitations["inv-1"] = &Invitation{ID: "inv-1", FamilyGroupID: "fam-1", Status: InvitationPending}
	svc := newTestService(repo, nil)

	overview, err := svc.Overview(context.Background(), "kid")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if overview.IsOwner {
		t.Fatalf("expected kid not to be owner")
	}
	if len(overview.Members) != 2 || !overview.Members[0].IsOwner || overview.Members[0].Name != "Olga" {
		t.Fatalf("expected owner listed first, got %+v", overview.Members)
	}
	if len(overview.PendingInvitations) != 0 {
		t.Fatalf("expected members not to see pending invitations")
	}

	overview, _ = svc.Overview(context.Background(), "owner")
	if !overview.IsOwner || len(overview.PendingInvitations) != 1 {
		t.Fatalf("expected owner to see pending invitations, got %+v", overview)
	}

	none, err := svc.Overview(context.Background(), "stranger")
	if err != nil || none.Group != nil {
		t.Fatalf("expected empty overview, got %+v (%v)", none, err)
	}
}

func TestShowRequiresMembership(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedGroup(repo)
	repo.groups["fam-2"] = &Group{ID: "fam-2", OwnerID: "other", Name: "Other"}
	svc := newTestService(repo, nil)

	if _, err := svc.Show(context.Background(), "kid", "fam-2"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if _, err := svc.Show(context.Background(), "stranger", "fam-1"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound for stranger, got %v", err)
	}
	overview, err := svc.Show(context.Background(), "kid", "fam-1")
	if err != nil || overview.Group.ID != "fam-1" {
		t.Fatalf("expected fam-1 overview, got %+v (%v)", overview, err)
	}
}

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := generateToken(32)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(token) != 32 {
			t.Fatalf("expected length 32, got %d", len(token))
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}
