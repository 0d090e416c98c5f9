// Package events carries the domain events workflows emit after commit, for
// consumers outside this process such as the mailer.
package events

import (
	"context"
	"time"
)

const (
	TypePolicyPurchased     = "policy.purchased"
	TypePolicyRenewed       = "policy.renewed"
	TypeMembershipPurchased = "membership.purchased"
	TypeInvitationCreated   = "family.invitation_created"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher is fire and forget. Implementations log their own failures.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Fanout delivers each event to every publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}

type PolicyPurchased struct {
	PolicyID     string `json:"policy_id"`
	PolicyNumber string `json:"policy_number"`
	UserID       string `json:"user_id"`
	ProductID    string `json:"product_id"`
	Category     string `json:"category"`
	Amount       string `json:"amount"`
	Coins        int64  `json:"coins"`
}

type PolicyRenewed struct {
	PolicyID     string    `json:"policy_id"`
	PolicyNumber string    `json:"policy_number"`
	UserID       string    `json:"user_id"`
	Amount       string    `json:"amount"`
	ExpiresAt    time.Time `json:"expires_at"`
	Coins        int64     `json:"coins"`
}

type MembershipPurchased struct {
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	Tier      string    `json:"tier"`
	Amount    string    `json:"amount"`
	PromoCode string    `json:"promo_code,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Coins     int64     `json:"coins"`
}

type InvitationCreated struct {
	InvitationID string    `json:"invitation_id"`
	GroupID      string    `json:"family_group_id"`
	GroupName    string    `json:"family_group_name"`
	InvitedBy    string    `json:"invited_by"`
	Email        string    `json:"email"`
	Relationship string    `json:"relationship"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
