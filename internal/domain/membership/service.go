package membership

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/reference"
	"happi-app-go/internal/events"
)

type Service struct {
	repo   Repository
	ids    ledger.IDSequence
	events events.Publisher
	now    func() time.Time
}

func NewService(repo Repository, ids ledger.IDSequence, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:   repo,
		ids:    ids,
		events: publisher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	member, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Plans:       plans,
		CurrentTier: member.MembershipTier,
		IsActive:    member.HasActiveMembership(s.now()),
	}, nil
}

func (s *Service) Details(ctx context.Context, userID, tier string) (*Details, error) {
	plan, err := s.repo.GetActivePlanByTier(ctx, strings.ToLower(strings.TrimSpace(tier)))
	if err != nil {
		return nil, err
	}
	member, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Details{
		Plan:        *plan,
		IsCurrent:   member.MembershipTier == plan.Tier && member.HasActiveMembership(s.now()),
		CurrentTier: member.MembershipTier,
	}, nil
}

// Quote prices a plan for the given promo code.
func Quote(price decimal.Decimal, promoCode string) Pricing {
	pricing := Pricing{OriginalPrice: price, Discount: decimal.Zero, FinalPrice: price}
	if strings.TrimSpace(promoCode) != "" {
		pricing.Discount = price.Mul(promoDiscountRate).Round(2)
		pricing.FinalPrice = price.Sub(pricing.Discount)
	}
	return pricing
}

// Purchase charges the plan, switches the user's tier and grants the plan's
// coins as one database transaction. The new term always starts now, so
// buying again replaces any time left.
func (s *Service) Purchase(ctx context.Context, userID, planID, promoCode string, payment ledger.PaymentDetails) (*Result, error) {
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	promoCode = strings.TrimSpace(promoCode)

	now := s.now()
	var (
		result    Result
		expiresAt time.Time
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		plan, err := tx.GetActivePlan(ctx, planID)
		if err != nil {
			return err
		}

		pricing := Quote(plan.Price, promoCode)
		data := paymentData{
			OriginalPrice: pricing.OriginalPrice.StringFixed(2),
			Discount:      pricing.Discount.StringFixed(2),
		}
		if promoCode != "" {
			data.PromoCode = &promoCode
		}

		paid, err := ledger.RecordPayment(ctx, tx, s.ids, ledger.PaymentInput{
			UserID: userID,
			Type:   ledger.TypeMembershipPurchase,
			Ref:    reference.MembershipPlan(plan.ID),
			Amount: pricing.FinalPrice,
			Method: payment.PaymentMethod,
			Data:   data,
		})
		if err != nil {
			return err
		}

		expiresAt = now.AddDate(0, 0, plan.DurationDays)
		if err := tx.UpdateMembership(ctx, userID, plan.Tier, expiresAt); err != nil {
			return err
		}

		if _, err := ledger.Award(ctx, tx, userID, plan.HappiCoinsReward, reference.Payment(paid.ID), "Welcome bonus for "+plan.Name+" membership", now); err != nil {
			return err
		}

		member, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		coins := plan.HappiCoinsReward
		if coins < 0 {
			coins = 0
		}
		result = Result{User: *member, Plan: *plan, Payment: *paid, Pricing: pricing, CoinsAwarded: coins}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Type:       events.TypeMembershipPurchased,
		OccurredAt: now,
		Payload: events.MembershipPurchased{
			UserID:    userID,
			PlanID:    result.Plan.ID,
			Tier:      result.Plan.Tier,
			Amount:    result.Payment.Amount.StringFixed(2),
			PromoCode: promoCode,
			ExpiresAt: expiresAt,
			Coins:     result.CoinsAwarded,
		},
	})
	return &result, nil
}
