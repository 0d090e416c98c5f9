package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/reference"
	"happi-app-go/internal/domain/user"
	"happi-app-go/internal/events"
	"happi-app-go/internal/validation"
)

type fakeMembershipRepo struct {
	users    map[string]*user.User
	plans    map[string]*catalog.Plan
	payments []ledger.Transaction
	entries  []ledger.CoinEntry
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{
		users: map[string]*user.User{
			"u1": {ID: "u1", MembershipTier: user.TierStandard},
		},
		plans: map[string]*catalog.Plan{
			"plan-gold": {ID: "plan-gold", Name: "Gold", Tier: "gold", Price: decimal.RequireFromString("99.00"), DurationDays: 365, HappiCoinsReward: 250, IsActive: true},
			"plan-free": {ID: "plan-free", Name: "Trial", Tier: "silver", Price: decimal.RequireFromString("10.00"), DurationDays: 30, HappiCoinsReward: 0, IsActive: true},
			"plan-old":  {ID: "plan-old", Name: "Legacy", Tier: "legacy", Price: decimal.RequireFromString("1.00"), DurationDays: 30, IsActive: false},
		},
	}
}

func (r *fakeMembershipRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeMembershipRepo) GetUser(ctx context.Context, userID string) (*user.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeMembershipRepo) ListActivePlans(ctx context.Context) ([]catalog.Plan, error) {
	var result []catalog.Plan
	for _, plan := range r.plans {
		if plan.IsActive {
			result = append(result, *plan)
		}
	}
	return result, nil
}

func (r *fakeMembershipRepo) GetActivePlan(ctx context.Context, planID string) (*catalog.Plan, error) {
	plan, ok := r.plans[planID]
	if !ok || !plan.IsActive {
		return nil, catalog.ErrPlanNotFound
	}
	copied := *plan
	return &copied, nil
}

func (r *fakeMembershipRepo) GetActivePlanByTier(ctx context.Context, tier string) (*catalog.Plan, error) {
	for _, plan := range r.plans {
		if plan.Tier == tier && plan.IsActive {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, catalog.ErrPlanNotFound
}

func (r *fakeMembershipRepo) UpdateMembership(ctx context.Context, userID, tier string, expiresAt time.Time) error {
	u := r.users[userID]
	u.MembershipTier = tier
	u.MembershipExpiresAt = &expiresAt
	return nil
}

func (r *fakeMembershipRepo) CreatePayment(ctx context.Context, payment *ledger.Transaction) error {
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *fakeMembershipRepo) AppendCoinEntry(ctx context.Context, entry *ledger.CoinEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeMembershipRepo) IncrementCoins(ctx context.Context, userID string, amount int64) error {
	r.users[userID].HappiCoins += amount
	return nil
}

type sequence struct{ n int }

func (s *sequence) TransactionID() string {
	s.n++
	return fmt.Sprintf("TRX-%d", s.n)
}

type capturedEvents struct {
	events []events.Event
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) {
	c.events = append(c.events, event)
}

var fixedNow = time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

func newTestService(repo *fakeMembershipRepo, publisher events.Publisher) *Service {
	service := NewService(repo, &sequence{}, publisher)
	service.now = func() time.Time { return fixedNow }
	return service
}

func TestPurchaseWithPromoCode(t *testing.T) {
	repo := newFakeMembershipRepo()
	captured := &capturedEvents{}
	service := newTestService(repo, captured)

	result, err := service.Purchase(context.Background(), "u1", "plan-gold", " WELCOME ", ledger.PaymentDetails{PaymentMethod: "paypal"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Payment.Amount.StringFixed(2) != "89.10" {
		t.Fatalf("expected 89.10, got %s", result.Payment.Amount.StringFixed(2))
	}
	if result.Payment.Reference != reference.MembershipPlan("plan-gold") {
		t.Fatalf("unexpected payment reference %v", result.Payment.Reference)
	}

	var data map[string]any
	if err := json.Unmarshal(repo.payments[0].TransactionData, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data["promo_code"] != "WELCOME" || data["original_price"] != "99.00" || data["discount"] != "9.90" {
		t.Fatalf("unexpected transaction data %v", data)
	}

	u := repo.users["u1"]
	if u.MembershipTier != "gold" {
		t.Fatalf("expected gold tier, got %s", u.MembershipTier)
	}
	if u.MembershipExpiresAt == nil || !u.MembershipExpiresAt.Equal(fixedNow.AddDate(0, 0, 365)) {
		t.Fatalf("unexpected expiry %v", u.MembershipExpiresAt)
	}

	if len(repo.entries) != 1 || repo.entries[0].Amount != 250 {
		t.Fatalf("expected unmultiplied 250 coin entry, got %+v", repo.entries)
	}
	if repo.entries[0].Reference != reference.Payment(result.Payment.ID) {
		t.Fatalf("expected entry to reference the payment, got %v", repo.entries[0].Reference)
	}
	if u.HappiCoins != 250 {
		t.Fatalf("expected counter 250, got %d", u.HappiCoins)
	}

	if len(captured.events) != 1 || captured.events[0].Type != events.TypeMembershipPurchased {
		t.Fatalf("expected membership.purchased event, got %+v", captured.events)
	}
}

func TestPurchaseWithoutPromoChargesFullPrice(t *testing.T) {
	repo := newFakeMembershipRepo()
	service := newTestService(repo, nil)

	result, err := service.Purchase(context.Background(), "u1", "plan-gold", "", ledger.PaymentDetails{PaymentMethod: "paypal"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Payment.Amount.StringFixed(2) != "99.00" {
		t.Fatalf("expected full price, got %s", result.Payment.Amount)
	}

	var data map[string]any
	if err := json.Unmarshal(repo.payments[0].TransactionData, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data["promo_code"] != nil || data["discount"] != "0.00" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestPurchaseResetsTermFromNow(t *testing.T) {
	repo := newFakeMembershipRepo()
	remaining := fixedNow.AddDate(0, 6, 0)
	repo.users["u1"].MembershipTier = "gold"
	repo.users["u1"].MembershipExpiresAt = &remaining
	service := newTestService(repo, nil)

	if _, err := service.Purchase(context.Background(), "u1", "plan-free", "", ledger.PaymentDetails{PaymentMethod: "paypal"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	u := repo.users["u1"]
	if !u.MembershipExpiresAt.Equal(fixedNow.AddDate(0, 0, 30)) {
		t.Fatalf("expected term reset to now+30d, got %v", u.MembershipExpiresAt)
	}
	if len(repo.entries) != 0 || u.HappiCoins != 0 {
		t.Fatalf("expected no coin entry for zero reward plan")
	}
}

func TestPurchaseInactivePlanNotFound(t *testing.T) {
	service := newTestService(newFakeMembershipRepo(), nil)

	_, err := service.Purchase(context.Background(), "u1", "plan-old", "", ledger.PaymentDetails{PaymentMethod: "paypal"})
	if !errors.Is(err, catalog.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestPurchaseValidatesPayment(t *testing.T) {
	repo := newFakeMembershipRepo()
	service := newTestService(repo, nil)

	_, err := service.Purchase(context.Background(), "u1", "plan-gold", "", ledger.PaymentDetails{})
	if _, ok := validation.As(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.payments) != 0 {
		t.Fatalf("expected no payment recorded")
	}
}

func TestDetailsMarksCurrentPlan(t *testing.T) {
	repo := newFakeMembershipRepo()
	expires := fixedNow.AddDate(0, 1, 0)
	repo.users["u1"].MembershipTier = "gold"
	repo.users["u1"].MembershipExpiresAt = &expires
	service := newTestService(repo, nil)

	details, err := service.Details(context.Background(), "u1", "Gold")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !details.IsCurrent {
		t.Fatalf("expected gold to be current")
	}

	if _, err := service.Details(context.Background(), "u1", "diamond"); !errors.Is(err, catalog.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestQuote(t *testing.T) {
	pricing := Quote(decimal.RequireFromString("49.99"), "X")
	if pricing.Discount.StringFixed(2) != "5.00" || pricing.FinalPrice.StringFixed(2) != "44.99" {
		t.Fatalf("unexpected pricing %+v", pricing)
	}
}
