package insurance

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/reference"
	"happi-app-go/internal/domain/vehicles"
	"happi-app-go/internal/events"
)

const (
	DefaultExpiryWindow = 30 * 24 * time.Hour
	day                 = 24 * time.Hour
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

// ProductPage lists the caller's vehicles alongside auto products.
func (s *Service) ProductPage(ctx context.Context, userID, productID string) (*ProductPage, error) {
	product, err := s.repo.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	page := &ProductPage{Product: *product, Vehicles: []vehicles.Vehicle{}}
	if product.IsAuto() {
		list, err := s.repo.ListVehicles(ctx, userID)
		if err != nil {
			return nil, err
		}
		page.Vehicles = list
	}
	return page, nil
}

// Checkout resolves the product and, for auto products, the chosen vehicle.
func (s *Service) Checkout(ctx context.Context, userID, productID string, vehicleID *string) (*CheckoutPage, error) {
	product, err := s.repo.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	page := &CheckoutPage{Product: *product, Vehicles: []vehicles.Vehicle{}}
	if !product.IsAuto() {
		return page, nil
	}

	if id := optionalID(vehicleID); id != "" {
		vehicle, err := s.repo.GetVehicle(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		page.Vehicle = vehicle
	}

	list, err := s.repo.ListVehicles(ctx, userID)
	if err != nil {
		return nil, err
	}
	page.Vehicles = list
	return page, nil
}

// Purchase creates the policy, its payment and its coin reward in one
// database transaction.
func (s *Service) Purchase(ctx context.Context, userID, productID string, vehicleID *string, payment ledger.PaymentDetails) (*Result, error) {
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var result Result
	var category string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		product, err := tx.GetActiveProduct(ctx, productID)
		if err != nil {
			return err
		}
		if product.Category != nil {
			category = product.Category.Slug
		}

		var vehicle *vehicles.Vehicle
		if id := optionalID(vehicleID); id != "" {
			vehicle, err = tx.GetVehicle(ctx, userID, id)
			if err != nil {
				return err
			}
		}

		buyer, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		number, err := generatePolicyNumber(ctx, tx, category)
		if err != nil {
			return err
		}

		policy := Policy{
			ID:                 uuid.NewString(),
			UserID:             userID,
			InsuranceProductID: product.ID,
			PolicyNumber:       number,
			PricePaid:          product.BasePrice,
			StartsAt:           now,
			ExpiresAt:          now.Add(time.Duration(product.DurationDays) * day),
			Status:             StatusActive,
			PolicyData:         snapshot(product, vehicle),
		}
		if vehicle != nil {
			policy.VehicleID = &vehicle.ID
		}
		if err := tx.CreatePolicy(ctx, &policy); err != nil {
			return err
		}

		paid, err := ledger.RecordPayment(ctx, tx, s.ids, ledger.PaymentInput{
			UserID: userID,
			Type:   ledger.TypeInsurancePurchase,
			Ref:    reference.Policy(policy.ID),
			Amount: product.BasePrice,
			Method: payment.PaymentMethod,
		})
		if err != nil {
			return err
		}

		coins := ledger.Reward(product.HappiCoinsReward, buyer.MembershipTier)
		if _, err := ledger.Award(ctx, tx, userID, coins, reference.Policy(policy.ID), "Earned from purchasing "+product.Name, now); err != nil {
			return err
		}

		policy.Product = product
		policy.Vehicle = vehicle
		result = Result{Policy: policy, Payment: *paid, CoinsAwarded: coins}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Type:       events.TypePolicyPurchased,
		OccurredAt: now,
		Payload: events.PolicyPurchased{
			PolicyID:     result.Policy.ID,
			PolicyNumber: result.Policy.PolicyNumber,
			UserID:       userID,
			ProductID:    result.Policy.InsuranceProductID,
			Category:     category,
			Amount:       result.Payment.Amount.StringFixed(2),
			Coins:        result.CoinsAwarded,
		},
	})
	return &result, nil
}

// RenewPage loads a policy of the caller for the renewal form.
func (s *Service) RenewPage(ctx context.Context, userID, policyID string) (*Policy, error) {
	return s.repo.GetPolicy(ctx, userID, policyID)
}

// Renew restarts the policy term from now. Days left on the previous term are
// not carried over.
func (s *Service) Renew(ctx context.Context, userID, policyID string, payment ledger.PaymentDetails) (*Result, error) {
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var result Result
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		policy, err := tx.GetPolicy(ctx, userID, policyID)
		if err != nil {
			return err
		}
		if policy.Product == nil {
			return catalog.ErrProductNotFound
		}

		holder, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		expiresAt := now.Add(time.Duration(policy.Product.DurationDays) * day)
		if err := tx.RenewPolicy(ctx, policy.ID, expiresAt); err != nil {
			return err
		}
		policy.ExpiresAt = expiresAt
		policy.Status = StatusActive

		paid, err := ledger.RecordPayment(ctx, tx, s.ids, ledger.PaymentInput{
			UserID: userID,
			Type:   ledger.TypeInsuranceRenewal,
			Ref:    reference.Policy(policy.ID),
			Amount: policy.Product.BasePrice,
			Method: payment.PaymentMethod,
		})
		if err != nil {
			return err
		}

		coins := ledger.Reward(policy.Product.HappiCoinsReward, holder.MembershipTier)
		if _, err := ledger.Award(ctx, tx, userID, coins, reference.Policy(policy.ID), "Earned from renewing "+policy.Product.Name, now); err != nil {
			return err
		}

		result = Result{Policy: *policy, Payment: *paid, CoinsAwarded: coins}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Type:       events.TypePolicyRenewed,
		OccurredAt: now,
		Payload: events.PolicyRenewed{
			PolicyID:     result.Policy.ID,
			PolicyNumber: result.Policy.PolicyNumber,
			UserID:       userID,
			Amount:       result.Payment.Amount.StringFixed(2),
			ExpiresAt:    result.Policy.ExpiresAt,
			Coins:        result.CoinsAwarded,
		},
	})
	return &result, nil
}

// ListPolicies returns every policy of the user, latest expiry first.
func (s *Service) ListPolicies(ctx context.Context, userID string) ([]Policy, error) {
	return s.repo.ListPolicies(ctx, userID)
}

func (s *Service) ActivePolicies(ctx context.Context, userID string, limit int) ([]Policy, error) {
	return s.repo.ActivePolicies(ctx, userID, s.now(), limit)
}

// UpcomingExpirations returns active policies that lapse within window.
func (s *Service) UpcomingExpirations(ctx context.Context, userID string, window time.Duration) ([]Policy, error) {
	if window <= 0 {
		window = DefaultExpiryWindow
	}
	now := s.now()
	return s.repo.ExpiringBetween(ctx, userID, now, now.Add(window))
}

func snapshot(product *catalog.Product, vehicle *vehicles.Vehicle) datatypes.JSON {
	data := policySnapshot{
		ProductName:     product.Name,
		CoverageDetails: product.CoverageDetails,
		DurationDays:    product.DurationDays,
	}
	if product.Category != nil {
		data.Category = product.Category.Slug
	}
	if vehicle != nil {
		plate := vehicle.LicensePlate
		data.VehiclePlate = &plate
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func optionalID(id *string) string {
	if id == nil {
		return ""
	}
	return strings.TrimSpace(*id)
}
