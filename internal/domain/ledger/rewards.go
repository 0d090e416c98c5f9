package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"happi-app-go/internal/domain/reference"
	"happi-app-go/internal/validation"
)

var tierMultipliers = map[string]int64{
	"standard": 1,
	"silver":   2,
	"gold":     3,
	"platinum": 5,
}

// Multiplier returns the coin multiplier for a membership tier; unknown tiers
// earn at the standard rate.
func Multiplier(tier string) int64 {
	if m, ok := tierMultipliers[strings.ToLower(tier)]; ok {
		return m
	}
	return 1
}

func Reward(base int64, tier string) int64 {
	return base * Multiplier(tier)
}

// CoinExpiry is when coins earned at now lapse.
func CoinExpiry(now time.Time) time.Time {
	return now.AddDate(1, 0, 0)
}

func (p PaymentDetails) Validate() error {
	p.PaymentMethod = strings.TrimSpace(p.PaymentMethod)
	return validation.Struct(p)
}

type PaymentInput struct {
	UserID string
	Type   string
	Ref    reference.Ref
	Amount decimal.Decimal
	Method string
	Data   any
}

// RecordPayment writes a completed payment transaction through rec.
func RecordPayment(ctx context.Context, rec Recorder, ids IDSequence, input PaymentInput) (*Transaction, error) {
	if err := input.Ref.Validate(); err != nil {
		return nil, err
	}

	var data datatypes.JSON
	if input.Data != nil {
		raw, err := json.Marshal(input.Data)
		if err != nil {
			return nil, err
		}
		data = datatypes.JSON(raw)
	}

	payment := Transaction{
		ID:              uuid.NewString(),
		UserID:          input.UserID,
		TransactionType: input.Type,
		Reference:       input.Ref,
		Amount:          input.Amount.Round(2),
		PaymentMethod:   strings.TrimSpace(input.Method),
		PaymentStatus:   StatusCompleted,
		TransactionID:   ids.TransactionID(),
		TransactionData: data,
	}
	if err := rec.CreatePayment(ctx, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Award appends an earned entry and moves the cached counter by the same
// amount. Non-positive amounts record nothing and return a nil entry.
func Award(ctx context.Context, rec Recorder, userID string, amount int64, ref reference.Ref, description string, now time.Time) (*CoinEntry, error) {
	if amount <= 0 {
		return nil, nil
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	expires := CoinExpiry(now)
	entry := CoinEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		TransactionType: CoinsEarned,
		Reference:       ref,
		Description:     description,
		ExpiresAt:       &expires,
		CreatedAt:       now,
	}
	if err := rec.AppendCoinEntry(ctx, &entry); err != nil {
		return nil, err
	}
	if err := rec.IncrementCoins(ctx, userID, amount); err != nil {
		return nil, err
	}
	return &entry, nil
}
