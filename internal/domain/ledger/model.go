package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"happi-app-go/internal/domain/reference"
)

const (
	TypeInsurancePurchase  = "insurance_purchase"
	TypeInsuranceRenewal   = "insurance_renewal"
	TypeMembershipPurchase = "membership_purchase"

	StatusCompleted = "completed"

	MethodCreditCard = "credit_card"
)

const (
	CoinsEarned  = "earned"
	CoinsSpent   = "spent"
	CoinsExpired = "expired"
)

// Transaction is a payment record. Amount is written once at creation.
type Transaction struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	TransactionType string          `gorm:"type:varchar(32);not null" json:"transaction_type"`
	Reference       reference.Ref   `gorm:"embedded;embeddedPrefix:reference_" json:"reference"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"type:varchar(32);not null" json:"payment_method"`
	PaymentStatus   string          `gorm:"type:varchar(16);not null" json:"payment_status"`
	TransactionID   string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"transaction_id"`
	TransactionData datatypes.JSON  `json:"transaction_data"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// CoinEntry is one append-only HappiCoins ledger line. Amount is signed.
type CoinEntry struct {
	ID              string        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount          int64         `gorm:"not null" json:"amount"`
	TransactionType string        `gorm:"type:varchar(16);not null" json:"transaction_type"`
	Reference       reference.Ref `gorm:"embedded;embeddedPrefix:reference_" json:"reference"`
	Description     string        `gorm:"not null" json:"description"`
	ExpiresAt       *time.Time    `json:"expires_at"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (CoinEntry) TableName() string {
	return "happi_coins_transactions"
}

// PaymentDetails is the card form posted with every checkout. Card fields are
// only required for credit card payments. No gateway is called.
type PaymentDetails struct {
	PaymentMethod string `json:"payment_method" validate:"required,max=32"`
	CardNumber    string `json:"card_number" validate:"required_if=PaymentMethod credit_card"`
	CardHolder    string `json:"card_holder" validate:"required_if=PaymentMethod credit_card"`
	ExpiryMonth   string `json:"expiry_month" validate:"required_if=PaymentMethod credit_card"`
	ExpiryYear    string `json:"expiry_year" validate:"required_if=PaymentMethod credit_card"`
	CVV           string `json:"cvv" validate:"required_if=PaymentMethod credit_card"`
}

type Balance struct {
	Cached  int64 `json:"cached"`
	Derived int64 `json:"derived"`
	InSync  bool  `json:"in_sync"`
}
