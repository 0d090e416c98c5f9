package membership

import (
	"github.com/shopspring/decimal"

	"happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/user"
)

// promoDiscountRate applies to any non-empty promo code until real codes exist.
var promoDiscountRate = decimal.RequireFromString("0.10")

type Pricing struct {
	OriginalPrice decimal.Decimal `json:"original_price"`
	Discount      decimal.Decimal `json:"discount"`
	FinalPrice    decimal.Decimal `json:"final_price"`
}

// paymentData is stored in transactions.transaction_data.
type paymentData struct {
	PromoCode     *string `json:"promo_code"`
	OriginalPrice string  `json:"original_price"`
	Discount      string  `json:"discount"`
}

type Result struct {
	User         user.User          `json:"user"`
	Plan         catalog.Plan       `json:"plan"`
	Payment      ledger.Transaction `json:"payment"`
	Pricing      Pricing            `json:"pricing"`
	CoinsAwarded int64              `json:"coins_awarded"`
}

type Overview struct {
	Plans       []catalog.Plan `json:"plans"`
	CurrentTier string         `json:"current_tier"`
	IsActive    bool           `json:"is_active"`
}

type Details struct {
	Plan        catalog.Plan `json:"plan"`
	IsCurrent   bool         `json:"is_current"`
	CurrentTier string       `json:"current_tier"`
}
