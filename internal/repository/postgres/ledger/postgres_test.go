package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerdomain "happi-app-go/internal/domain/ledger"
	"happi-app-go/internal/domain/reference"
	"happi-app-go/internal/repository/repotest"
)

func newPayment(userID, transactionID string, createdAt time.Time) *ledgerdomain.Transaction {
	return &ledgerdomain.Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		TransactionType: ledgerdomain.TypeInsurancePurchase,
		Reference:       reference.Policy(uuid.NewString()),
		Amount:          decimal.RequireFromString("100.00"),
		PaymentMethod:   ledgerdomain.MethodCreditCard,
		PaymentStatus:   ledgerdomain.StatusCompleted,
		TransactionID:   transactionID,
		CreatedAt:       createdAt,
	}
}

func TestCreatePaymentRejectsDuplicateTransactionID(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	owner := repotest.CreateUser(t, db, "a@example.com")
	ctx := context.Background()

	require.NoError(t, repo.CreatePayment(ctx, newPayment(owner.ID, "TRX-1", time.Now().UTC())))
	err := repo.CreatePayment(ctx, newPayment(owner.ID, "TRX-1", time.Now().UTC()))
	assert.ErrorIs(t, err, ledgerdomain.ErrDuplicateTransactionID)
}

func TestPaymentsNewestFirstWithReference(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	owner := repotest.CreateUser(t, db, "a@example.com")
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"TRX-1", "TRX-2", "TRX-3"} {
		require.NoError(t, repo.CreatePayment(ctx, newPayment(owner.ID, id, base.Add(time.Duration(i)*time.Hour))))
	}

	payments, err := repo.ListPayments(ctx, owner.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "TRX-3", payments[0].TransactionID)
	assert.Equal(t, reference.KindPolicy, payments[0].Reference.Kind)
	assert.True(t, payments[0].Amount.Equal(decimal.RequireFromString("100")))

	rest, err := repo.ListPayments(ctx, owner.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "TRX-1", rest[0].TransactionID)

	count, err := repo.CountPayments(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCoinsCounterAndLedgerBalance(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	owner := repotest.CreateUser(t, db, "a@example.com")
	ctx := context.Background()

	for _, amount := range []int64{150, 100} {
		require.NoError(t, repo.AppendCoinEntry(ctx, &ledgerdomain.CoinEntry{
			ID:              uuid.NewString(),
			UserID:          owner.ID,
			Amount:          amount,
			TransactionType: ledgerdomain.CoinsEarned,
			Description:     "Earned",
		}))
		require.NoError(t, repo.IncrementCoins(ctx, owner.ID, amount))
	}

	cached, err := repo.CachedBalance(ctx, owner.ID)
	require.NoError(t, err)
	derived, err := repo.LedgerBalance(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), cached)
	assert.Equal(t, cached, derived)

	entries, err := repo.ListCoinEntries(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, entries[0].Reference.IsZero())

	count, err := repo.CountCoinEntries(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestIncrementCoinsUnknownUser(t *testing.T) {
	repo := NewPostgres(repotest.Open(t))

	assert.ErrorIs(t, repo.IncrementCoins(context.Background(), uuid.NewString(), 10), ledgerdomain.ErrUserNotFound)
	_, err := repo.CachedBalance(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ledgerdomain.ErrUserNotFound)

	total, err := repo.LedgerBalance(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Zero(t, total)
}
