package ledger

import "context"

// Recorder is the write side every payment workflow needs inside its own
// database transaction.
type Recorder interface {
	CreatePayment(ctx context.Context, payment *Transaction) error
	AppendCoinEntry(ctx context.Context, entry *CoinEntry) error
	IncrementCoins(ctx context.Context, userID string, amount int64) error
}

type Repository interface {
	ListPayments(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
	CountPayments(ctx context.Context, userID string) (int64, error)
	ListCoinEntries(ctx context.Context, userID string, limit, offset int) ([]CoinEntry, error)
	CountCoinEntries(ctx context.Context, userID string) (int64, error)
	CachedBalance(ctx context.Context, userID string) (int64, error)
	LedgerBalance(ctx context.Context, userID string) (int64, error)
}

type IDSequence interface {
	TransactionID() string
}
