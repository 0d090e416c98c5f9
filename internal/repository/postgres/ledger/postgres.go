package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	ledgerdomain "happi-app-go/internal/domain/ledger"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePayment(ctx context.Context, payment *ledgerdomain.Transaction) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ledgerdomain.ErrDuplicateTransactionID
	}
	return err
}

func (r *PostgresRepository) AppendCoinEntry(ctx context.Context, entry *ledgerdomain.CoinEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// IncrementCoins moves the cached users.happi_coins counter by amount.
func (r *PostgresRepository) IncrementCoins(ctx context.Context, userID string, amount int64) error {
	result := r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		UpdateColumn("happi_coins", gorm.Expr("happi_coins + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledgerdomain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) ListPayments(ctx context.Context, userID string, limit, offset int) ([]ledgerdomain.Transaction, error) {
	var payments []ledgerdomain.Transaction
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PostgresRepository) CountPayments(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ledgerdomain.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) ListCoinEntries(ctx context.Context, userID string, limit, offset int) ([]ledgerdomain.CoinEntry, error) {
	var entries []ledgerdomain.CoinEntry
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresRepository) CountCoinEntries(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ledgerdomain.CoinEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) CachedBalance(ctx context.Context, userID string) (int64, error) {
	var row struct {
		HappiCoins int64
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("happi_coins").
		Where("id = ?", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ledgerdomain.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return row.HappiCoins, nil
}

// LedgerBalance sums every coin entry, expired ones included as their
// negative rows.
func (r *PostgresRepository) LedgerBalance(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&ledgerdomain.CoinEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}
