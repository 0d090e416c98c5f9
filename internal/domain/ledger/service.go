package ledger

import (
	"context"

	"happi-app-go/internal/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type History struct {
	Transactions pagination.Page[Transaction] `json:"transactions"`
	Coins        pagination.Page[CoinEntry]   `json:"coins"`
}

func (s *Service) History(ctx context.Context, userID string, page int) (*History, error) {
	payments, err := s.Payments(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	coins, err := s.CoinEntries(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return &History{Transactions: payments, Coins: coins}, nil
}

func (s *Service) Payments(ctx context.Context, userID string, page int) (pagination.Page[Transaction], error) {
	page, perPage := pagination.Normalize(page, pagination.DefaultPerPage)
	total, err := s.repo.CountPayments(ctx, userID)
	if err != nil {
		return pagination.Page[Transaction]{}, err
	}
	items, err := s.repo.ListPayments(ctx, userID, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return pagination.Page[Transaction]{}, err
	}
	return pagination.New(items, page, perPage, total), nil
}

func (s *Service) CoinEntries(ctx context.Context, userID string, page int) (pagination.Page[CoinEntry], error) {
	page, perPage := pagination.Normalize(page, pagination.DefaultPerPage)
	total, err := s.repo.CountCoinEntries(ctx, userID)
	if err != nil {
		return pagination.Page[CoinEntry]{}, err
	}
	items, err := s.repo.ListCoinEntries(ctx, userID, perPage, pagination.Offset(page, perPage))
	if err != nil {
		return pagination.Page[CoinEntry]{}, err
	}
	return pagination.New(items, page, perPage, total), nil
}

// RecentPayments returns the newest limit payment transactions.
func (s *Service) RecentPayments(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	return s.repo.ListPayments(ctx, userID, limit, 0)
}

func (s *Service) RecentCoinEntries(ctx context.Context, userID string, limit int) ([]CoinEntry, error) {
	return s.repo.ListCoinEntries(ctx, userID, limit, 0)
}

// Balance compares the cached users.happi_coins counter with the sum of the
// ledger, which is authoritative.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	cached, err := s.repo.CachedBalance(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	derived, err := s.repo.LedgerBalance(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Cached: cached, Derived: derived, InSync: cached == derived}, nil
}
