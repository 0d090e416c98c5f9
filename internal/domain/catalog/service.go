package catalog

import (
	"context"
	"strings"
	"time"
)

const defaultCategoriesTTL = 5 * time.Minute

type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if ttl <= 0 {
		ttl = defaultCategoriesTTL
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// ListCategories returns the active categories ordered by display_order.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	if cached, ok := s.cache.GetCategories(ctx); ok {
		return cached, nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetCategories(ctx, categories, s.ttl)
	return categories, nil
}

func (s *Service) FeaturedProducts(ctx context.Context) ([]Product, error) {
	return s.repo.FeaturedProducts(ctx)
}

// CategoryWithProducts returns an active category with its active products.
func (s *Service) CategoryWithProducts(ctx context.Context, slug string) (*Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrCategoryNotFound
	}
	return s.repo.GetCategoryBySlug(ctx, slug)
}

func (s *Service) Product(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrProductNotFound
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx)
}

func (s *Service) PlanByTier(ctx context.Context, tier string) (*Plan, error) {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if tier == "" {
		return nil, ErrPlanNotFound
	}
	return s.repo.GetPlanByTier(ctx, tier)
}
