package catalog

import "context"

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	FeaturedProducts(ctx context.Context) ([]Product, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlanByTier(ctx context.Context, tier string) (*Plan, error)
	GetPlan(ctx context.Context, id string) (*Plan, error)
}
