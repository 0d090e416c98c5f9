package catalog

import (
	"context"
	"time"
)

// Cache holds the category list, which changes only through migrations.
type Cache interface {
	GetCategories(ctx context.Context) ([]Category, bool)
	SetCategories(ctx context.Context, categories []Category, ttl time.Duration)
	Clear(ctx context.Context)
}

type noopCache struct{}

func (noopCache) GetCategories(context.Context) ([]Category, bool) {
	return nil, false
}

func (noopCache) SetCategories(context.Context, []Category, time.Duration) {}

func (noopCache) Clear(context.Context) {}
