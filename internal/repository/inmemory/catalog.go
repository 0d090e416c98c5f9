package inmemory

import (
	"context"
	"sync"
	"time"

	"happi-app-go/internal/domain/catalog"
)

// CatalogCache keeps the category list in process memory.
type CatalogCache struct {
	mu   sync.RWMutex
	item *categoriesItem
	now  func() time.Time
}

type categoriesItem struct {
	value     []catalog.Category
	expiresAt time.Time
}

func NewCatalogCache() *CatalogCache {
	return &CatalogCache{now: time.Now}
}

func (c *CatalogCache) GetCategories(_ context.Context) ([]catalog.Category, bool) {
	now := c.now()

	c.mu.RLock()
	item := c.item
	c.mu.RUnlock()
	if item == nil {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		if c.item == item {
			c.item = nil
		}
		c.mu.Unlock()
		return nil, false
	}

	return cloneCategories(item.value), true
}

func (c *CatalogCache) SetCategories(ctx context.Context, categories []catalog.Category, ttl time.Duration) {
	if ttl <= 0 {
		c.Clear(ctx)
		return
	}

	c.mu.Lock()
	c.item = &categoriesItem{
		value:     cloneCategories(categories),
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *CatalogCache) Clear(_ context.Context) {
	c.mu.Lock()
	c.item = nil
	c.mu.Unlock()
}

func cloneCategories(categories []catalog.Category) []catalog.Category {
	if categories == nil {
		return nil
	}
	cloned := make([]catalog.Category, len(categories))
	for i := range categories {
		cloned[i] = categories[i]
		if categories[i].Icon != nil {
			icon := *categories[i].Icon
			cloned[i].Icon = &icon
		}
		if categories[i].Products != nil {
			cloned[i].Products = append([]catalog.Product(nil), categories[i].Products...)
		}
	}
	return cloned
}
