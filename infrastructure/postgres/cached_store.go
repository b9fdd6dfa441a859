package postgres

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"vending-backend/application/ports"
	"vending-backend/domain/vending"
	"vending-backend/pkg/observability"
)

// CachedStore is a read-through cache in front of another store. The
// product catalog changes rarely compared to how often a voice turn asks
// for it, so name, id and category lookups are cached. Order history and
// writes always go to the inner store.
type CachedStore struct {
	inner   ports.Store
	cache   *gocache.Cache
	metrics *observability.Collector
}

// NewCachedStore wraps the given store with a TTL cache.
func NewCachedStore(inner ports.Store, ttl time.Duration, metrics *observability.Collector) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedStore) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *CachedStore) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}

// ProductByName resolves a product by name, consulting the cache first.
func (c *CachedStore) ProductByName(ctx context.Context, name string) (*vending.Product, error) {
	key := "product:name:" + name
	if cached, found := c.cache.Get(key); found {
		c.hit()
		return cached.(*vending.Product), nil
	}
	c.miss()

	product, err := c.inner.ProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if product != nil {
		c.cache.SetDefault(key, product)
	}
	return product, nil
}

// ProductByID resolves a product by id, consulting the cache first.
func (c *CachedStore) ProductByID(ctx context.Context, id int64) (*vending.Product, error) {
	key := fmt.Sprintf("product:id:%d", id)
	if cached, found := c.cache.Get(key); found {
		c.hit()
		return cached.(*vending.Product), nil
	}
	c.miss()

	product, err := c.inner.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product != nil {
		c.cache.SetDefault(key, product)
	}
	return product, nil
}

// UserByName passes through to the inner store. Profiles are enrolled
// during a session and must be visible on the very next turn.
func (c *CachedStore) UserByName(ctx context.Context, name string) (*vending.User, error) {
	return c.inner.UserByName(ctx, name)
}

// OrdersSince passes through to the inner store. Stale history would make
// a purchase invisible to the recommendation that follows it.
func (c *CachedStore) OrdersSince(ctx context.Context, userID int64, since time.Time) ([]vending.PurchaseEvent, error) {
	return c.inner.OrdersSince(ctx, userID, since)
}

// ProductsByCategory lists products in a category, consulting the cache first.
func (c *CachedStore) ProductsByCategory(ctx context.Context, category string) ([]vending.Product, error) {
	key := "category:" + category
	if cached, found := c.cache.Get(key); found {
		c.hit()
		return cached.([]vending.Product), nil
	}
	c.miss()

	products, err := c.inner.ProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, products)
	return products, nil
}

// ProductsByCategoryAndEmotion lists emotion-tagged products in a category,
// consulting the cache first.
func (c *CachedStore) ProductsByCategoryAndEmotion(ctx context.Context, category string, emotion vending.Emotion) ([]vending.Product, error) {
	key := "category:" + category + ":emotion:" + string(emotion)
	if cached, found := c.cache.Get(key); found {
		c.hit()
		return cached.([]vending.Product), nil
	}
	c.miss()

	products, err := c.inner.ProductsByCategoryAndEmotion(ctx, category, emotion)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, products)
	return products, nil
}

// CategoriesOfProduct lists a product's categories, consulting the cache first.
func (c *CachedStore) CategoriesOfProduct(ctx context.Context, productID int64) ([]vending.Category, error) {
	key := fmt.Sprintf("product:categories:%d", productID)
	if cached, found := c.cache.Get(key); found {
		c.hit()
		return cached.([]vending.Category), nil
	}
	c.miss()

	categories, err := c.inner.CategoriesOfProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, categories)
	return categories, nil
}

// RecordOrder passes through to the inner store.
func (c *CachedStore) RecordOrder(ctx context.Context, productID, userID int64) error {
	return c.inner.RecordOrder(ctx, productID, userID)
}

var _ ports.Store = (*CachedStore)(nil)
