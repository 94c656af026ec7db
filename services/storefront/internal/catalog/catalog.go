package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
)

type Source interface {
	ListProducts(ctx context.Context) ([]shopapi.Product, error)
}

// Catalog is a view's read-only cached copy of the product list.
type Catalog struct {
	src   Source
	group singleflight.Group

	mu        sync.RWMutex
	products  []shopapi.Product
	fetchedAt time.Time
}

func New(src Source) *Catalog {
	return &Catalog{src: src}
}

// Refresh replaces the cached list wholesale. On failure the previous list stays in
// place and the error is logged; callers are free to ignore the returned error.
func (c *Catalog) Refresh(ctx context.Context) error {
	l := logging.FromContext(ctx).With("component", "catalog")

	// a shared fetch outlives whichever caller started it
	fetchCtx := context.WithoutCancel(ctx)
	_, err, shared := c.group.Do("refresh", func() (any, error) {
		products, err := c.src.ListProducts(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.products = products
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		l.Warn("catalog_refresh_failed", "reason", "keeping stale list", "cached", c.Len(), "fetched_at", c.lastFetch(), "error", err)
		return err
	}

	l.Debug("catalog_refreshed", "count", c.Len(), "shared", shared)
	return nil
}

func (c *Catalog) Products() []shopapi.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

func (c *Catalog) lastFetch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

func (c *Catalog) Find(id int64) (shopapi.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.products, func(p shopapi.Product) bool { return p.ID == id })
	if i < 0 {
		return shopapi.Product{}, false
	}
	return c.products[i], true
}

// Filter matches query case-insensitively against name and description. An empty
// query returns the whole list.
func (c *Catalog) Filter(query string) []shopapi.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Products()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]shopapi.Product, 0, len(c.products))
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}
