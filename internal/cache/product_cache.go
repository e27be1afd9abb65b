package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
)

const defaultProductTTL = 10 * time.Minute

// ProductCache memoizes catalog product lookups. Commission math reads the
// same handful of products for every client in a report, so a short TTL
// keeps the earnings endpoint from hammering the products table.
type ProductCache interface {
	Get(id snowflake.ID) (*catalogdomain.Product, bool)
	Set(product *catalogdomain.Product)
}

type productCache struct {
	products Cache[snowflake.ID, *catalogdomain.Product]
	ttl      time.Duration
}

func NewProductCache() ProductCache {
	return &productCache{
		products: NewTTLCache[snowflake.ID, *catalogdomain.Product](),
		ttl:      defaultProductTTL,
	}
}

func (c *productCache) Get(id snowflake.ID) (*catalogdomain.Product, bool) {
	return c.products.Get(id)
}

func (c *productCache) Set(product *catalogdomain.Product) {
	if product == nil || product.ID == 0 {
		return
	}
	c.products.Set(product.ID, product, c.ttl)
}
