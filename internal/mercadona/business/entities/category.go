package entities

import (
	"context"
	"fmt"

	"gomercadona_api/internal/mercadona/business/models"
)

const categoryEndpoint = "/api/categories/%s/"

// Category is a level-1 catalog category. Its payload is complete only
// once the subcategory listing is present; the bare (id, name) pairs
// coming from the category root listing or a product's category path do
// not carry it.
type Category struct {
	item remoteItem
	name string
}

func NewCategory(id, name string, bound Context, api Fetcher) *Category {
	return &Category{
		item: newRemoteItem(id, fmt.Sprintf(categoryEndpoint, id), bound, api, DefaultRetryPolicy, nil),
		name: name,
	}
}

// WithRetryPolicy overrides the rate-limit retry policy.
func (c *Category) WithRetryPolicy(retry RetryPolicy) *Category {
	c.item.retry = retry
	return c
}

func (c *Category) ID() string {
	return c.item.id
}

func (c *Category) Context() Context {
	return c.item.bound
}

func (c *Category) Exists(ctx context.Context) bool {
	return c.item.exists(ctx)
}

func (c *Category) Name(ctx context.Context) string {
	c.item.mu.Lock()
	defer c.item.mu.Unlock()
	if c.name == "" {
		c.item.ensureLoadedLocked(ctx)
		c.name = c.item.data.String("name")
	}
	return c.name
}

func hasSubcategories(payload models.Payload) bool {
	return payload.Has("categories")
}

// Subcategories returns the raw subcategory payloads in listing order.
func (c *Category) Subcategories(ctx context.Context) []models.Payload {
	c.item.ensureComplete(ctx, hasSubcategories)
	return c.item.snapshot().List("categories")
}

// Products flattens the category into its products: subcategories in
// listing order, products in order within each subcategory. The same
// product may also appear under other categories; entries here are
// independent Product instances sharing the category's Context.
func (c *Category) Products(ctx context.Context) []*Product {
	var products []*Product
	for _, subcategory := range c.Subcategories(ctx) {
		for _, payload := range subcategory.List("products") {
			product, err := NewProductFromPayload(payload, c.item.bound, c.item.api)
			if err != nil {
				c.item.log.Log("Skipping product without id in category %s", c.item.id)
				continue
			}
			products = append(products, product)
		}
	}
	return products
}
