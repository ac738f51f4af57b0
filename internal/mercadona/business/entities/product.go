package entities

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/pkg/logger"
)

const (
	productEndpoint  = "/api/products/%s/"
	xsellingEndpoint = "/api/products/%s/xselling/"
)

// Product is a catalog product backed by /api/products/{id}/. It is
// constructed from an identifier alone or from a partial listing
// payload; either way no network call happens until a field is read.
//
// Listing payloads (category pages, search hits, seasons) lack the
// "details" section as well as the EAN and photo arrays. Accessors
// backed by those parts trigger a single follow-up fetch of the full
// payload the first time they are read.
type Product struct {
	item remoteItem
}

// NewProduct builds a product from its identifier.
func NewProduct(id string, bound Context, api Fetcher) *Product {
	return &Product{
		item: newRemoteItem(id, fmt.Sprintf(productEndpoint, id), bound, api, DefaultProductRetryPolicy, nil),
	}
}

// NewProductFromPayload builds a product from an already-fetched
// (possibly partial) payload. The payload must carry an "id" key.
func NewProductFromPayload(payload models.Payload, bound Context, api Fetcher) (*Product, error) {
	id := payload.Identifier("id")
	if id == "" {
		return nil, fmt.Errorf("product payload must contain an 'id' key")
	}
	p := &Product{
		item: newRemoteItem(id, fmt.Sprintf(productEndpoint, id), bound, api, DefaultProductRetryPolicy, nil),
	}
	p.item.data = payload
	p.item.loaded = true
	return p, nil
}

// WithRetryPolicy overrides the rate-limit retry policy.
func (p *Product) WithRetryPolicy(retry RetryPolicy) *Product {
	p.item.retry = retry
	return p
}

// WithLogger overrides the logger used by the fetch engine.
func (p *Product) WithLogger(log logger.Logger) *Product {
	p.item.log = log
	return p
}

func (p *Product) ID() string {
	return p.item.id
}

func (p *Product) Context() Context {
	return p.item.bound
}

// Exists forces a fetch and reports whether the product still resolves
// upstream. Search hits must be filtered through this: the search index
// can reference products that were removed from the catalog.
func (p *Product) Exists(ctx context.Context) bool {
	return p.item.exists(ctx)
}

// Refresh discards the cached payload and fetches it again.
func (p *Product) Refresh(ctx context.Context) {
	p.item.refresh(ctx)
}

// hasDetails is the completeness predicate for detail-tier fields.
func hasDetails(payload models.Payload) bool {
	return payload.Has("details")
}

func hasKey(key string) func(models.Payload) bool {
	return func(payload models.Payload) bool {
		return payload.Has(key)
	}
}

func (p *Product) details(ctx context.Context) models.Payload {
	p.item.ensureComplete(ctx, hasDetails)
	return p.item.snapshot().Section("details")
}

func (p *Product) priceInstructions(ctx context.Context) models.Payload {
	p.item.ensureLoaded(ctx)
	return p.item.snapshot().Section("price_instructions")
}

// EAN is only present in the full payload, so a partial-payload product
// resolves it with a follow-up fetch.
func (p *Product) EAN(ctx context.Context) string {
	p.item.ensureComplete(ctx, hasKey("ean"))
	return p.item.snapshot().String("ean")
}

func (p *Product) Name(ctx context.Context) string {
	p.item.ensureLoaded(ctx)
	return p.item.snapshot().String("display_name")
}

func (p *Product) Slug(ctx context.Context) string {
	p.item.ensureLoaded(ctx)
	return p.item.snapshot().String("slug")
}

func (p *Product) Brand(ctx context.Context) string {
	p.item.ensureLoaded(ctx)
	return p.item.snapshot().String("brand")
}

func (p *Product) LegalName(ctx context.Context) string {
	return p.details(ctx).String("legal_name")
}

func (p *Product) Description(ctx context.Context) string {
	return p.details(ctx).String("description")
}

func (p *Product) Origin(ctx context.Context) string {
	return p.details(ctx).String("origin")
}

// AlcoholByVolume parses the "37.5º" style percentage from the details
// section. ok is false for products without one.
func (p *Product) AlcoholByVolume(ctx context.Context) (float64, bool) {
	raw := p.details(ctx).String("alcohol_by_volume")
	if raw == "" {
		return 0, false
	}
	percentage, err := strconv.ParseFloat(strings.TrimSuffix(raw, "º"), 64)
	if err != nil {
		return 0, false
	}
	return percentage, true
}

func (p *Product) Suppliers(ctx context.Context) []string {
	suppliers := p.details(ctx).List("suppliers")
	names := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		if name := s.String("name"); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (p *Product) UnitPrice(ctx context.Context) (float64, bool) {
	return p.priceInstructions(ctx).Float("unit_price")
}

func (p *Product) BulkPrice(ctx context.Context) (float64, bool) {
	return p.priceInstructions(ctx).Float("bulk_price")
}

func (p *Product) IsDiscounted(ctx context.Context) bool {
	return p.priceInstructions(ctx).Bool("price_decreased")
}

// PreviousPrice is only meaningful for discounted products.
func (p *Product) PreviousPrice(ctx context.Context) (float64, bool) {
	if !p.IsDiscounted(ctx) {
		return 0, false
	}
	return p.priceInstructions(ctx).Float("previous_unit_price")
}

// IVA is the tax rate percentage applied to the product.
func (p *Product) IVA(ctx context.Context) (int, bool) {
	return p.priceInstructions(ctx).Int("iva")
}

func (p *Product) IsNew(ctx context.Context) bool {
	return p.priceInstructions(ctx).Bool("is_new")
}

func (p *Product) IsPack(ctx context.Context) bool {
	return p.priceInstructions(ctx).Bool("is_pack")
}

func (p *Product) PackSize(ctx context.Context) (int, bool) {
	if !p.IsPack(ctx) {
		return 0, false
	}
	return p.priceInstructions(ctx).Int("pack_size")
}

// MinimumAmount defaults to a single unit when the storefront does not
// state a minimum bunch.
func (p *Product) MinimumAmount(ctx context.Context) int {
	if n, ok := p.priceInstructions(ctx).Int("min_bunch_amount"); ok {
		return n
	}
	return 1
}

// Weight is the unit size in kilograms or liters.
func (p *Product) Weight(ctx context.Context) (float64, bool) {
	return p.priceInstructions(ctx).Float("unit_size")
}

// AgeCheck reports whether buying the product requires an age check.
func (p *Product) AgeCheck(ctx context.Context) bool {
	p.item.ensureLoaded(ctx)
	return p.item.snapshot().Section("badges").Bool("requires_age_check")
}

// Photos resolves the product photo references. Partial payloads do not
// carry them, so this may trigger the follow-up fetch.
func (p *Product) Photos(ctx context.Context) []*Photo {
	p.item.ensureComplete(ctx, hasKey("photos"))
	refs := p.item.snapshot().List("photos")
	photos := make([]*Photo, 0, len(refs))
	for _, ref := range refs {
		if regular := ref.String("regular"); regular != "" {
			photos = append(photos, NewPhoto(regular))
		}
	}
	return photos
}

// CategoryNames lists the names of the top-level categories the product
// is filed under.
func (p *Product) CategoryNames(ctx context.Context) []string {
	p.item.ensureLoaded(ctx)
	categories := p.item.snapshot().List("categories")
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if name := c.String("name"); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Category resolves the leaf category the product belongs to: the first
// nested category of the first top-level one. Returns nil when the
// payload carries no category path.
func (p *Product) Category(ctx context.Context) *Category {
	p.item.ensureLoaded(ctx)
	categories := p.item.snapshot().List("categories")
	if len(categories) == 0 {
		return nil
	}
	nested := categories[0].List("categories")
	if len(nested) == 0 {
		return nil
	}
	leaf := nested[0]
	id := leaf.Identifier("id")
	if id == "" {
		return nil
	}
	return NewCategory(id, leaf.String("name"), p.item.bound, p.item.api)
}

// Recommended fetches the cross-selling suggestions shown next to the
// product.
func (p *Product) Recommended(ctx context.Context) ([]*Product, error) {
	payload, apiErr := p.item.api.FetchJSON(ctx, fmt.Sprintf(xsellingEndpoint, p.item.id), p.item.bound.QueryParams())
	if apiErr != nil {
		return nil, fmt.Errorf("fetching recommendations for %s: %w", p.item.id, apiErr)
	}

	results := payload.List("results")
	recommended := make([]*Product, 0, len(results))
	for _, r := range results {
		product, err := NewProductFromPayload(r, p.item.bound, p.item.api)
		if err != nil {
			continue
		}
		recommended = append(recommended, product)
	}
	return recommended, nil
}

// ToMapping forces every field to resolve and returns a flat snapshot
// of the product, suitable for catalog export rows.
func (p *Product) ToMapping(ctx context.Context) map[string]interface{} {
	row := map[string]interface{}{
		"id":             p.ID(),
		"warehouse":      p.item.bound.Warehouse,
		"ean":            p.EAN(ctx),
		"name":           p.Name(ctx),
		"slug":           p.Slug(ctx),
		"brand":          p.Brand(ctx),
		"legal_name":     p.LegalName(ctx),
		"description":    p.Description(ctx),
		"origin":         p.Origin(ctx),
		"is_discounted":  p.IsDiscounted(ctx),
		"is_new":         p.IsNew(ctx),
		"is_pack":        p.IsPack(ctx),
		"age_check":      p.AgeCheck(ctx),
		"minimum_amount": p.MinimumAmount(ctx),
		"suppliers":      strings.Join(p.Suppliers(ctx), "; "),
	}

	setFloat := func(key string, v float64, ok bool) {
		if ok {
			row[key] = v
		} else {
			row[key] = nil
		}
	}
	unitPrice, ok := p.UnitPrice(ctx)
	setFloat("unit_price", unitPrice, ok)
	bulkPrice, ok := p.BulkPrice(ctx)
	setFloat("bulk_price", bulkPrice, ok)
	previousPrice, ok := p.PreviousPrice(ctx)
	setFloat("previous_price", previousPrice, ok)
	weight, ok := p.Weight(ctx)
	setFloat("weight", weight, ok)
	abv, ok := p.AlcoholByVolume(ctx)
	setFloat("alcohol_by_volume", abv, ok)

	if iva, ok := p.IVA(ctx); ok {
		row["iva"] = iva
	} else {
		row["iva"] = nil
	}
	if packSize, ok := p.PackSize(ctx); ok {
		row["pack_size"] = packSize
	} else {
		row["pack_size"] = nil
	}

	photos := p.Photos(ctx)
	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		urls = append(urls, photo.URL())
	}
	row["photos"] = strings.Join(urls, "; ")

	if category := p.Category(ctx); category != nil {
		row["category"] = category.name
	} else {
		row["category"] = ""
	}

	return row
}
