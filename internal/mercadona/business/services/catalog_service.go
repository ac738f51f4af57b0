package services

import (
	"context"
	"fmt"
	"io"

	"gomercadona_api/internal/mercadona/business/entities"
	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/internal/mercadona/registry"
	"gomercadona_api/pkg/business/service"
	"gomercadona_api/pkg/logger"
)

const (
	homeEndpoint        = "/api/home/"
	newArrivalsEndpoint = "/api/home/new-arrivals/"
	categoriesEndpoint  = "/api/categories/"
)

// SearchProvider queries the hosted product index scoped by warehouse
// and language.
type SearchProvider interface {
	Query(ctx context.Context, query, warehouse, language string) ([]models.Payload, error)
}

// PostalResolver maps a postal code to the warehouse serving it.
type PostalResolver interface {
	Resolve(ctx context.Context, postalCode string) (string, bool)
}

// Dependencies carries the collaborators a catalog session needs.
type Dependencies struct {
	API      entities.Fetcher
	Search   SearchProvider
	Resolver PostalResolver
	Registry *registry.WarehouseRegistry

	// Retry overrides for entities built by the session. Zero values
	// fall back to the entity defaults.
	Retry        entities.RetryPolicy
	ProductRetry entities.RetryPolicy

	Writer io.Writer
}

// HomeSection is one named section of the home layout, partitioned into
// regular products and seasonal promotions.
type HomeSection struct {
	Name     string
	Products []*entities.Product
	Seasons  []*entities.Season
}

// Mercadona is a catalog session bound to one (warehouse, language)
// pair for its whole lifetime. Sessions hold no per-call state: every
// operation builds fresh entity instances, so one session may serve
// concurrent callers.
type Mercadona struct {
	bound        entities.Context
	api          entities.Fetcher
	search       SearchProvider
	retry        entities.RetryPolicy
	productRetry entities.RetryPolicy
	text         *service.TextService
	log          logger.Logger
}

// NewMercadona binds a session to a warehouse. code may be a known
// warehouse code or an arbitrary postal code; postal codes are resolved
// through the location service, and a code no warehouse serves is a
// configuration error.
func NewMercadona(ctx context.Context, code, language string, deps Dependencies) (*Mercadona, error) {
	if deps.API == nil {
		return nil, fmt.Errorf("a storefront API client is required")
	}
	if language == "" {
		language = "es"
	}

	reg := deps.Registry
	if reg == nil {
		reg = registry.Default()
	}

	warehouse := code
	if !reg.Has(code) {
		if deps.Resolver == nil {
			return nil, fmt.Errorf("unknown warehouse %q and no postal code resolver configured", code)
		}
		resolved, ok := deps.Resolver.Resolve(ctx, code)
		if !ok {
			return nil, fmt.Errorf("postal code %q is not served by any warehouse", code)
		}
		warehouse = resolved
	}

	retry := deps.Retry
	if retry.Attempts == 0 {
		retry = entities.DefaultRetryPolicy
	}
	productRetry := deps.ProductRetry
	if productRetry.Attempts == 0 {
		productRetry = entities.DefaultProductRetryPolicy
	}

	return &Mercadona{
		bound:        entities.Context{Warehouse: warehouse, Language: language},
		api:          deps.API,
		search:       deps.Search,
		retry:        retry,
		productRetry: productRetry,
		text:         service.NewTextService(),
		log:          logger.NewLogger(deps.Writer, fmt.Sprintf("[mercadona:%s]", warehouse)),
	}, nil
}

func (m *Mercadona) Warehouse() string {
	return m.bound.Warehouse
}

func (m *Mercadona) Language() string {
	return m.bound.Language
}

func (m *Mercadona) newProduct(id string) *entities.Product {
	return entities.NewProduct(id, m.bound, m.api).WithRetryPolicy(m.productRetry)
}

func (m *Mercadona) newProductFromPayload(payload models.Payload) (*entities.Product, error) {
	product, err := entities.NewProductFromPayload(payload, m.bound, m.api)
	if err != nil {
		return nil, err
	}
	return product.WithRetryPolicy(m.productRetry), nil
}

// Search queries the hosted index and returns only products that still
// resolve against the storefront; the index may reference removed ids.
func (m *Mercadona) Search(ctx context.Context, query string) ([]*entities.Product, error) {
	if m.search == nil {
		return nil, fmt.Errorf("no search provider configured")
	}

	normalized := m.text.NormalizeQuery(query)
	hits, err := m.search.Query(ctx, normalized, m.bound.Warehouse, m.bound.Language)
	if err != nil {
		return nil, fmt.Errorf("querying index for %q: %w", normalized, err)
	}

	products := make([]*entities.Product, 0, len(hits))
	for _, hit := range hits {
		id := hit.Identifier("id")
		if id == "" {
			continue
		}
		product := m.newProduct(id)
		if !product.Exists(ctx) {
			m.log.Log("Dropping stale search hit %s", id)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// HomeRecommendations fetches the home layout and partitions its items
// into named sections. Items flagged as promotional banners become
// Seasons; everything else becomes a Product.
func (m *Mercadona) HomeRecommendations(ctx context.Context) (map[string]*HomeSection, error) {
	payload, apiErr := m.fetch(ctx, homeEndpoint)
	if apiErr != nil {
		return nil, fmt.Errorf("fetching home layout: %w", apiErr)
	}

	sections := make(map[string]*HomeSection)
	for _, raw := range payload.List("sections") {
		name := raw.String("layout")
		section, ok := sections[name]
		if !ok {
			section = &HomeSection{Name: name}
			sections[name] = section
		}

		for _, item := range raw.Section("content").List("items") {
			if item.String("layout") == "banner" {
				id := item.Identifier("id")
				if id == "" {
					continue
				}
				season := entities.NewSeason(id, m.bound, m.api).WithRetryPolicy(m.retry)
				section.Seasons = append(section.Seasons, season)
				continue
			}

			product, err := m.newProductFromPayload(item)
			if err != nil {
				m.log.Log("Skipping home item without id in section %q", name)
				continue
			}
			section.Products = append(section.Products, product)
		}
	}
	return sections, nil
}

// NewArrivals lists the products recently added to the catalog.
func (m *Mercadona) NewArrivals(ctx context.Context) ([]*entities.Product, error) {
	payload, apiErr := m.fetch(ctx, newArrivalsEndpoint)
	if apiErr != nil {
		return nil, fmt.Errorf("fetching new arrivals: %w", apiErr)
	}

	items := payload.List("items")
	products := make([]*entities.Product, 0, len(items))
	for _, item := range items {
		product, err := m.newProductFromPayload(item)
		if err != nil {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// Categories fetches the category root listing flattened to its level-1
// categories.
func (m *Mercadona) Categories(ctx context.Context) ([]*entities.Category, error) {
	payload, apiErr := m.fetch(ctx, categoriesEndpoint)
	if apiErr != nil {
		return nil, fmt.Errorf("fetching categories: %w", apiErr)
	}

	var categories []*entities.Category
	for _, group := range payload.List("results") {
		for _, raw := range group.List("categories") {
			id := raw.Identifier("id")
			if id == "" {
				continue
			}
			category := entities.NewCategory(id, raw.String("name"), m.bound, m.api).WithRetryPolicy(m.retry)
			categories = append(categories, category)
		}
	}
	return categories, nil
}

// Catalog unions every category's product list. A product filed under
// several categories appears once per category; deduplication is left
// to the caller.
func (m *Mercadona) Catalog(ctx context.Context) ([]*entities.Product, error) {
	categories, err := m.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var catalog []*entities.Product
	for _, category := range categories {
		products := category.Products(ctx)
		m.log.Log("Found %d products in category %s", len(products), category.ID())
		catalog = append(catalog, products...)
	}
	return catalog, nil
}

func (m *Mercadona) fetch(ctx context.Context, endpoint string) (models.Payload, error) {
	payload, apiErr := m.api.FetchJSON(ctx, endpoint, m.bound.QueryParams())
	if apiErr != nil {
		return nil, apiErr
	}
	return payload, nil
}
