package services

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/internal/mercadona/pkg/clients"
	"gomercadona_api/internal/mercadona/registry"
)

type fakeAPI struct {
	mu        sync.Mutex
	payloads  map[string]models.Payload
	lastQuery url.Values
	calls     map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		payloads: make(map[string]models.Payload),
		calls:    make(map[string]int),
	}
}

func (f *fakeAPI) FetchJSON(ctx context.Context, endpoint string, params url.Values) (models.Payload, *clients.APIError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[endpoint]++
	f.lastQuery = params
	payload, ok := f.payloads[endpoint]
	if !ok {
		return nil, &clients.APIError{Code: http.StatusNotFound}
	}
	return payload, nil
}

type fakeSearch struct {
	hits      []models.Payload
	lastQuery string
	lastIndex string
}

func (f *fakeSearch) Query(ctx context.Context, query, warehouse, language string) ([]models.Payload, error) {
	f.lastQuery = query
	f.lastIndex = "products_prod_" + warehouse + "_" + language
	return f.hits, nil
}

type fakeResolver struct {
	table map[string]string
}

func (f *fakeResolver) Resolve(ctx context.Context, postalCode string) (string, bool) {
	warehouse, ok := f.table[postalCode]
	return warehouse, ok
}

func newTestSession(t *testing.T, api *fakeAPI, search SearchProvider) *Mercadona {
	t.Helper()
	session, err := NewMercadona(context.Background(), "mad1", "es", Dependencies{
		API:    api,
		Search: search,
	})
	require.NoError(t, err)
	return session
}

func TestNewMercadonaAcceptsKnownWarehouse(t *testing.T) {
	session := newTestSession(t, newFakeAPI(), nil)
	assert.Equal(t, "mad1", session.Warehouse())
	assert.Equal(t, "es", session.Language())
}

func TestNewMercadonaResolvesPostalCode(t *testing.T) {
	resolver := &fakeResolver{table: map[string]string{"28001": "mad2"}}

	session, err := NewMercadona(context.Background(), "28001", "en", Dependencies{
		API:      newFakeAPI(),
		Resolver: resolver,
	})
	require.NoError(t, err)
	assert.Equal(t, "mad2", session.Warehouse())
	assert.Equal(t, "en", session.Language())
}

func TestNewMercadonaRejectsUnservedPostalCode(t *testing.T) {
	resolver := &fakeResolver{table: map[string]string{}}

	_, err := NewMercadona(context.Background(), "99999", "es", Dependencies{
		API:      newFakeAPI(),
		Resolver: resolver,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not served")
}

func TestNewMercadonaUsesInjectedRegistry(t *testing.T) {
	custom := registry.NewWarehouseRegistry([]string{"test1"})

	session, err := NewMercadona(context.Background(), "test1", "es", Dependencies{
		API:      newFakeAPI(),
		Registry: custom,
	})
	require.NoError(t, err)
	assert.Equal(t, "test1", session.Warehouse())
}

func TestSearchFiltersStaleHits(t *testing.T) {
	api := newFakeAPI()
	api.payloads["/api/products/p1/"] = models.Payload{"id": "p1", "display_name": "Leche entera"}
	// p2 is in the index but gone from the catalog: the fake answers 404.

	search := &fakeSearch{hits: []models.Payload{
		{"id": "p1"},
		{"id": "p2"},
		{"name": "hit without id"},
	}}

	session := newTestSession(t, api, search)
	products, err := session.Search(context.Background(), "leche")
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID())
	assert.Equal(t, "products_prod_mad1_es", search.lastIndex)
}

func TestSearchNormalizesQuery(t *testing.T) {
	search := &fakeSearch{}
	session := newTestSession(t, newFakeAPI(), search)

	_, err := session.Search(context.Background(), "  azúcar   moreno ")
	require.NoError(t, err)
	assert.Equal(t, "azucar moreno", search.lastQuery)
}

func TestCategoriesFlattenToLevelOne(t *testing.T) {
	api := newFakeAPI()
	api.payloads["/api/categories/"] = models.Payload{
		"results": []interface{}{
			map[string]interface{}{
				"id":   float64(1),
				"name": "Aceite, especias y salsas",
				"categories": []interface{}{
					map[string]interface{}{"id": float64(112), "name": "Aceite"},
					map[string]interface{}{"id": float64(115), "name": "Especias"},
				},
			},
			map[string]interface{}{
				"id":   float64(2),
				"name": "Bodega",
				"categories": []interface{}{
					map[string]interface{}{"id": float64(164), "name": "Cerveza"},
				},
			},
		},
	}

	session := newTestSession(t, api, nil)
	categories, err := session.Categories(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 3)
	assert.Equal(t, "112", categories[0].ID())
	assert.Equal(t, "115", categories[1].ID())
	assert.Equal(t, "164", categories[2].ID())
	assert.Equal(t, "Aceite", categories[0].Name(context.Background()))
}

func TestCatalogUnionsCategoryProducts(t *testing.T) {
	api := newFakeAPI()
	api.payloads["/api/categories/"] = models.Payload{
		"results": []interface{}{
			map[string]interface{}{
				"categories": []interface{}{
					map[string]interface{}{"id": float64(112), "name": "Aceite"},
					map[string]interface{}{"id": float64(164), "name": "Cerveza"},
				},
			},
		},
	}
	api.payloads["/api/categories/112/"] = models.Payload{
		"categories": []interface{}{
			map[string]interface{}{"products": []interface{}{
				map[string]interface{}{"id": "p1"},
				map[string]interface{}{"id": "p2"},
			}},
		},
	}
	api.payloads["/api/categories/164/"] = models.Payload{
		"categories": []interface{}{
			map[string]interface{}{"products": []interface{}{
				map[string]interface{}{"id": "p2"}, // shared with the other category
			}},
		},
	}

	session := newTestSession(t, api, nil)
	catalog, err := session.Catalog(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(catalog))
	for _, product := range catalog {
		ids = append(ids, product.ID())
	}
	assert.Equal(t, []string{"p1", "p2", "p2"}, ids, "duplicates across categories are kept")
}

func TestNewArrivalsWrapItems(t *testing.T) {
	api := newFakeAPI()
	api.payloads["/api/home/new-arrivals/"] = models.Payload{
		"items": []interface{}{
			map[string]interface{}{"id": "p7", "display_name": "Turrón nuevo"},
		},
	}

	session := newTestSession(t, api, nil)
	products, err := session.NewArrivals(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "p7", products[0].ID())
}

func TestHomeRecommendationsPartitionSections(t *testing.T) {
	api := newFakeAPI()
	api.payloads["/api/home/"] = models.Payload{
		"sections": []interface{}{
			map[string]interface{}{
				"layout": "carousel",
				"content": map[string]interface{}{
					"items": []interface{}{
						map[string]interface{}{"id": "p1", "display_name": "Leche"},
						map[string]interface{}{"id": float64(9), "layout": "banner"},
					},
				},
			},
			map[string]interface{}{
				"layout": "grid",
				"content": map[string]interface{}{
					"items": []interface{}{
						map[string]interface{}{"id": "p2"},
					},
				},
			},
		},
	}

	session := newTestSession(t, api, nil)
	sections, err := session.HomeRecommendations(context.Background())
	require.NoError(t, err)

	require.Len(t, sections, 2)

	carousel := sections["carousel"]
	require.NotNil(t, carousel)
	require.Len(t, carousel.Products, 1)
	assert.Equal(t, "p1", carousel.Products[0].ID())
	require.Len(t, carousel.Seasons, 1)
	assert.Equal(t, "9", carousel.Seasons[0].ID())

	grid := sections["grid"]
	require.NotNil(t, grid)
	assert.Len(t, grid.Products, 1)
	assert.Empty(t, grid.Seasons)
}

func TestHomeRecommendationsSurfaceTransportErrors(t *testing.T) {
	session := newTestSession(t, newFakeAPI(), nil) // /api/home/ answers 404

	_, err := session.HomeRecommendations(context.Background())
	require.Error(t, err)
}
