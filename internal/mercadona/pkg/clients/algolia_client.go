package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/pkg/logger"
)

// Algolia hosts the storefront's product search index. The application
// id and the search-only API key are public: the web shop ships them to
// every browser.
const (
	AlgoliaAppID  = "7UZJKL1DJ0"
	AlgoliaAPIKey = "9d8f2e39e90df472b4f2e559a116fe17"
)

// AlgoliaClient queries the hosted search index. The index name is
// scoped per warehouse and language: products_prod_{warehouse}_{lang}.
type AlgoliaClient struct {
	appID  string
	apiKey string
	log    logger.Logger
	client *http.Client
}

func NewAlgoliaClient(writer io.Writer) *AlgoliaClient {
	return &AlgoliaClient{
		appID:  AlgoliaAppID,
		apiKey: AlgoliaAPIKey,
		log:    logger.NewLogger(writer, "[algolia]"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AlgoliaClient) indexURL(warehouse, language string) string {
	index := fmt.Sprintf("products_prod_%s_%s", warehouse, language)
	return fmt.Sprintf("https://%s-dsn.algolia.net/1/indexes/%s/query", c.appID, index)
}

// Query posts a free-text query and returns the ranked hits. Each hit
// carries at least the product id; callers must still validate hits
// against the storefront because the index can lag behind deletions.
func (c *AlgoliaClient) Query(ctx context.Context, query, warehouse, language string) ([]models.Payload, error) {
	requestBody, err := json.Marshal(map[string]string{
		"params": "query=" + url.QueryEscape(query),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexURL(warehouse, language), bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-algolia-application-id", c.appID)
	req.Header.Set("x-algolia-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	payload, err := models.DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	hits := payload.List("hits")
	c.log.Log("Query %q returned %d hits", query, len(hits))
	return hits, nil
}
