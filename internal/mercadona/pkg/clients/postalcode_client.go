package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"gomercadona_api/pkg/logger"
)

const changePostalCodeEndpoint = "/api/postal-codes/actions/change-pc/"

// warehouseHeader is where the storefront reports the distribution
// center serving a postal code; the response body carries nothing
// useful.
const warehouseHeader = "X-Customer-Wh"

// PostalCodeClient resolves a postal code to the warehouse serving it.
type PostalCodeClient struct {
	apiURL string
	log    logger.Logger
	client *http.Client
}

func NewPostalCodeClient(apiURL string, writer io.Writer) *PostalCodeClient {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &PostalCodeClient{
		apiURL: apiURL,
		log:    logger.NewLogger(writer, "[postal-codes]"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve returns the warehouse code for postalCode, or ok=false when
// the code is not served or the lookup failed. Failures are swallowed
// on purpose: during discovery crawls a dead lookup just means "no
// warehouse here".
func (c *PostalCodeClient) Resolve(ctx context.Context, postalCode string) (string, bool) {
	requestBody, err := json.Marshal(map[string]string{"new_postal_code": postalCode})
	if err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.apiURL+changePostalCodeEndpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Log("Lookup failed for %s: %v", postalCode, err)
		return "", false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	warehouse := resp.Header.Get(warehouseHeader)
	if warehouse == "" {
		return "", false
	}
	return warehouse, true
}
