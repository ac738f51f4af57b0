package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/metrics"
	"gomercadona_api/pkg/logger"
)

const DefaultAPIURL = "https://tienda.mercadona.es"

// APIError is the structured result the transport hands to callers on
// any failed fetch. Code carries the upstream HTTP status; Code 0 means
// the request itself failed (connection error, undecodable body).
type APIError struct {
	Code int
	Err  error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api error (code %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("api error (code %d)", e.Code)
}

func (e *APIError) RateLimited() bool {
	return e.Code == http.StatusTooManyRequests
}

func (e *APIError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// APIClient performs GET requests against the storefront API and
// decodes JSON bodies. Failures never surface as panics or bare errors:
// every call returns either a payload or an *APIError.
type APIClient struct {
	APIURL  string
	log     logger.Logger
	client  *http.Client
	limiter *rate.Limiter
}

func NewAPIClient(apiURL string, writer io.Writer, logPrefix string) *APIClient {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &APIClient{
		APIURL: strings.TrimRight(apiURL, "/"),
		log:    logger.NewLogger(writer, logPrefix),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithLimiter sets a shared rate limiter awaited before every request.
func (c *APIClient) WithLimiter(limiter *rate.Limiter) *APIClient {
	c.limiter = limiter
	return c
}

// FetchJSON issues a GET for endpoint (an absolute path such as
// "/api/products/12345/") with the given query parameters.
func (c *APIClient) FetchJSON(ctx context.Context, endpoint string, params url.Values) (models.Payload, *APIError) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Err: fmt.Errorf("rate limiter wait: %w", err)}
		}
	}

	fullURL := c.APIURL + endpoint
	if len(params) > 0 {
		fullURL = fullURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordRequest(http.MethodGet, endpoint, 0, time.Since(start))
		select {
		case <-ctx.Done():
			return nil, &APIError{Err: fmt.Errorf("request was cancelled: %w", ctx.Err())}
		default:
			return nil, &APIError{Err: fmt.Errorf("failed to execute request: %w", err)}
		}
	}
	defer resp.Body.Close()

	metrics.RecordRequest(http.MethodGet, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Log("Non-OK status %d for %s", resp.StatusCode, endpoint)
		return nil, &APIError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	payload, err := models.DecodePayload(body)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	return payload, nil
}
