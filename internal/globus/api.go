package globus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/retry"
)

// restClient issues authenticated requests against one Globus service.
// The HTTP client carries an oauth2 transport that injects the bearer
// token for the service.
type restClient struct {
	service string
	baseURL string
	http    *http.Client
}

func newRESTClient(service string, httpClient *http.Client) *restClient {
	return &restClient{
		service: service,
		baseURL: BaseURL(service),
		http:    httpClient,
	}
}

// do issues one request and parses the JSON response. Rate limits and 5xx
// responses are retried with exponential backoff; other API errors are
// fatal.
func (c *restClient) do(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("failed to marshal %s request body: %w", c.service, err)
		}
	}

	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var result gjson.Result
	err := retry.WithExponentialBackoff(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to build request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s request failed: %w", c.service, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s response: %w", c.service, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := newAPIError(c.service, resp.StatusCode, data)
			if isRetryable(apiErr) {
				return apiErr
			}
			return retry.Fatal(apiErr)
		}

		result = gjson.ParseBytes(data)
		return nil
	}, retry.WithMaxRetries(3), retry.WithInitialDelay(time.Second))

	if err != nil {
		return gjson.Result{}, err
	}
	return result, nil
}

func (c *restClient) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *restClient) post(ctx context.Context, path string, body any) (gjson.Result, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *restClient) put(ctx context.Context, path string, body any) (gjson.Result, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *restClient) patch(ctx context.Context, path string, body any) (gjson.Result, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

func (c *restClient) delete(ctx context.Context, path string) (gjson.Result, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
