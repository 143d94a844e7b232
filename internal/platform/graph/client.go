// Package graph is a thin client for the Facebook Graph API family, shared
// by the adapters that speak it. Requests are built from named parameters,
// responses are JSON; a structured "error" object in any response surfaces
// as a *platform.ProviderError tagged with the owning adapter's name.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/postlinehq/postline/internal/platform"
)

const (
	// DefaultBaseURL is the Graph API root, pinned to one version so
	// response shapes stay stable.
	DefaultBaseURL = "https://graph.facebook.com/v19.0"

	requestTimeout = 30 * time.Second
)

// Client issues Graph API requests on behalf of one provider adapter.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// New builds a client for the given provider name. An empty baseURL selects
// the production Graph API; tests point it at a local server.
func New(provider, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = requestTimeout

	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     rc.StandardClient(),
		limiter:  rate.NewLimiter(rate.Limit(5), 10),
	}
}

// Get issues a GET against path with the given query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, out)
}

// Post issues a POST against path with the parameters form-encoded in the
// body.
func (c *Client) Post(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, params, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if perr := c.providerError(payload); perr != nil {
		return perr
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// providerError maps a structured error payload to *platform.ProviderError.
func (c *Client) providerError(payload []byte) error {
	var envelope struct {
		Error *struct {
			Message      string `json:"message"`
			Type         string `json:"type"`
			Code         int    `json:"code"`
			ErrorSubcode int    `json:"error_subcode"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	return &platform.ProviderError{
		Provider: c.provider,
		Message:  envelope.Error.Message,
		Code:     envelope.Error.Code,
		Subcode:  envelope.Error.ErrorSubcode,
		Raw:      json.RawMessage(payload),
	}
}
