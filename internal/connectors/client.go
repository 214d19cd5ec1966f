package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/weave/internal/core/domain"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 16 << 20

	// maxErrorBody caps how much of an error body lands in the error
	// message.
	maxErrorBody = 512
)

// Client is a rate-limited HTTP client shared by the provider adapters.
type Client struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a client for the named provider, throttled to
// perSecond requests.
func NewClient(provider string, perSecond float64) *Client {
	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: DefaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// HTTP exposes the underlying http.Client for libraries that take one.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Do waits for the rate limiter, performs the request and returns the
// response body. Any non-2xx status becomes a *domain.ProviderError.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, domain.NewProviderError(c.provider, resp.StatusCode, msg)
	}
	return body, nil
}

// DoJSON performs the request and decodes the JSON response into out.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.provider, err)
	}
	return nil
}

// DecodeCredentials parses a token endpoint response body into a
// credential record, keeping the full payload in Raw. A response
// without an access token is treated as a provider failure even when
// the status was 2xx, because some providers report OAuth errors with
// 200 responses.
func DecodeCredentials(provider string, body []byte) (*domain.CredentialRecord, error) {
	var record domain.CredentialRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode %s token response: %w", provider, err)
	}
	if record.AccessToken == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, domain.NewProviderError(provider, http.StatusOK, "token response without access_token: "+msg)
	}
	record.Raw = append(json.RawMessage(nil), body...)
	return &record, nil
}
