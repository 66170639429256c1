package enrichment

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultReaderTimeout is the total reader request timeout.
	DefaultReaderTimeout = 90 * time.Second
	// maxReaderBody caps how much page text is read into memory.
	maxReaderBody = 4 << 20
)

// Reader fetches rendered page text through a URL-templated reader service:
// GET {baseURL}{targetURL}.
type Reader struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewReader creates a Reader. apiKey is optional and sent as a bearer token.
func NewReader(baseURL, apiKey string, timeout time.Duration) *Reader {
	return NewReaderWithClient(baseURL, apiKey, NewHTTPClient(timeout))
}

// NewReaderWithClient creates a Reader with a caller-provided HTTP client.
func NewReaderWithClient(baseURL, apiKey string, client *http.Client) *Reader {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Reader{baseURL: baseURL, apiKey: apiKey, client: client}
}

// NewHTTPClient creates an HTTP client for outbound reader calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultReaderTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Scrape returns the page text for targetURL. Any transport error or non-2xx
// status is reported as ErrScrapeFailed.
func (r *Reader) Scrape(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", "Scoutdesk-Enricher/1.0")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("%w: reader returned status %d", ErrScrapeFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReaderBody))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrScrapeFailed, err)
	}

	return string(body), nil
}
