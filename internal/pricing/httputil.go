package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Some quote pages refuse requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewHTTPClient returns the client shared by every price source. It keeps
// cookies between calls, which some quote sites require.
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		slog.Error("failed to create cookie jar", "error", err)
	}
	return &http.Client{Jar: jar, Timeout: timeout}
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

// get issues a GET and returns the body of a 200 response. The caller closes it.
func get(ctx context.Context, client *http.Client, addr string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %q: %w", addr, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := clientOrDefault(client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", addr, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status from %q: %s", addr, resp.Status)
	}
	return resp.Body, nil
}

// getJSON decodes the JSON body at addr into v.
func getJSON(ctx context.Context, client *http.Client, addr string, v any) error {
	body, err := get(ctx, client, addr)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %q: %w", addr, err)
	}
	return nil
}
