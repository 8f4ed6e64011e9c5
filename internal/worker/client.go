// Package worker contains the HTTP client for invoking capability
// worker services.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Failure signals that a capability call did not produce a usable
// result: transport error, timeout, non-2xx response or an
// unparseable body. The executor converts it into a terminal failed
// job; it is never propagated as a crash.
type Failure struct {
	Capability string
	Message    string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("worker %s: %s", f.Capability, f.Message)
}

// Invoker is the executor-facing contract. Tests substitute stubs.
type Invoker interface {
	Invoke(ctx context.Context, capability string, payload map[string]any) (map[string]any, error)
}

// Client invokes capability endpoints over HTTP. It is stateless and
// does not retry; retry policy, if any, belongs to the caller.
type Client struct {
	endpoints  map[string]string
	httpClient *http.Client
}

// NewClient creates a client for the given capability -> base URL map.
// Endpoints come from configuration so tests can point capabilities at
// in-memory stubs.
func NewClient(endpoints map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	eps := make(map[string]string, len(endpoints))
	for name, url := range endpoints {
		// Ensure no trailing slash
		if len(url) > 0 && url[len(url)-1] == '/' {
			url = url[:len(url)-1]
		}
		eps[name] = url
	}
	return &Client{
		endpoints: eps,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Invoke sends the payload to the capability's /generate endpoint and
// returns the decoded JSON object. Any failure mode is reported as a
// *Failure carrying the capability name and a diagnostic message.
func (c *Client) Invoke(ctx context.Context, capability string, payload map[string]any) (map[string]any, error) {
	base, ok := c.endpoints[capability]
	if !ok {
		return nil, &Failure{Capability: capability, Message: "no endpoint configured"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Failure{Capability: capability, Message: fmt.Sprintf("failed to marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &Failure{Capability: capability, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Capability: capability, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Failure{
			Capability: capability,
			Message:    fmt.Sprintf("returned status %d: %s", resp.StatusCode, truncate(string(respBody), 256)),
		}
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &Failure{Capability: capability, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}
	return result, nil
}

// Health probes the capability's /health endpoint.
func (c *Client) Health(ctx context.Context, capability string) error {
	base, ok := c.endpoints[capability]
	if !ok {
		return &Failure{Capability: capability, Message: "no endpoint configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return &Failure{Capability: capability, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Failure{Capability: capability, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &Failure{Capability: capability, Message: fmt.Sprintf("health returned status %d", resp.StatusCode)}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
