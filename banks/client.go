package banks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// bankCallTimeout bounds every remote bank call. After this the caller
// applies the documented fallback for the operation.
const bankCallTimeout = 10 * time.Second

func newBankHTTPClient() *http.Client {
	return &http.Client{Timeout: bankCallTimeout}
}

// postJSON sends a JSON body with provider-specific headers and decodes the
// response into a generic map; provider response schemas differ too much for
// shared structs.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body map[string]interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return doJSON(ctx, client, http.MethodPost, url, headers, bytes.NewReader(b))
}

// getJSON issues a GET with provider-specific headers.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) (map[string]interface{}, error) {
	return doJSON(ctx, client, http.MethodGet, url, headers, nil)
}

func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body io.Reader) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bank API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	out := map[string]interface{}{}
	if len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, &out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return out, nil
}

// str pulls a string field out of a decoded provider response.
func str(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
