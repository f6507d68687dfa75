// internal/browser/session/endpoint.go
package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// versionInfo is the subset of /json/version the session needs.
type versionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// targetInfo is one entry of /json/list.
type targetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// baseURL normalises a debug endpoint ("127.0.0.1:9222", "http://host:port/")
// into an http base URL without a trailing slash.
func baseURL(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	switch {
	case strings.HasPrefix(endpoint, "ws://"):
		endpoint = "http://" + strings.TrimPrefix(endpoint, "ws://")
	case strings.HasPrefix(endpoint, "wss://"):
		endpoint = "https://" + strings.TrimPrefix(endpoint, "wss://")
	case !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://"):
		endpoint = "http://" + endpoint
	}
	return endpoint
}

func getJSON(ctx context.Context, client *http.Client, url string, into interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("GET %s: invalid JSON: %w", url, err)
	}
	return nil
}

// fetchVersion asks the browser for its websocket debugger URL.
func fetchVersion(ctx context.Context, client *http.Client, base string) (*versionInfo, error) {
	var v versionInfo
	if err := getJSON(ctx, client, base+"/json/version", &v); err != nil {
		return nil, err
	}
	if v.WebSocketDebuggerURL == "" {
		return nil, fmt.Errorf("browser at %s did not report a websocket debugger URL", base)
	}
	return &v, nil
}

// listPages returns the open page targets in the order the browser reports
// them.
func listPages(ctx context.Context, client *http.Client, base string) ([]targetInfo, error) {
	var all []targetInfo
	if err := getJSON(ctx, client, base+"/json/list", &all); err != nil {
		return nil, err
	}
	pages := all[:0]
	for _, t := range all {
		if t.Type == "page" && !strings.HasPrefix(t.URL, "devtools://") {
			pages = append(pages, t)
		}
	}
	return pages, nil
}
