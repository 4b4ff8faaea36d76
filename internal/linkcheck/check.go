package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var defaultClient = &http.Client{Timeout: 15 * time.Second}

// CheckImage reports whether url answers with a 2xx. HEAD is tried first and
// GET is used when the server refuses HEAD.
func CheckImage(ctx context.Context, client *http.Client, url string) (bool, error) {
	if client == nil {
		client = defaultClient
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false, fmt.Errorf("not an http url: %q", url)
	}

	status, err := do(ctx, client, http.MethodHead, url)
	if err != nil {
		return false, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = do(ctx, client, http.MethodGet, url)
		if err != nil {
			return false, err
		}
	}
	return status >= 200 && status < 300, nil
}

func do(ctx context.Context, client *http.Client, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "catalogview-linkcheck/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
