package textextract

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchError reports a non-success response while fetching a remote
// source. Unlike local extraction faults it is fatal for the ingestion:
// a silent empty document would hide that the sheet was unreachable.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

// FetchRemote retrieves the published CSV/text representation of a
// remote sheet. A non-2xx response yields a *FetchError.
func FetchRemote(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request failed: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch remote source failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read remote source failed: %w", err)
	}
	return body, nil
}
