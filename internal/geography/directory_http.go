package geography

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

const defaultHTTPTimeout = 3 * time.Second

// nodeResponse is the geography service's wire format. Its numeric ids and
// level numbers are decoded here and dropped.
type nodeResponse struct {
	ID         int64  `json:"id"`
	Level      int    `json:"level"`
	ParentID   *int64 `json:"parent_id"`
	Path       string `json:"path"`
	Selectable bool   `json:"selectable"`
}

// HTTPDirectory queries the external geography service over HTTP.
type HTTPDirectory struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPDirectory builds a directory client. A zero timeout uses the default.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPDirectory{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDirectory) Lookup(ctx context.Context, tenantID id.TenantID, path string) (Entry, error) {
	endpoint := fmt.Sprintf("%s/tenants/%s/nodes?path=%s",
		d.BaseURL, url.PathEscape(tenantID.String()), url.QueryEscape(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := d.Client.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, res.Body)
		return Entry{}, sentinel.ErrNotFound
	case res.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, res.Body)
		return Entry{}, fmt.Errorf("geography lookup failed, status code: %d", res.StatusCode)
	}

	var node nodeResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&node); err != nil {
		return Entry{}, fmt.Errorf("failed to decode response: %w", err)
	}
	canonical, err := canonicalize(node.Path)
	if err != nil {
		return Entry{}, fmt.Errorf("geography service returned malformed path: %w", err)
	}
	return Entry{Path: canonical, Selectable: node.Selectable}, nil
}
