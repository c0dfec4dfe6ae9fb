package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/port"
)

// HTTPConfigFetcher fetches account config from a call filter server
type HTTPConfigFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPConfigFetcher(baseURL string) *HTTPConfigFetcher {
	return &HTTPConfigFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchConfig returns the stored config of accountID. A 404 is reported as port.ErrAccountNotFound.
func (f *HTTPConfigFetcher) FetchConfig(ctx context.Context, accountID string) (*domain.Config, error) {
	u := fmt.Sprintf("%s/api/accounts/%s/config", f.baseURL, url.PathEscape(accountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", port.ErrAccountNotFound, accountID)
	default:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var cfg domain.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
