package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrRemoteBadStatus   = errors.New("catalog bad status")
	ErrRemoteUnavailable = errors.New("catalog unavailable")
)

// HTTPSource pulls the dataset from another catalog service's
// /api/v1/dataset endpoint.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *HTTPSource) Ping(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status=%d", ErrRemoteBadStatus, resp.StatusCode)
	}
	return nil
}

func (c *HTTPSource) Load(ctx context.Context) (Dataset, error) {
	resp, err := c.get(ctx, "/api/v1/dataset")
	if err != nil {
		return Dataset{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Dataset{}, fmt.Errorf("%w: status=%d", ErrRemoteBadStatus, resp.StatusCode)
	}

	var d Dataset
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return d, nil
}

func (c *HTTPSource) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return resp, nil
}
