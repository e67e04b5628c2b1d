package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/domain"
)

// HTTPSource fetches recap documents relative to a base URL.
type HTTPSource struct {
	client  *http.Client
	baseURL *url.URL
	logger  *zap.Logger
}

// NewHTTPSource creates an HTTPSource. A nil client falls back to http.DefaultClient.
func NewHTTPSource(client *http.Client, baseURL string, logger *zap.Logger) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, baseURL: u, logger: logger}, nil
}

// FetchRecap GETs name relative to the base URL and decodes the body.
func (s *HTTPSource) FetchRecap(ctx context.Context, name string) (*domain.Recap, error) {
	if name == "" {
		name = DefaultRecapFile
	}
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	target := s.baseURL.ResolveReference(ref)
	s.logger.Debug("fetching recap", zap.String("url", target.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("failed to load %s: %d: %w", name, resp.StatusCode, ErrRecapNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("failed to load %s: %d", name, resp.StatusCode)
	}
	return decode(ctx, name, resp.Body)
}
