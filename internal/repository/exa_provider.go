package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/weiawesome/exa-people-search/internal/domain"
	pkglog "github.com/weiawesome/exa-people-search/pkg/log"
)

const (
	DefaultExaBaseURL = "https://api.exa.ai"
	exaHost           = "api.exa.ai"
	searchPath        = "/search"
)

// ExaConfig configures the Exa client.
type ExaConfig struct {
	BaseURL string
	Timeout time.Duration
}

type exaProvider struct {
	endpoint   string
	bearerAuth bool
	client     *http.Client
}

// NewExaProvider creates a SearchProvider backed by the Exa /search API.
// Requests go through the logging transport.
func NewExaProvider(cfg ExaConfig) (SearchProvider, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultExaBaseURL
	}
	endpoint, err := resolveEndpoint(baseURL, searchPath)
	if err != nil {
		return nil, err
	}
	return &exaProvider{
		endpoint:   endpoint,
		bearerAuth: shouldAttachBearerAuth(baseURL),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: pkglog.Transport(http.DefaultTransport),
		},
	}, nil
}

// exaSearchPayload is the /search request body.
type exaSearchPayload struct {
	Query        string       `json:"query"`
	Type         string       `json:"type"`
	Category     string       `json:"category"`
	NumResults   int          `json:"numResults"`
	UserLocation string       `json:"userLocation,omitempty"`
	Contents     *exaContents `json:"contents,omitempty"`
}

type exaContents struct {
	Text       *domain.TextOptions       `json:"text,omitempty"`
	Highlights *domain.HighlightsOptions `json:"highlights,omitempty"`
}

func newPayload(req *domain.SearchRequest) exaSearchPayload {
	p := exaSearchPayload{
		Query:        req.Query,
		Type:         req.Type,
		Category:     req.Category,
		NumResults:   req.NumResults,
		UserLocation: req.UserLocation,
	}
	if req.Text != nil || req.Highlights != nil {
		p.Contents = &exaContents{Text: req.Text, Highlights: req.Highlights}
	}
	return p
}

// Search posts one request. Any failure, including a payload without a
// results array, is reported as a single upstream error.
func (p *exaProvider) Search(ctx context.Context, apiKey string, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	data, err := p.post(ctx, apiKey, newPayload(req))
	if err != nil {
		return nil, domain.NewUpstreamError(domain.MsgInvalidResponse, err)
	}

	if !gjson.GetBytes(data, "results").IsArray() {
		return nil, domain.NewUpstreamError(domain.MsgInvalidResponse, fmt.Errorf("response has no results array"))
	}

	var resp domain.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, domain.NewUpstreamError(domain.MsgInvalidResponse, fmt.Errorf("failed to decode response: %w", err))
	}
	return &resp, nil
}

func (p *exaProvider) post(ctx context.Context, apiKey string, payload exaSearchPayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	if p.bearerAuth {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(string(data), 512))
	}
	return data, nil
}

func resolveEndpoint(baseURL, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid exa base_url %q", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	return parsed.String(), nil
}

// shouldAttachBearerAuth is true for proxies in front of Exa, which expect
// a standard bearer token next to x-api-key.
func shouldAttachBearerAuth(baseURL string) bool {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Hostname() == "" {
		return true
	}
	return !strings.EqualFold(parsed.Hostname(), exaHost)
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
