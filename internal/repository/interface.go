package repository

import (
	"context"

	"github.com/weiawesome/exa-people-search/internal/domain"
)

// SearchProvider executes one search against the external provider.
type SearchProvider interface {
	Search(ctx context.Context, apiKey string, req *domain.SearchRequest) (*domain.SearchResponse, error)
}
