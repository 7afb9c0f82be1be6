package service

import (
	"context"

	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/internal/sink"
)

// PeopleSearchService runs one people search and persists its outcome.
type PeopleSearchService interface {
	// Run validates in, calls the provider once, pushes any results to
	// dataset and writes the run metadata to kv. Errors are *domain.Error.
	Run(ctx context.Context, in *domain.Input, dataset sink.DatasetSink, kv sink.KeyValueStore) (*domain.Metadata, error)
}
