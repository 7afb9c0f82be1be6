package service

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/internal/repository"
	"github.com/weiawesome/exa-people-search/internal/sink"
	"github.com/weiawesome/exa-people-search/pkg/log"
)

const logQueryLimit = 50

type peopleSearchServiceImpl struct {
	provider       repository.SearchProvider
	fallbackAPIKey string
	now            func() time.Time
}

// NewPeopleSearchService creates the orchestrator. fallbackAPIKey is used
// when the input carries no exaApiKey.
func NewPeopleSearchService(provider repository.SearchProvider, fallbackAPIKey string) PeopleSearchService {
	return &peopleSearchServiceImpl{
		provider:       provider,
		fallbackAPIKey: fallbackAPIKey,
		now:            time.Now,
	}
}

func (s *peopleSearchServiceImpl) Run(ctx context.Context, in *domain.Input, dataset sink.DatasetSink, kv sink.KeyValueStore) (*domain.Metadata, error) {
	l := log.Ctx(ctx)

	query, apiKey, err := Validate(in, s.fallbackAPIKey)
	if err != nil {
		return nil, err
	}
	req := BuildRequest(in, query)

	l.Info().
		Str(log.FieldQuery, truncateQuery(query)).
		Str(log.FieldUserLocation, req.UserLocation).
		Int(log.FieldNumResults, req.NumResults).
		Bool(log.FieldIncludeText, req.Text != nil).
		Msg("starting people search")
	l.Debug().Interface("options", req).Msg("search options")

	resp, err := s.provider.Search(ctx, apiKey, req)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, domain.NewUpstreamError(domain.MsgInvalidResponse, err)
	}
	if resp == nil || resp.Results == nil {
		return nil, domain.NewUpstreamError(domain.MsgInvalidResponse, nil)
	}

	l.Info().Int(log.FieldResultCount, len(resp.Results)).Msg("search returned results")

	if len(resp.Results) > 0 {
		if err := dataset.PushData(ctx, resp.Results); err != nil {
			return nil, domain.NewPersistenceError("failed to push results to dataset", err)
		}
		l.Info().Int(log.FieldResultCount, len(resp.Results)).Msg("results pushed to dataset")
	} else {
		l.Warn().Msg("no results found")
	}

	metadata := domain.NewMetadata(in, req, resp, s.now())
	if err := kv.SetValue(ctx, domain.MetadataKey, metadata); err != nil {
		return nil, domain.NewPersistenceError("failed to store search metadata", err)
	}

	l.Info().
		Str(log.FieldExaRequestID, metadata.RequestID).
		Str(log.FieldSearchType, metadata.ResolvedSearchType).
		Int(log.FieldResultCount, metadata.ResultCount).
		RawJSON(log.FieldCost, costOrNull(metadata.CostDollars)).
		Msg("people search completed")

	return metadata, nil
}

func truncateQuery(q string) string {
	r := []rune(q)
	if len(r) <= logQueryLimit {
		return q
	}
	return string(r[:logQueryLimit]) + "..."
}

func costOrNull(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
