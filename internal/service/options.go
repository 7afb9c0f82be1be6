package service

import (
	"strings"

	"github.com/weiawesome/exa-people-search/internal/domain"
)

const (
	minNumResults    = 1
	maxNumResults    = 100
	minMaxCharacters = 100
	maxMaxCharacters = 10000
	minHighlights    = 1
	maxHighlights    = 10
)

// Validate checks the input and resolves the credential. The input key wins
// over fallbackAPIKey.
func Validate(in *domain.Input, fallbackAPIKey string) (query, apiKey string, err error) {
	if in == nil {
		return "", "", domain.NewConfigurationError(domain.MsgInputRequired, nil)
	}

	query = strings.TrimSpace(in.QueryValue())
	if query == "" {
		return "", "", domain.NewConfigurationError(domain.MsgQueryRequired, nil)
	}

	apiKey = strings.TrimSpace(in.ExaAPIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(fallbackAPIKey)
	}
	if apiKey == "" {
		return "", "", domain.NewConfigurationError(domain.MsgAPIKeyRequired, nil)
	}

	return query, apiKey, nil
}

// BuildRequest derives the provider request from a validated input.
func BuildRequest(in *domain.Input, query string) *domain.SearchRequest {
	req := &domain.SearchRequest{
		Query:        query,
		Category:     domain.CategoryPeople,
		NumResults:   clamp(in.NumResults, domain.DefaultNumResults, minNumResults, maxNumResults),
		UserLocation: domain.DefaultUserLocation,
		Type:         domain.SearchTypeAuto,
	}
	if in.UserLocation != nil {
		req.UserLocation = *in.UserLocation
	}

	if in.IncludeTextValue() {
		req.Text = &domain.TextOptions{
			MaxCharacters: clamp(in.MaxCharacters, domain.DefaultMaxCharacters, minMaxCharacters, maxMaxCharacters),
		}
	}

	if in.HighlightsQuery != nil {
		if hq := strings.TrimSpace(*in.HighlightsQuery); hq != "" {
			req.Highlights = &domain.HighlightsOptions{
				Query:            hq,
				NumSentences:     clamp(in.NumSentences, domain.DefaultNumSentences, minHighlights, maxHighlights),
				HighlightsPerURL: clamp(in.HighlightsPerURL, domain.DefaultHighlightsPerURL, minHighlights, maxHighlights),
			}
		}
	}

	return req
}

// clamp bounds v, or def when v is unset, to [lo, hi]. Fractions are
// truncated.
func clamp(v *float64, def, lo, hi int) int {
	if v == nil {
		return max(lo, min(def, hi))
	}
	f := *v
	if f < float64(lo) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}
