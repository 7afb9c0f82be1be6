package domain

import (
	"encoding/json"
	"time"
)

const (
	// CategoryPeople is the only provider category this service queries.
	CategoryPeople = "people"
	// SearchTypeAuto lets the provider pick neural or keyword search.
	SearchTypeAuto = "auto"

	// MetadataKey is the key-value store key overwritten by every run.
	MetadataKey = "search-metadata"
	// InputKey is the key-value store key the run input is read from.
	InputKey = "INPUT"

	// ExecutedAtLayout renders timestamps like JavaScript's toISOString.
	ExecutedAtLayout = "2006-01-02T15:04:05.000Z"
)

// SearchRequest is the fully derived provider request.
type SearchRequest struct {
	Query        string             `json:"query"`
	Category     string             `json:"category"`
	NumResults   int                `json:"numResults"`
	UserLocation string             `json:"userLocation"`
	Type         string             `json:"type"`
	Text         *TextOptions       `json:"text,omitempty"`
	Highlights   *HighlightsOptions `json:"highlights,omitempty"`
}

// TextOptions enables page text extraction.
type TextOptions struct {
	MaxCharacters int `json:"maxCharacters"`
}

// HighlightsOptions enables highlight extraction for Query.
type HighlightsOptions struct {
	Query            string `json:"query"`
	NumSentences     int    `json:"numSentences"`
	HighlightsPerURL int    `json:"highlightsPerUrl"`
}

// SearchResponse is the provider response. Results are kept as raw JSON so
// they can be persisted verbatim.
type SearchResponse struct {
	RequestID          string            `json:"requestId,omitempty"`
	ResolvedSearchType string            `json:"resolvedSearchType,omitempty"`
	SearchTime         *float64          `json:"searchTime,omitempty"`
	CostDollars        json.RawMessage   `json:"costDollars,omitempty"`
	Results            []json.RawMessage `json:"results"`
}

// Metadata is the record stored under MetadataKey.
type Metadata struct {
	RequestID          string          `json:"requestId,omitempty"`
	ResolvedSearchType string          `json:"resolvedSearchType,omitempty"`
	SearchTime         *float64        `json:"searchTime,omitempty"`
	CostDollars        json.RawMessage `json:"costDollars,omitempty"`
	Query              string          `json:"query"`
	UserLocation       string          `json:"userLocation"`
	NumResults         int             `json:"numResults"`
	IncludeText        bool            `json:"includeText"`
	ResultCount        int             `json:"resultCount"`
	ExecutedAt         string          `json:"executedAt"`
}

// NewMetadata builds the metadata record for a completed search.
func NewMetadata(in *Input, req *SearchRequest, resp *SearchResponse, now time.Time) *Metadata {
	return &Metadata{
		RequestID:          resp.RequestID,
		ResolvedSearchType: resp.ResolvedSearchType,
		SearchTime:         resp.SearchTime,
		CostDollars:        resp.CostDollars,
		Query:              in.QueryValue(),
		UserLocation:       req.UserLocation,
		NumResults:         req.NumResults,
		IncludeText:        in.IncludeTextValue(),
		ResultCount:        len(resp.Results),
		ExecutedAt:         now.UTC().Format(ExecutedAtLayout),
	}
}
