package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Defaults applied to unset input fields.
const (
	DefaultUserLocation     = "US"
	DefaultNumResults       = 10
	DefaultMaxCharacters    = 2000
	DefaultNumSentences     = 3
	DefaultHighlightsPerURL = 3
)

// Input is the caller-supplied run input. Pointer fields distinguish
// "unset" from zero values so defaults apply only to missing fields.
// Numeric fields accept any JSON number; they are clamped before use.
type Input struct {
	ExaAPIKey        string   `json:"exaApiKey,omitempty"`
	Query            *string  `json:"query,omitempty"`
	UserLocation     *string  `json:"userLocation,omitempty"`
	NumResults       *float64 `json:"numResults,omitempty"`
	IncludeText      *bool    `json:"includeText,omitempty"`
	MaxCharacters    *float64 `json:"maxCharacters,omitempty"`
	HighlightsQuery  *string  `json:"highlightsQuery,omitempty"`
	NumSentences     *float64 `json:"numSentences,omitempty"`
	HighlightsPerURL *float64 `json:"highlightsPerUrl,omitempty"`
}

// QueryValue returns the query as given, or "" when unset.
func (in *Input) QueryValue() string {
	if in.Query == nil {
		return ""
	}
	return *in.Query
}

// IncludeTextValue reports whether text extraction was requested.
func (in *Input) IncludeTextValue() bool {
	return in.IncludeText != nil && *in.IncludeText
}

// ParseInput decodes raw run input. Empty data or a JSON null yields a nil
// Input, which the orchestrator rejects as missing. A non-string query is
// reported as a missing query; other type mismatches are configuration
// errors naming the field.
func ParseInput(data []byte) (*Input, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, NewConfigurationError("input must be a JSON object", err)
	}

	if raw, ok := fields["query"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, NewConfigurationError(MsgQueryRequired, nil)
		}
	}
	// A null field behaves like a missing one.
	for k, raw := range fields {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			delete(fields, k)
		}
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return nil, NewConfigurationError("invalid input", err)
	}

	var in Input
	if err := json.Unmarshal(normalized, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, NewConfigurationError("invalid input field "+typeErr.Field, err)
		}
		return nil, NewConfigurationError("invalid input", err)
	}
	return &in, nil
}
