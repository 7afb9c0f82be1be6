package domain

import (
	"errors"
	"fmt"
)

// Kind classifies run failures. Every kind is terminal.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindUpstream
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Messages of the configuration checks.
const (
	MsgInputRequired   = "input is required, please provide a search query"
	MsgQueryRequired   = "search query is required and must be a non-empty string"
	MsgAPIKeyRequired  = "Exa API key is required, provide exaApiKey in the input or set EXA_API_KEY"
	MsgInvalidResponse = "invalid response from Exa API"
)

// Sentinels for errors.Is matching on kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")
	ErrPersistence   = errors.New("persistence error")
)

// Error is the single error type returned by a run.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrUpstream:
		return e.Kind == KindUpstream
	case ErrPersistence:
		return e.Kind == KindPersistence
	}
	return false
}

func NewConfigurationError(msg string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Err: err}
}

func NewUpstreamError(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func NewPersistenceError(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not a run error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
