package sink

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by GetValue when the key has no record.
var ErrNotFound = errors.New("record not found")

// DatasetSink appends records to one dataset.
type DatasetSink interface {
	// PushData appends items in order with a single bulk write.
	PushData(ctx context.Context, items []json.RawMessage) error
}

// KeyValueStore holds small named records of one store. SetValue
// overwrites any previous value under the same key.
type KeyValueStore interface {
	SetValue(ctx context.Context, key string, value any) error
	GetValue(ctx context.Context, key string) (json.RawMessage, error)
}

// DatasetBackend opens datasets by store id.
type DatasetBackend interface {
	Dataset(storeID string) DatasetSink
	Close() error
}

// KeyValueBackend opens key-value stores by store id.
type KeyValueBackend interface {
	Store(storeID string) KeyValueStore
	Close() error
}
