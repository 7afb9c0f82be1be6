package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/weiawesome/exa-people-search/pkg/storage"
)

const keyValuePrefix = "key_value_stores"

// StorageKeyValueBackend keeps each record as key_value_stores/<store>/<key>.json.
type StorageKeyValueBackend struct {
	store storage.Storage
}

func NewStorageKeyValueBackend(store storage.Storage) *StorageKeyValueBackend {
	return &StorageKeyValueBackend{store: store}
}

func (b *StorageKeyValueBackend) Store(storeID string) KeyValueStore {
	return &storageKV{store: b.store, storeID: storeID}
}

// Close is a no-op; the object store is shared and closed by its owner.
func (b *StorageKeyValueBackend) Close() error { return nil }

type storageKV struct {
	store   storage.Storage
	storeID string
}

func (s *storageKV) objectKey(key string) string {
	return fmt.Sprintf("%s/%s/%s.json", keyValuePrefix, s.storeID, key)
}

func (s *storageKV) SetValue(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := s.store.Write(ctx, s.objectKey(key), bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return fmt.Errorf("failed to write record %s: %w", key, err)
	}
	return nil
}

func (s *storageKV) GetValue(ctx context.Context, key string) (json.RawMessage, error) {
	rc, err := s.store.Read(ctx, s.objectKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return data, nil
}
