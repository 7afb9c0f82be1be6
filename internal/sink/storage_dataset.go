package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/weiawesome/exa-people-search/pkg/storage"
)

const datasetsPrefix = "datasets"

// StorageDatasetBackend writes datasets as JSON Lines objects. Every push
// becomes datasets/<store>/<seq>.jsonl with a zero-padded sequence number.
type StorageDatasetBackend struct {
	store storage.Storage
}

func NewStorageDatasetBackend(store storage.Storage) *StorageDatasetBackend {
	return &StorageDatasetBackend{store: store}
}

func (b *StorageDatasetBackend) Dataset(storeID string) DatasetSink {
	return &storageDataset{store: b.store, prefix: fmt.Sprintf("%s/%s/", datasetsPrefix, storeID)}
}

// Close is a no-op; the object store is shared and closed by its owner.
func (b *StorageDatasetBackend) Close() error { return nil }

type storageDataset struct {
	store  storage.Storage
	prefix string
}

func (d *storageDataset) PushData(ctx context.Context, items []json.RawMessage) error {
	var buf bytes.Buffer
	for i, item := range items {
		if err := json.Compact(&buf, item); err != nil {
			return fmt.Errorf("item %d is not valid JSON: %w", i, err)
		}
		buf.WriteByte('\n')
	}

	existing, err := d.store.List(ctx, d.prefix)
	if err != nil {
		return fmt.Errorf("failed to list dataset: %w", err)
	}
	key := fmt.Sprintf("%s%09d.jsonl", d.prefix, len(existing)+1)

	if err := d.store.Write(ctx, key, &buf, int64(buf.Len()), "application/x-ndjson"); err != nil {
		return fmt.Errorf("failed to write dataset chunk: %w", err)
	}
	return nil
}
