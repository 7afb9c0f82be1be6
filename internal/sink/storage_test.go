package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/exa-people-search/pkg/storage"
)

func newLocal(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	return s
}

func readLines(t *testing.T, s storage.Storage, key string) []string {
	t.Helper()
	rc, err := s.Read(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()

	var lines []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestStorageDatasetPushDataKeepsOrder(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	ds := NewStorageDatasetBackend(local).Dataset("default")

	items := []json.RawMessage{
		json.RawMessage(`{"id": "a",  "n": 1}`),
		json.RawMessage(`{"id": "b", "nested": {"x": [1, 2]}}`),
		json.RawMessage(`{"id": "c"}`),
	}
	require.NoError(t, ds.PushData(ctx, items))
	require.NoError(t, ds.PushData(ctx, items[:1]))

	files, err := local.List(ctx, "datasets/default/")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "datasets/default/000000001.jsonl", files[0].Key)
	assert.Equal(t, "datasets/default/000000002.jsonl", files[1].Key)

	lines := readLines(t, local, files[0].Key)
	require.Len(t, lines, 3)
	assert.Equal(t, `{"id":"a","n":1}`, lines[0])
	assert.Equal(t, `{"id":"b","nested":{"x":[1,2]}}`, lines[1])
	assert.Equal(t, `{"id":"c"}`, lines[2])
}

func TestStorageDatasetRejectsInvalidJSON(t *testing.T) {
	ds := NewStorageDatasetBackend(newLocal(t)).Dataset("default")
	err := ds.PushData(context.Background(), []json.RawMessage{json.RawMessage(`{`)})
	assert.Error(t, err)
}

func TestStorageKeyValueOverwrites(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	kv := NewStorageKeyValueBackend(local).Store("run-1")

	_, err := kv.GetValue(ctx, "search-metadata")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.SetValue(ctx, "search-metadata", map[string]int{"resultCount": 1}))
	require.NoError(t, kv.SetValue(ctx, "search-metadata", map[string]int{"resultCount": 2}))

	got, err := kv.GetValue(ctx, "search-metadata")
	require.NoError(t, err)
	assert.JSONEq(t, `{"resultCount":2}`, string(got))

	rc, err := local.Read(ctx, "key_value_stores/run-1/search-metadata.json")
	require.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"resultCount":2}`, string(raw))
}

func TestStorageKeyValueStoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := NewStorageKeyValueBackend(newLocal(t))

	require.NoError(t, backend.Store("a").SetValue(ctx, "k", "A"))
	_, err := backend.Store("b").GetValue(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenStorageBackends(t *testing.T) {
	b, err := Open(context.Background(), Config{
		Storage: storage.Config{Type: "local", Local: storage.LocalConfig{BasePath: t.TempDir()}},
	})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &StorageDatasetBackend{}, b.Dataset)
	assert.IsType(t, &StorageKeyValueBackend{}, b.KeyValue)
}

func TestOpenUnsupportedDrivers(t *testing.T) {
	base := storage.Config{Type: "local", Local: storage.LocalConfig{BasePath: t.TempDir()}}

	_, err := Open(context.Background(), Config{Storage: base, Dataset: DatasetConfig{Driver: "csv"}})
	assert.ErrorContains(t, err, "unsupported dataset driver")

	_, err = Open(context.Background(), Config{Storage: base, KeyValue: KeyValueConfig{Driver: "etcd"}})
	assert.ErrorContains(t, err, "unsupported key-value driver")
}
