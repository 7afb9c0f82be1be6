package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestES(t *testing.T, handler http.HandlerFunc) *ESDatasetBackend {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return newESDatasetBackend(client, "People")
}

func TestESDatasetBulkIndexesInOrder(t *testing.T) {
	var path string
	var lines []string
	backend := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[]}`))
	})

	ds := backend.Dataset("Run-1")
	err := ds.PushData(context.Background(), []json.RawMessage{
		json.RawMessage(`{"id": "1"}`),
		json.RawMessage(`{"id": "2"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "/people-run-1/_bulk", path)
	assert.Equal(t, []string{`{"index":{}}`, `{"id":"1"}`, `{"index":{}}`, `{"id":"2"}`}, lines)
}

func TestESDatasetItemErrors(t *testing.T) {
	backend := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":true,"items":[{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad field"}}}]}`))
	})

	err := backend.Dataset("x").PushData(context.Background(), []json.RawMessage{json.RawMessage(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception: bad field")
}

func TestESDatasetHTTPError(t *testing.T) {
	backend := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	})

	err := backend.Dataset("x").PushData(context.Background(), []json.RawMessage{json.RawMessage(`{}`)})
	assert.ErrorContains(t, err, "elasticsearch error")
}
