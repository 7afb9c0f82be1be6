package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchConfig configures the Elasticsearch dataset backend.
type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

// ESDatasetBackend indexes every dataset into <prefix>-<store>. Records
// are stored verbatim as document sources.
type ESDatasetBackend struct {
	client      *elasticsearch.Client
	indexPrefix string
}

// NewESDatasetBackend creates the client and verifies the cluster is reachable.
func NewESDatasetBackend(cfg ElasticsearchConfig) (*ESDatasetBackend, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	res.Body.Close()

	return newESDatasetBackend(client, cfg.IndexPrefix), nil
}

func newESDatasetBackend(client *elasticsearch.Client, indexPrefix string) *ESDatasetBackend {
	if indexPrefix == "" {
		indexPrefix = "people-search"
	}
	return &ESDatasetBackend{client: client, indexPrefix: indexPrefix}
}

// IndexName returns the index a store's dataset is written to.
func (b *ESDatasetBackend) IndexName(storeID string) string {
	return strings.ToLower(b.indexPrefix + "-" + storeID)
}

func (b *ESDatasetBackend) Dataset(storeID string) DatasetSink {
	return &esDataset{client: b.client, index: b.IndexName(storeID)}
}

func (b *ESDatasetBackend) Close() error { return nil }

type esDataset struct {
	client *elasticsearch.Client
	index  string
}

// PushData sends one _bulk request with an index action per item.
func (d *esDataset) PushData(ctx context.Context, items []json.RawMessage) error {
	var buf bytes.Buffer
	for i, item := range items {
		buf.WriteString(`{"index":{}}`)
		buf.WriteByte('\n')
		if err := json.Compact(&buf, item); err != nil {
			return fmt.Errorf("item %d is not valid JSON: %w", i, err)
		}
		buf.WriteByte('\n')
	}

	res, err := d.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		d.client.Bulk.WithContext(ctx),
		d.client.Bulk.WithIndex(d.index),
		d.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if result.Errors {
		return fmt.Errorf("bulk index rejected items: %s", result.firstError())
	}
	return nil
}

// esBulkResponse is the subset of the _bulk response that is checked.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (r esBulkResponse) firstError() string {
	for _, item := range r.Items {
		for _, op := range item {
			if op.Error != nil {
				return fmt.Sprintf("%s: %s", op.Error.Type, op.Error.Reason)
			}
		}
	}
	return "unknown error"
}
