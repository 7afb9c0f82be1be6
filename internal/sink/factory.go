package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiawesome/exa-people-search/pkg/database"
	"github.com/weiawesome/exa-people-search/pkg/storage"
)

// Driver names.
const (
	DriverStorage       = "storage"
	DriverElasticsearch = "elasticsearch"
	DriverRedis         = "redis"
	DriverDatabase      = "database"
)

// DatasetConfig selects the dataset backend.
type DatasetConfig struct {
	Driver        string              `mapstructure:"driver"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// KeyValueConfig selects the key-value backend.
type KeyValueConfig struct {
	Driver   string          `mapstructure:"driver"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Database database.Config `mapstructure:"database"`
}

// Config groups every sink setting.
type Config struct {
	Storage  storage.Config `mapstructure:"storage"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	KeyValue KeyValueConfig `mapstructure:"key_value"`
}

// Backends is the pair of sinks a run writes to.
type Backends struct {
	Dataset  DatasetBackend
	KeyValue KeyValueBackend
}

// Open builds both backends. The object store is only created when one of
// them uses the storage driver.
func Open(ctx context.Context, cfg Config) (*Backends, error) {
	var objects storage.Storage
	objectStore := func() (storage.Storage, error) {
		if objects != nil {
			return objects, nil
		}
		s, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		objects = s
		return s, nil
	}

	b := &Backends{}

	switch cfg.Dataset.Driver {
	case DriverStorage, "":
		s, err := objectStore()
		if err != nil {
			return nil, err
		}
		b.Dataset = NewStorageDatasetBackend(s)
	case DriverElasticsearch:
		es, err := NewESDatasetBackend(cfg.Dataset.Elasticsearch)
		if err != nil {
			return nil, err
		}
		b.Dataset = es
	default:
		return nil, fmt.Errorf("unsupported dataset driver: %s", cfg.Dataset.Driver)
	}

	switch cfg.KeyValue.Driver {
	case DriverStorage, "":
		s, err := objectStore()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KeyValue = NewStorageKeyValueBackend(s)
	case DriverRedis:
		r, err := NewRedisKeyValueBackend(cfg.KeyValue.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KeyValue = r
	case DriverDatabase:
		g, err := NewGormKeyValueBackend(cfg.KeyValue.Database)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KeyValue = g
	default:
		b.Close()
		return nil, fmt.Errorf("unsupported key-value driver: %s", cfg.KeyValue.Driver)
	}

	return b, nil
}

// Close closes both backends.
func (b *Backends) Close() error {
	var errs []error
	if b.Dataset != nil {
		errs = append(errs, b.Dataset.Close())
	}
	if b.KeyValue != nil {
		errs = append(errs, b.KeyValue.Close())
	}
	return errors.Join(errs...)
}
