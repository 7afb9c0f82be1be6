package config

import (
	"time"

	"github.com/weiawesome/exa-people-search/internal/sink"
	pkgconfig "github.com/weiawesome/exa-people-search/pkg/config"
	"github.com/weiawesome/exa-people-search/pkg/pubsub"
	"github.com/weiawesome/exa-people-search/pkg/storage"
)

type Config struct {
	Exa      ExaConfig
	Run      RunConfig
	Storage  storage.Config
	Dataset  sink.DatasetConfig
	KeyValue sink.KeyValueConfig `mapstructure:"key_value"`
	Events   pubsub.Config
	Server   ServerConfig
	Log      LogConfig
}

type ExaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RunConfig describes a one-shot run. An empty InputPath reads the input
// from the INPUT record of the run's key-value store.
type RunConfig struct {
	StoreID   string `mapstructure:"store_id"`
	InputPath string `mapstructure:"input_path"`
}

type ServerConfig struct {
	Host      string
	Port      int
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Sinks returns the sink settings in the shape sink.Open expects.
func (c *Config) Sinks() sink.Config {
	return sink.Config{
		Storage:  c.Storage,
		Dataset:  c.Dataset,
		KeyValue: c.KeyValue,
	}
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	events := pubsub.DefaultConfig()

	// Set defaults
	v.SetDefault("exa.base_url", "https://api.exa.ai")
	v.SetDefault("exa.api_key", "")
	v.SetDefault("exa.timeout", "0s")
	v.SetDefault("run.store_id", "default")
	v.SetDefault("run.input_path", "")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.base_path", "./storage")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("dataset.driver", sink.DriverStorage)
	v.SetDefault("dataset.elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("dataset.elasticsearch.index_prefix", "people-search")
	v.SetDefault("key_value.driver", sink.DriverStorage)
	v.SetDefault("key_value.redis.address", "localhost:6379")
	v.SetDefault("key_value.redis.db", 0)
	v.SetDefault("key_value.redis.prefix", "people-search")
	v.SetDefault("key_value.redis.ttl", "0s")
	v.SetDefault("key_value.database.driver", "sqlite")
	v.SetDefault("key_value.database.file_path", "./storage/key_value.db")
	v.SetDefault("key_value.database.sslmode", "disable")
	v.SetDefault("key_value.database.max_idle_conns", 5)
	v.SetDefault("key_value.database.max_open_conns", 10)
	v.SetDefault("key_value.database.conn_max_lifetime", 30)
	v.SetDefault("events.driver", events.Driver)
	v.SetDefault("events.channel", events.Channel)
	v.SetDefault("events.redis.address", events.Redis.Address)
	v.SetDefault("events.redis.pool_size", events.Redis.PoolSize)
	v.SetDefault("events.redis.read_timeout", events.Redis.ReadTimeout)
	v.SetDefault("events.redis.write_timeout", events.Redis.WriteTimeout)
	v.SetDefault("events.kafka.brokers", "localhost:9092")
	v.SetDefault("events.kafka.partitions", 1)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_issuer", "exa-people-search")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("exa.base_url", "EXA_BASE_URL")
	v.BindEnv("exa.api_key", "EXA_API_KEY")
	v.BindEnv("exa.timeout", "EXA_TIMEOUT")
	v.BindEnv("run.store_id", "STORE_ID")
	v.BindEnv("run.input_path", "INPUT_PATH")
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local.base_path", "STORAGE_PATH")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.prefix", "S3_PREFIX")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.s3.use_path_style", "S3_USE_PATH_STYLE")
	v.BindEnv("dataset.driver", "DATASET_DRIVER")
	v.BindEnv("dataset.elasticsearch.addresses", "ES_ADDRESSES")
	v.BindEnv("dataset.elasticsearch.username", "ES_USERNAME")
	v.BindEnv("dataset.elasticsearch.password", "ES_PASSWORD")
	v.BindEnv("key_value.driver", "KEY_VALUE_DRIVER")
	v.BindEnv("key_value.redis.address", "REDIS_ADDRESS")
	v.BindEnv("key_value.redis.password", "REDIS_PASSWORD")
	v.BindEnv("key_value.database.driver", "DB_DRIVER")
	v.BindEnv("key_value.database.host", "DB_HOST")
	v.BindEnv("key_value.database.port", "DB_PORT")
	v.BindEnv("key_value.database.user", "DB_USER")
	v.BindEnv("key_value.database.password", "DB_PASSWORD")
	v.BindEnv("key_value.database.dbname", "DB_NAME")
	v.BindEnv("key_value.database.file_path", "DB_FILE_PATH")
	v.BindEnv("events.driver", "EVENTS_DRIVER")
	v.BindEnv("events.redis.address", "REDIS_ADDRESS")
	v.BindEnv("events.redis.password", "REDIS_PASSWORD")
	v.BindEnv("events.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.jwt_secret", "JWT_SECRET")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
