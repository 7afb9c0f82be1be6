package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Read when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// FileInfo represents metadata about a stored object.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage is the object store behind the file-based dataset and
// key-value sinks.
type Storage interface {
	// Write stores content from the reader with the given key, replacing
	// any existing object. size is -1 when unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key. The caller closes the
	// returned ReadCloser. A missing key yields ErrNotFound.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns all objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// Config selects and configures a Storage backend.
type Config struct {
	Type  string      `mapstructure:"type"` // "local" or "s3"
	Local LocalConfig `mapstructure:"local"`
	S3    S3Config    `mapstructure:"s3"`
}

// New builds the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	case "local", "":
		return NewLocalStorage(cfg.Local)
	default:
		return nil, errors.New("unsupported storage type: " + cfg.Type)
	}
}
