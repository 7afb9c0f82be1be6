package service

import (
	"context"
	"errors"
	"os"

	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/internal/sink"
)

// LoadInput reads the run input from path, or from the INPUT record of kv
// when path is empty. A missing record yields a nil input.
func LoadInput(ctx context.Context, kv sink.KeyValueStore, path string) (*domain.Input, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, domain.NewConfigurationError("failed to read input file", err)
		}
	} else {
		data, err = kv.GetValue(ctx, domain.InputKey)
		if err != nil {
			if errors.Is(err, sink.ErrNotFound) {
				return nil, nil
			}
			return nil, domain.NewPersistenceError("failed to read input record", err)
		}
	}
	return domain.ParseInput(data)
}
