package service

import (
	"context"
	"fmt"

	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/pkg/log"
	"github.com/weiawesome/exa-people-search/pkg/pubsub"
)

// PublishOutcome publishes the result of a run: the metadata on success,
// the failure reason and kind otherwise.
func PublishOutcome(ctx context.Context, pub pubsub.Publisher, channel, runID string, metadata *domain.Metadata, runErr error) error {
	var (
		event *pubsub.Event
		err   error
	)
	if runErr != nil {
		event, err = pubsub.NewEvent(pubsub.EventRunFailed, runID, pubsub.RunFailedPayload{
			Reason: runErr.Error(),
			Kind:   domain.KindOf(runErr).String(),
		})
	} else {
		event, err = pubsub.NewEvent(pubsub.EventRunSucceeded, runID, metadata)
	}
	if err != nil {
		return fmt.Errorf("failed to build run event: %w", err)
	}

	if err := pub.Publish(ctx, channel, event); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("event", event.Type).Msg("failed to publish run outcome")
		return err
	}
	return nil
}
