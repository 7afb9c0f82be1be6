package pubsub

import "strings"

// Default channel for people-search run outcomes.
const ChannelRuns = "people-search:runs"

// Event types published once per run.
const (
	EventRunSucceeded = "people_search.succeeded"
	EventRunFailed    = "people_search.failed"
)

// RunFailedPayload carries the host-visible failure reason of a run.
type RunFailedPayload struct {
	Reason string `json:"reason"`
	Kind   string `json:"kind,omitempty"`
}

// channelToTopic converts a Redis-style channel to a Kafka topic name.
//
//	"people-search:runs" → "people-search-runs"
func channelToTopic(channel string) string {
	return strings.ReplaceAll(channel, ":", "-")
}
