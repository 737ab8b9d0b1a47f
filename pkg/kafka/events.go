package kafka

import (
	"context"
	"time"
)

// CorpusRebuilt announces that a new corpus artifact has been stored.
type CorpusRebuilt struct {
	Artifact string    `json:"artifact"`
	Version  string    `json:"version"`
	Docs     int       `json:"docs"`
	Terms    int       `json:"terms"`
	BuiltAt  time.Time `json:"built_at"`
}

// PublishCorpusRebuilt publishes ev keyed by artifact name, so events for one
// artifact stay ordered.
func (p *Producer) PublishCorpusRebuilt(ctx context.Context, ev CorpusRebuilt) error {
	return p.Publish(ctx, Event{Key: ev.Artifact, Value: ev})
}

// CorpusRebuiltHandler adapts fn into a MessageHandler.
func CorpusRebuiltHandler(fn func(ctx context.Context, ev CorpusRebuilt) error) MessageHandler {
	return func(ctx context.Context, _ []byte, value []byte) error {
		ev, err := DecodeJSON[CorpusRebuilt](value)
		if err != nil {
			return err
		}
		return fn(ctx, ev)
	}
}
