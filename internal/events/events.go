// Package events defines the messages exchanged between the indexer and the
// searcher over Kafka.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/kafka"
)

type EventType string

const (
	EventIndexComplete EventType = "index_complete"
)

// IndexComplete is published by the indexer after the canonical index and
// doc map are in place. Searchers drop cached results and reload the doc map
// when they receive it.
type IndexComplete struct {
	Type        EventType `json:"type"`
	IndexPath   string    `json:"index_path"`
	DocMapPath  string    `json:"doc_map_path"`
	Documents   int       `json:"documents"`
	UniqueTerms int       `json:"unique_terms"`
	Partials    int       `json:"partials"`
	SizeBytes   int64     `json:"size_bytes"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// PublishIndexComplete announces a finished build, keyed by index path.
func PublishIndexComplete(ctx context.Context, p Publisher, ev IndexComplete) error {
	if ev.Type == "" {
		ev.Type = EventIndexComplete
	}
	return p.Publish(ctx, ev.IndexPath, ev)
}

// IndexCompleteHandler decodes IndexComplete messages for fn. Messages of
// other types are acknowledged and ignored.
func IndexCompleteHandler(fn func(ctx context.Context, ev IndexComplete) error) kafka.MessageHandler {
	return func(ctx context.Context, _, value []byte) error {
		ev, err := kafka.DecodeJSON[IndexComplete](value)
		if err != nil {
			return fmt.Errorf("index complete event: %w", err)
		}
		if ev.Type != EventIndexComplete {
			return nil
		}
		return fn(ctx, ev)
	}
}
