package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siherrmann/eventrag/core/pipeline"
	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
)

// EventStore is the write side of the event index
type EventStore interface {
	SelectEventHashes(ctx context.Context, eventIDs []string) (map[string]string, error)
	UpsertEvents(ctx context.Context, events []*model.Event) error
	CountEvents(ctx context.Context) (int, error)
}

// Stats summarises one ingestion run
type Stats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Ingester writes prepared events to the index in batches.
// Events whose document hash is unchanged are skipped, new and changed
// events are embedded and upserted.
type Ingester struct {
	store     EventStore
	embed     pipeline.BatchEmbedFunc
	batchSize int
	logger    *slog.Logger
}

// NewIngester creates a new ingester
func NewIngester(store EventStore, embed pipeline.BatchEmbedFunc, batchSize int, logger *slog.Logger) (*Ingester, error) {
	if store == nil {
		return nil, helper.NewError("ingester validation", fmt.Errorf("event store is nil"))
	}
	if embed == nil {
		return nil, helper.NewError("ingester validation", fmt.Errorf("embed function is nil"))
	}
	if batchSize <= 0 {
		return nil, helper.NewError("ingester validation", fmt.Errorf("batch size must be positive, got %d", batchSize))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Ingester{
		store:     store,
		embed:     embed,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Ingest builds documents and hashes for the events and writes every batch.
// It stops at the first failing batch, batches written before stay indexed.
func (i *Ingester) Ingest(ctx context.Context, events []*model.Event) (*Stats, error) {
	Prepare(events)

	stats := &Stats{}
	batches := (len(events) + i.batchSize - 1) / i.batchSize
	for b := 0; b < batches; b++ {
		start := b * i.batchSize
		end := min(start+i.batchSize, len(events))
		batch := events[start:end]

		i.logger.Info("Processing batch", "batch", b+1, "batches", batches, "events", len(batch))

		added, updated, err := i.ingestBatch(ctx, batch)
		if err != nil {
			return stats, helper.NewError(fmt.Sprintf("ingest batch %d", b+1), err)
		}
		stats.Added += added
		stats.Updated += updated
		stats.Skipped += len(batch) - added - updated
	}

	total, err := i.store.CountEvents(ctx)
	if err != nil {
		return stats, helper.NewError("count events", err)
	}
	stats.Total = total

	i.logger.Info(
		"Finished ingestion",
		"added", stats.Added,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"total", stats.Total,
	)

	return stats, nil
}

func (i *Ingester) ingestBatch(ctx context.Context, batch []*model.Event) (added int, updated int, err error) {
	ids := make([]string, len(batch))
	for j, event := range batch {
		ids[j] = event.EventID
	}

	stored, err := i.store.SelectEventHashes(ctx, ids)
	if err != nil {
		return 0, 0, helper.NewError("select hashes", err)
	}

	var changed []*model.Event
	for _, event := range batch {
		hash, ok := stored[event.EventID]
		switch {
		case !ok:
			added++
		case hash != event.Hash:
			updated++
		default:
			continue
		}
		changed = append(changed, event)
	}
	if len(changed) == 0 {
		i.logger.Debug("Skipped unchanged batch", "events", len(batch))
		return 0, 0, nil
	}

	texts := make([]string, len(changed))
	for j, event := range changed {
		texts[j] = event.Document
	}
	embeddings, err := i.embed(texts)
	if err != nil {
		return 0, 0, helper.NewError("embed documents", err)
	}
	if len(embeddings) != len(changed) {
		return 0, 0, helper.NewError("embed documents", fmt.Errorf("expected %d embeddings, got %d", len(changed), len(embeddings)))
	}
	for j, event := range changed {
		event.Embedding = embeddings[j]
	}

	err = i.store.UpsertEvents(ctx, changed)
	if err != nil {
		return 0, 0, helper.NewError("upsert events", err)
	}

	return added, updated, nil
}
