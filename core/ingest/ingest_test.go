package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/siherrmann/eventrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	events    map[string]*model.Event
	upserts   int
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[string]*model.Event{}}
}

func (f *fakeStore) SelectEventHashes(ctx context.Context, eventIDs []string) (map[string]string, error) {
	hashes := map[string]string{}
	for _, id := range eventIDs {
		if e, ok := f.events[id]; ok {
			hashes[id] = e.Hash
		}
	}
	return hashes, nil
}

func (f *fakeStore) UpsertEvents(ctx context.Context, events []*model.Event) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	for _, e := range events {
		copied := *e
		f.events[e.EventID] = &copied
	}
	return nil
}

func (f *fakeStore) CountEvents(ctx context.Context) (int, error) {
	return len(f.events), nil
}

type countingEmbedder struct {
	texts []string
}

func (c *countingEmbedder) embed(texts []string) ([][]float32, error) {
	c.texts = append(c.texts, texts...)
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, float32(i)}
	}
	return embeddings, nil
}

func testEvents(n int, location string) []*model.Event {
	events := make([]*model.Event, n)
	for i := range events {
		events[i] = &model.Event{EventID: fmt.Sprintf("%d", i+1), Location: location, Severity: "low"}
	}
	return events
}

func newTestIngester(t *testing.T, store EventStore, embedder *countingEmbedder, batchSize int) *Ingester {
	ingester, err := NewIngester(store, embedder.embed, batchSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return ingester
}

func TestNewIngester(t *testing.T) {
	embed := (&countingEmbedder{}).embed

	_, err := NewIngester(nil, embed, 50, nil)
	assert.Error(t, err)

	_, err = NewIngester(newFakeStore(), nil, 50, nil)
	assert.Error(t, err)

	_, err = NewIngester(newFakeStore(), embed, 0, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch size must be positive")

	ingester, err := NewIngester(newFakeStore(), embed, 50, nil)
	assert.NoError(t, err)
	assert.NotNil(t, ingester.logger)
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	embedder := &countingEmbedder{}
	ingester := newTestIngester(t, store, embedder, 2)

	t.Run("First run adds every event in batches", func(t *testing.T) {
		stats, err := ingester.Ingest(ctx, testEvents(5, "lobby"))
		require.NoError(t, err)

		assert.Equal(t, &Stats{Added: 5, Total: 5}, stats)
		assert.Equal(t, 3, store.upserts, "Expected one upsert per batch")
		assert.Len(t, embedder.texts, 5)
		assert.Equal(t, HashText("Location: lobby\nSeverity: low"), store.events["1"].Hash)
		assert.NotEmpty(t, store.events["5"].Embedding)
	})

	t.Run("Unchanged events are skipped without embedding", func(t *testing.T) {
		embedder.texts = nil
		store.upserts = 0

		stats, err := ingester.Ingest(ctx, testEvents(5, "lobby"))
		require.NoError(t, err)

		assert.Equal(t, &Stats{Skipped: 5, Total: 5}, stats)
		assert.Equal(t, 0, store.upserts)
		assert.Empty(t, embedder.texts)
	})

	t.Run("Changed and new events are updated and added", func(t *testing.T) {
		embedder.texts = nil

		events := testEvents(6, "lobby")
		events[0].Location = "parking"
		stats, err := ingester.Ingest(ctx, events)
		require.NoError(t, err)

		assert.Equal(t, &Stats{Added: 1, Updated: 1, Skipped: 4, Total: 6}, stats)
		assert.Equal(t, []string{"Location: parking\nSeverity: low", "Location: lobby\nSeverity: low"}, embedder.texts)
		assert.Equal(t, "parking", store.events["1"].Location)
	})
}

func TestIngestErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert failure stops ingestion", func(t *testing.T) {
		store := newFakeStore()
		store.upsertErr = errors.New("disk full")
		ingester := newTestIngester(t, store, &countingEmbedder{}, 2)

		stats, err := ingester.Ingest(ctx, testEvents(3, "lobby"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ingest batch 1")
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 0, stats.Added)
	})

	t.Run("Embedding count mismatch is an error", func(t *testing.T) {
		store := newFakeStore()
		ingester, err := NewIngester(store, func(texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}, 10, nil)
		require.NoError(t, err)

		_, err = ingester.Ingest(ctx, testEvents(3, "lobby"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected 3 embeddings, got 1")
		assert.Empty(t, store.events)
	})

	t.Run("Empty input only counts", func(t *testing.T) {
		ingester := newTestIngester(t, newFakeStore(), &countingEmbedder{}, 2)
		stats, err := ingester.Ingest(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, &Stats{}, stats)
	})
}
