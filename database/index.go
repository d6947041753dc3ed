package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/eventrag/helper"
)

// Vector index types supported by ChangeIndexType
const (
	IndexTypeHNSW    = "hnsw"
	IndexTypeIVFFlat = "ivfflat"
)

// IndexParams tunes the vector index. Zero values fall back to the pgvector defaults.
type IndexParams struct {
	M              int // hnsw
	EfConstruction int // hnsw
	Lists          int // ivfflat
}

// ChangeIndexType rebuilds the events embedding index as HNSW or IVFFlat.
// IVFFlat clusters the rows present at build time, so rebuild it after large ingests.
func (h *EventsDBHandler) ChangeIndexType(ctx context.Context, indexType string, params IndexParams) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	// Drop existing index
	_, err := h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_events_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	h.db.Logger.Debug("Dropped existing vector index")

	// Create new index based on type
	var createIndexSQL string

	switch indexType {
	case IndexTypeHNSW:
		m := 16
		efConstruction := 64

		if params.M > 0 {
			m = params.M
		}
		if params.EfConstruction > 0 {
			efConstruction = params.EfConstruction
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_events_embedding ON events USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)

	case IndexTypeIVFFlat:
		lists := 100
		if params.Lists > 0 {
			lists = params.Lists
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_events_embedding ON events USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)

	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	// Create the new index
	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Created vector index", "type", indexType, "params", fmt.Sprintf("%+v", params))

	return nil
}
