package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
	loadSql "github.com/siherrmann/eventrag/sql"
)

// EventsDBHandlerFunctions defines the interface for Events database operations.
type EventsDBHandlerFunctions interface {
	UpsertEvents(ctx context.Context, events []*model.Event) error
	SelectEvent(ctx context.Context, eventID string) (*model.Event, error)
	SelectEventHashes(ctx context.Context, eventIDs []string) (map[string]string, error)
	CountEvents(ctx context.Context) (int, error)
	DeleteEvent(ctx context.Context, eventID string) error
	Query(ctx context.Context, embedding []float32, limit int, where *model.Where) (model.Candidates, error)
}

// EventsDBHandler handles event-related database operations
type EventsDBHandler struct {
	db *helper.Database
}

// NewEventsDBHandler creates a new events database handler.
// It loads the event-related SQL functions and creates the events table
// with an embedding column of the given dimension.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEventsDBHandler(db *helper.Database, embeddingDim int, force bool) (*EventsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	eventsDbHandler := &EventsDBHandler{
		db: db,
	}

	err := loadSql.LoadEventsSql(eventsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load events sql", err)
	}

	err = eventsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EventsDBHandler")

	return eventsDbHandler, nil
}

// CreateTable creates the 'events' table with its metadata and vector indexes.
// If the table already exists, it does not create it again.
func (h *EventsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_events($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init events", err)
	}

	h.db.Logger.Info("Checked/created table events")

	return nil
}

// UpsertEvents inserts or replaces the given events in one transaction.
// Every event must carry its document, hash and embedding.
func (h *EventsDBHandler) UpsertEvents(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `SELECT * FROM upsert_event($1, $2, $3, $4, $5)`)
	if err != nil {
		return helper.NewError("prepare", err)
	}
	defer stmt.Close()

	for _, event := range events {
		if len(event.Embedding) == 0 {
			return helper.NewError("upsert event", fmt.Errorf("event %s has no embedding", event.EventID))
		}

		var id int64
		var eventID string
		var createdAt time.Time
		var inserted bool
		err := stmt.QueryRowContext(
			ctx,
			event.EventID,
			event.Document,
			event.Metadata(),
			pgvector.NewVector(event.Embedding),
			event.Hash,
		).Scan(&id, &eventID, &createdAt, &event.UpdatedAt, &inserted)
		if err != nil {
			return helper.NewError("scan", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	return nil
}

// SelectEvent retrieves the stored document, metadata and embedding of one event
func (h *EventsDBHandler) SelectEvent(ctx context.Context, eventID string) (*model.Event, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_event($1)`,
		eventID,
	)

	var metadata model.EventMetadata
	var embedding pgvector.Vector
	event := &model.Event{}
	err := row.Scan(
		&event.EventID,
		&event.Document,
		&metadata,
		&embedding,
		&event.Hash,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	event.EventTypeID = metadata.EventTypeID
	event.EventName = metadata.EventName
	event.Category = metadata.Category
	event.SystemCode = metadata.SystemCode
	event.Location = metadata.Location
	event.Severity = metadata.Severity
	event.SourceDeviceID = metadata.SourceDeviceID
	if ts, ok := metadata.ParsedTimestamp(); ok {
		event.Timestamp = &ts
	}
	event.Embedding = embedding.Slice()

	return event, nil
}

// SelectEventHashes returns the stored content hash for each of the given ids
// that is already indexed. Unknown ids are absent from the result.
func (h *EventsDBHandler) SelectEventHashes(ctx context.Context, eventIDs []string) (map[string]string, error) {
	hashes := make(map[string]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return hashes, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_event_hashes($1)`,
		pq.Array(eventIDs),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, hash string
		err := rows.Scan(&eventID, &hash)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		hashes[eventID] = hash
	}

	if err = rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return hashes, nil
}

// CountEvents returns the number of indexed events
func (h *EventsDBHandler) CountEvents(ctx context.Context) (int, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_events()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return int(count), nil
}

// DeleteEvent deletes an event by its EventID
func (h *EventsDBHandler) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_event($1)`,
		eventID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// Query returns up to limit events nearest to the embedding by cosine distance.
// A non-nil where is applied as a JSONB containment filter before the limit,
// so all returned candidates satisfy every equality clause.
func (h *EventsDBHandler) Query(ctx context.Context, embedding []float32, limit int, where *model.Where) (model.Candidates, error) {
	if limit <= 0 {
		return model.Candidates{}, nil
	}

	containment, err := where.Containment()
	if err != nil {
		return nil, helper.NewError("compile filter", err)
	}

	var filter sql.NullString
	if containment != nil {
		filter = sql.NullString{String: string(containment), Valid: true}
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_events_by_similarity($1, $2, $3::jsonb)`,
		pgvector.NewVector(embedding),
		limit,
		filter,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	candidates := model.Candidates{}
	for rows.Next() {
		var eventID string
		var vector pgvector.Vector
		candidate := model.Candidate{}
		err := rows.Scan(
			&eventID,
			&candidate.Document,
			&candidate.Metadata,
			&vector,
			&candidate.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		candidate.Embedding = vector.Slice()
		candidates = append(candidates, candidate)
	}

	if err = rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	h.db.Logger.Debug("Queried events by similarity", "filter", where.String(), "limit", limit, "returned", len(candidates))

	return candidates, nil
}
