package eventrag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/eventrag/core/ingest"
	"github.com/siherrmann/eventrag/core/intent"
	"github.com/siherrmann/eventrag/core/llm"
	"github.com/siherrmann/eventrag/core/pipeline"
	"github.com/siherrmann/eventrag/core/prompt"
	"github.com/siherrmann/eventrag/core/retrieval"
	"github.com/siherrmann/eventrag/database"
	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
	loadSql "github.com/siherrmann/eventrag/sql"
)

// ErrEmptyQuestion is returned for questions without any text
var ErrEmptyQuestion = errors.New("question is empty")

// EmptyQuestionReply is the chat reply to an empty message
const EmptyQuestionReply = "Please enter a question."

// EventIndex is the event index as seen by retrieval and ingestion
type EventIndex interface {
	retrieval.VectorIndex
	ingest.EventStore
}

// EventRAG answers questions about security events from the event index
type EventRAG struct {
	DB       *helper.Database
	Events   *database.EventsDBHandler
	Embedder *pipeline.HugotEmbedder // Optional, set by UseDefaultEmbedder
	Engine   *retrieval.Engine       // Set once an embedder is configured
	Config   model.QueryConfig
	// VectorOnly disables intent extraction and post-filtering
	VectorOnly bool
	// Metrics
	Registry *prometheus.Registry
	Metrics  *retrieval.Metrics

	index      EventIndex
	embed      pipeline.EmbedFunc
	batchEmbed pipeline.BatchEmbedFunc
	answer     llm.AnswerFunc
	extractor  *intent.Extractor
	now        func() time.Time
	// Logging
	log *slog.Logger
}

// NewEventRAG connects to the database, loads the event SQL functions and
// creates the events table. An embedder and an answerer must be set before
// questions can be answered.
func NewEventRAG(config *helper.DatabaseConfiguration, embeddingDim int) (*EventRAG, error) {
	logger := helper.NewLogger(os.Stdout, slog.LevelInfo)

	db, err := helper.NewDatabase("eventrag", config, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	events, err := database.NewEventsDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create events handler", err)
	}

	r := NewEventRAGWithIndex(events, logger)
	r.DB = db
	r.Events = events

	return r, nil
}

// NewEventRAGWithIndex creates an EventRAG on top of an existing event index
func NewEventRAGWithIndex(index EventIndex, logger *slog.Logger) *EventRAG {
	if logger == nil {
		logger = helper.NewLogger(os.Stdout, slog.LevelInfo)
	}

	registry := prometheus.NewRegistry()

	return &EventRAG{
		Config:   model.DefaultQueryConfig(),
		Registry: registry,
		Metrics:  retrieval.NewMetrics(registry),
		index:    index,
		now:      time.Now,
		log:      logger,
	}
}

// Close releases the embedding model and the database connection
func (r *EventRAG) Close() error {
	var errs []error
	if r.Embedder != nil {
		errs = append(errs, r.Embedder.Close())
	}
	if r.DB != nil && r.DB.Instance != nil {
		errs = append(errs, r.DB.Instance.Close())
	}
	return errors.Join(errs...)
}

// SetEmbedder sets the query embedder and rebuilds the retrieval engine.
// Ingestion embeds documents one at a time with it.
func (r *EventRAG) SetEmbedder(embed pipeline.EmbedFunc) {
	r.embed = embed
	r.batchEmbed = pipeline.Batched(embed)
	r.buildEngine()
}

// SetRules replaces the built-in intent rules used to derive filters from questions
func (r *EventRAG) SetRules(rules intent.Rules) {
	r.extractor = intent.NewExtractor(rules)
	if r.embed != nil {
		r.buildEngine()
	}
}

// LoadRules reads intent rules from a YAML file and uses them for retrieval
func (r *EventRAG) LoadRules(path string) error {
	rules, err := intent.LoadRules(path)
	if err != nil {
		return helper.NewError("load intent rules", err)
	}

	r.SetRules(rules)
	r.log.Info("Loaded intent rules", slog.String("path", path))
	return nil
}

func (r *EventRAG) buildEngine() {
	opts := []retrieval.EngineOption{
		retrieval.WithLogger(r.log),
		retrieval.WithMetrics(r.Metrics),
		retrieval.WithClock(func() time.Time { return r.now() }),
	}
	if r.extractor != nil {
		opts = append(opts, retrieval.WithExtractor(r.extractor))
	}
	r.Engine = retrieval.NewEngine(r.embed, r.index, opts...)
}

// UseDefaultEmbedder loads the all-MiniLM-L6-v2 model (384 dimensions)
// and uses it for queries and batched ingestion
func (r *EventRAG) UseDefaultEmbedder() error {
	return r.UseEmbedderModel(pipeline.DefaultModelName)
}

// UseEmbedderModel loads a sentence transformer from Hugging Face and uses it
// for queries and batched ingestion. Its output dimension has to match the index.
func (r *EventRAG) UseEmbedderModel(modelName string) error {
	embedder, err := pipeline.NewHugotEmbedder(modelName)
	if err != nil {
		return helper.NewError("create embedder", err)
	}
	if r.Embedder != nil {
		_ = r.Embedder.Close()
	}

	r.Embedder = embedder
	r.SetEmbedder(embedder.Embed)
	r.batchEmbed = embedder.EmbedBatch
	return nil
}

// SetAnswerer sets the answer generator
func (r *EventRAG) SetAnswerer(answer llm.AnswerFunc) {
	r.answer = answer
}

// UseOpenAIAnswerer answers with the chat completions endpoint of the configuration
func (r *EventRAG) UseOpenAIAnswerer(config *helper.LLMConfiguration) error {
	answer, err := llm.NewOpenAIAnswerer(config)
	if err != nil {
		return helper.NewError("create answerer", err)
	}

	r.answer = answer
	return nil
}

func (r *EventRAG) strategy() retrieval.Strategy {
	if r.VectorOnly {
		return retrieval.NewVectorOnlyStrategy(r.Engine)
	}
	return retrieval.NewHybridStrategy(r.Engine)
}

// Answer retrieves the events relevant to the question and generates an answer
// grounded on them. topK overrides the configured number of events if positive.
// The sources of the answer are the ranked events in prompt order.
func (r *EventRAG) Answer(ctx context.Context, question string, history []model.Turn, topK int) (*model.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if r.Engine == nil {
		return nil, helper.NewError("answer", fmt.Errorf("embedder not set, use SetEmbedder() first"))
	}
	if r.answer == nil {
		return nil, helper.NewError("answer", fmt.Errorf("answerer not set, use SetAnswerer() first"))
	}

	cfg := r.Config
	if topK > 0 {
		cfg.TopK = topK
	}

	requestID := uuid.New().String()
	r.log.Info("Answering question", slog.String("request_id", requestID), slog.Int("history_turns", len(history)))

	result, err := r.strategy().Retrieve(ctx, question, history, cfg)
	if err != nil {
		return nil, helper.NewError("retrieve events", err)
	}

	r.log.Info(
		"Retrieved events",
		slog.String("request_id", requestID),
		slog.String("where", result.Where.String()),
		slog.Int("pool_size", result.PoolSize),
		slog.Int("sources", len(result.Candidates)),
	)

	userPrompt := prompt.BuildContext(result.Candidates, history, question, r.now(), cfg.HistoryTurns)
	text, err := r.answer(ctx, prompt.SystemInstruction, userPrompt)
	if err != nil {
		return nil, helper.NewError("generate answer", err)
	}

	return &model.Answer{
		Text:    text,
		Sources: result.Sources(),
	}, nil
}

// Respond is the chat front end contract. It never fails: errors are logged
// and rendered as a reply, sources are appended as a markdown table.
func (r *EventRAG) Respond(ctx context.Context, message string, history []model.Turn) string {
	if strings.TrimSpace(message) == "" {
		return EmptyQuestionReply
	}

	answer, err := r.Answer(ctx, message, history, r.Config.TopK)
	if err != nil {
		r.log.Error("Error handling chat request", slog.String("error", err.Error()))
		return fmt.Sprintf("Error: %v\n\nPlease try again or contact support.", err)
	}

	if len(answer.Sources) == 0 {
		return answer.Text
	}
	return fmt.Sprintf("%s\n\n---\n\n%s", answer.Text, prompt.FormatSources(answer.Sources))
}

// Ingest writes the events to the index, skipping events whose document is unchanged
func (r *EventRAG) Ingest(ctx context.Context, events []*model.Event, batchSize int) (*ingest.Stats, error) {
	if r.batchEmbed == nil {
		return nil, helper.NewError("ingest", fmt.Errorf("embedder not set, use SetEmbedder() first"))
	}

	ingester, err := ingest.NewIngester(r.index, r.batchEmbed, batchSize, r.log)
	if err != nil {
		return nil, helper.NewError("create ingester", err)
	}

	return ingester.Ingest(ctx, events)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (r *EventRAG) ChangeIndexType(ctx context.Context, indexType string, params database.IndexParams) error {
	if r.Events == nil {
		return helper.NewError("change index type", fmt.Errorf("no database index configured"))
	}
	return r.Events.ChangeIndexType(ctx, indexType, params)
}
