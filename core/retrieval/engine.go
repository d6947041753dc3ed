package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/eventrag/core/intent"
	"github.com/siherrmann/eventrag/core/pipeline"
	"github.com/siherrmann/eventrag/core/postfilter"
	"github.com/siherrmann/eventrag/core/rerank"
	"github.com/siherrmann/eventrag/helper"
	"github.com/siherrmann/eventrag/model"
)

// ErrRetrievalUnavailable is returned when the embedder or the index fails
var ErrRetrievalUnavailable = errors.New("retrieval unavailable")

// VectorIndex is the similarity search contract of the event index.
// Query returns up to limit candidates nearest to embedding, restricted to
// those matching where when it is non-nil.
type VectorIndex interface {
	Query(ctx context.Context, embedding []float32, limit int, where *model.Where) (model.Candidates, error)
}

// Result is the outcome of one retrieval
type Result struct {
	Query      string
	Filters    model.FilterSet
	Where      *model.Where
	PoolSize   int
	Candidates model.Candidates // ranked, at most TopK
}

// Sources returns the metadata of the ranked candidates
func (r *Result) Sources() []model.EventMetadata {
	return r.Candidates.Metadatas()
}

// Engine runs the hybrid retrieval pipeline: intent extraction, filtered
// vector search, post-filtering and re-ranking
type Engine struct {
	embed     pipeline.EmbedFunc
	index     VectorIndex
	extractor *intent.Extractor
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the collectors the engine reports to
func WithMetrics(metrics *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithExtractor replaces the built-in intent rules
func WithExtractor(extractor *intent.Extractor) EngineOption {
	return func(e *Engine) {
		e.extractor = extractor
	}
}

// WithClock sets the time source used for recency filtering
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new retrieval engine
func NewEngine(embed pipeline.EmbedFunc, index VectorIndex, opts ...EngineOption) *Engine {
	e := &Engine{
		embed:     embed,
		index:     index,
		extractor: intent.NewExtractor(intent.DefaultRules()),
		metrics:   NewMetrics(nil),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the filters the engine would derive for a question
func (e *Engine) Extract(question string) model.FilterSet {
	return e.extractor.Extract(question)
}

// VectorRetrieve embeds the query and fetches up to limit candidates from the index
func (e *Engine) VectorRetrieve(ctx context.Context, query string, limit int, where *model.Where) ([]float32, model.Candidates, error) {
	embedding, err := e.embed(query)
	if err != nil {
		e.metrics.Errors.WithLabelValues(StageEmbed).Inc()
		return nil, nil, helper.NewError("embed query", fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err))
	}

	candidates, err := e.index.Query(ctx, embedding, limit, where)
	if err != nil {
		e.metrics.Errors.WithLabelValues(StageIndex).Inc()
		return nil, nil, helper.NewError("query index", fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err))
	}
	e.metrics.StageCandidates.WithLabelValues(StageIndex).Observe(float64(len(candidates)))

	return embedding, candidates, nil
}

// Retrieve runs the full pipeline for a question and its conversation history.
// The returned candidates are ranked by similarity and hold at most cfg.TopK events.
// A filter that removes every candidate yields an empty result, not an error.
func (e *Engine) Retrieve(ctx context.Context, question string, history []model.Turn, cfg model.QueryConfig) (*Result, error) {
	start := time.Now()
	e.metrics.Requests.Inc()
	defer func() {
		e.metrics.Duration.Observe(time.Since(start).Seconds())
	}()

	result := &Result{
		Query:   CombinedQuery(question, history, cfg.QueryTurns),
		Filters: e.extractor.Extract(question),
	}
	result.Where = intent.Compile(result.Filters)
	result.PoolSize = cfg.PoolSize(result.Filters)
	e.countFilters(result.Filters)

	e.logger.Debug(
		"Retrieving events",
		"filters", result.Filters,
		"where", result.Where.String(),
		"pool_size", result.PoolSize,
	)

	embedding, candidates, err := e.VectorRetrieve(ctx, result.Query, result.PoolSize, result.Where)
	if err != nil {
		return nil, err
	}
	retrieved := len(candidates)

	candidates = postfilter.Apply(candidates, result.Filters, e.now())
	e.metrics.StageCandidates.WithLabelValues(StagePostfilter).Observe(float64(len(candidates)))

	result.Candidates = rerank.Rerank(embedding, candidates, cfg.SimilarityThreshold, cfg.TopK)
	e.metrics.StageCandidates.WithLabelValues(StageRerank).Observe(float64(len(result.Candidates)))

	e.logger.Debug(
		"Retrieved events",
		"retrieved", retrieved,
		"post_filtered", len(candidates),
		"ranked", len(result.Candidates),
	)

	return result, nil
}

func (e *Engine) countFilters(filters model.FilterSet) {
	if filters.Severity != "" {
		e.metrics.FiltersApplied.WithLabelValues(model.FieldSeverity).Inc()
	}
	if filters.Category != "" {
		e.metrics.FiltersApplied.WithLabelValues(model.FieldCategory).Inc()
	}
	if filters.Location != "" {
		e.metrics.FiltersApplied.WithLabelValues(model.FieldLocation).Inc()
	}
	if filters.Days > 0 {
		e.metrics.FiltersApplied.WithLabelValues(model.FieldTimestamp).Inc()
	}
}

// CombinedQuery joins the last turns user utterances of the history and the
// question with single spaces, oldest first. Only the embedding sees this text,
// intent extraction always runs on the question alone.
func CombinedQuery(question string, history []model.Turn, turns int) string {
	if turns < 0 {
		turns = 0
	}
	if len(history) > turns {
		history = history[len(history)-turns:]
	}

	parts := make([]string, 0, len(history)+1)
	for _, turn := range history {
		parts = append(parts, turn.User)
	}
	parts = append(parts, question)

	return strings.Join(parts, " ")
}
