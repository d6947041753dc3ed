package retrieval

import (
	"context"
	"time"

	"github.com/siherrmann/eventrag/core/rerank"
	"github.com/siherrmann/eventrag/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, question string, history []model.Turn, cfg model.QueryConfig) (*Result, error)
}

// HybridStrategy runs the filtered pipeline of the engine
type HybridStrategy struct {
	engine *Engine
}

// NewHybridStrategy creates a new hybrid strategy
func NewHybridStrategy(engine *Engine) *HybridStrategy {
	return &HybridStrategy{engine: engine}
}

// Retrieve performs hybrid retrieval
func (s *HybridStrategy) Retrieve(ctx context.Context, question string, history []model.Turn, cfg model.QueryConfig) (*Result, error) {
	return s.engine.Retrieve(ctx, question, history, cfg)
}

// VectorOnlyStrategy skips intent extraction and post-filtering.
// Candidates are ranked by similarity alone, which is useful as a baseline
// when tuning the rule table.
type VectorOnlyStrategy struct {
	engine *Engine
}

// NewVectorOnlyStrategy creates a new vector-only strategy
func NewVectorOnlyStrategy(engine *Engine) *VectorOnlyStrategy {
	return &VectorOnlyStrategy{engine: engine}
}

// Retrieve performs vector-only retrieval
func (s *VectorOnlyStrategy) Retrieve(ctx context.Context, question string, history []model.Turn, cfg model.QueryConfig) (*Result, error) {
	start := time.Now()
	s.engine.metrics.Requests.Inc()
	defer func() {
		s.engine.metrics.Duration.Observe(time.Since(start).Seconds())
	}()

	result := &Result{
		Query:    CombinedQuery(question, history, cfg.QueryTurns),
		PoolSize: cfg.PoolSize(model.FilterSet{}),
	}

	embedding, candidates, err := s.engine.VectorRetrieve(ctx, result.Query, result.PoolSize, nil)
	if err != nil {
		return nil, err
	}

	result.Candidates = rerank.Rerank(embedding, candidates, cfg.SimilarityThreshold, cfg.TopK)
	s.engine.metrics.StageCandidates.WithLabelValues(StageRerank).Observe(float64(len(result.Candidates)))

	return result, nil
}
