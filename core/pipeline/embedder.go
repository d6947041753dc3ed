package pipeline

import (
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/eventrag/helper"
)

const (
	// DefaultModelName is the sentence transformer used for events and queries
	DefaultModelName = "sentence-transformers/all-MiniLM-L6-v2"
	// DefaultEmbeddingDim is the output dimension of DefaultModelName
	DefaultEmbeddingDim = 384
)

// HugotEmbedder generates sentence embeddings with a local ONNX model
type HugotEmbedder struct {
	session *hugot.Session
	run     func(texts []string) ([][]float32, error)
}

// NewHugotEmbedder prepares the model (download if needed) and creates
// a feature extraction pipeline on the pure Go backend.
func NewHugotEmbedder(modelName string) (*HugotEmbedder, error) {
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "event-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return &HugotEmbedder{
		session: session,
		run: func(texts []string) ([][]float32, error) {
			result, err := sentencePipeline.RunPipeline(texts)
			if err != nil {
				return nil, err
			}
			return result.Embeddings, nil
		},
	}, nil
}

// DefaultEmbedder creates an embedder for all-MiniLM-L6-v2 (384 dimensions)
func DefaultEmbedder() (*HugotEmbedder, error) {
	return NewHugotEmbedder(DefaultModelName)
}

// Embed generates the embedding for a single text
func (e *HugotEmbedder) Embed(text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts in input order
func (e *HugotEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := e.run(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	return embeddings, nil
}

// Close releases the hugot session
func (e *HugotEmbedder) Close() error {
	if e.session == nil {
		return nil
	}
	return e.session.Destroy()
}
