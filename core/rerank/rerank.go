package rerank

import (
	"math"
	"sort"

	"github.com/siherrmann/eventrag/model"
)

// Rerank scores every candidate by cosine similarity to the query embedding,
// drops candidates strictly below threshold, sorts the rest by similarity
// descending (ties keep their incoming order) and truncates to topK.
// The returned candidates carry their similarity, the input is not modified.
func Rerank(query []float32, candidates model.Candidates, threshold float64, topK int) model.Candidates {
	if topK <= 0 {
		return model.Candidates{}
	}

	scored := make(model.Candidates, 0, len(candidates))
	for _, c := range candidates {
		sim := CosineSimilarity(query, c.Embedding)
		if sim < threshold {
			continue
		}
		c.Similarity = sim
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length or with zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
