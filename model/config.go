package model

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// Candidate pool sizes requested from the index
	FilteredPoolSize     int `json:"filtered_pool_size"`     // used when any filter was extracted
	UnfilteredPoolFactor int `json:"unfiltered_pool_factor"` // multiplied with TopK otherwise

	// Conversation context
	QueryTurns   int `json:"query_turns"`   // recent user utterances fused into the query embedding
	HistoryTurns int `json:"history_turns"` // recent turns rendered into the prompt
}

// DefaultQueryConfig returns the default retrieval configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                 10,
		SimilarityThreshold:  0.35,
		FilteredPoolSize:     1000,
		UnfilteredPoolFactor: 2,
		QueryTurns:           3,
		HistoryTurns:         6,
	}
}

// PoolSize returns the number of candidates to request from the index
func (c QueryConfig) PoolSize(filters FilterSet) int {
	if filters.HasAny() {
		return c.FilteredPoolSize
	}
	return c.UnfilteredPoolFactor * c.TopK
}
