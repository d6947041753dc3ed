package model

// Candidate is a retrieved event: its document text, metadata record and embedding.
// Similarity is set by the re-ranker.
type Candidate struct {
	Document   string        `json:"document"`
	Metadata   EventMetadata `json:"metadata"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Similarity float64       `json:"similarity,omitempty"`
}

// Candidates is an ordered candidate list. Documents, metadata and embeddings
// travel together in one element, so every projection below is index aligned.
type Candidates []Candidate

// Documents returns the document texts in candidate order
func (c Candidates) Documents() []string {
	out := make([]string, len(c))
	for i := range c {
		out[i] = c[i].Document
	}
	return out
}

// Metadatas returns the metadata records in candidate order
func (c Candidates) Metadatas() []EventMetadata {
	out := make([]EventMetadata, len(c))
	for i := range c {
		out[i] = c[i].Metadata
	}
	return out
}

// Embeddings returns the embedding vectors in candidate order
func (c Candidates) Embeddings() [][]float32 {
	out := make([][]float32, len(c))
	for i := range c {
		out[i] = c[i].Embedding
	}
	return out
}
