package pipeline

// EmbedFunc is a function that generates an embedding for text
type EmbedFunc func(text string) ([]float32, error)

// BatchEmbedFunc generates embeddings for several texts at once, in input order
type BatchEmbedFunc func(texts []string) ([][]float32, error)

// Batched adapts an EmbedFunc into a BatchEmbedFunc by embedding texts one by one
func Batched(embed EmbedFunc) BatchEmbedFunc {
	return func(texts []string) ([][]float32, error) {
		embeddings := make([][]float32, 0, len(texts))
		for _, text := range texts {
			embedding, err := embed(text)
			if err != nil {
				return nil, err
			}
			embeddings = append(embeddings, embedding)
		}
		return embeddings, nil
	}
}
