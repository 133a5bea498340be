package domain

// SimilarityScorer compares two descriptions semantically by embedding both of them and
// computing cosine similarity. The result is always in [0, 1].
type SimilarityScorer struct {
	embedder Embedder
}

func NewSimilarityScorer(embedder Embedder) *SimilarityScorer {
	return &SimilarityScorer{
		embedder: embedder,
	}
}

// Score returns a semantic similarity score of the two texts in [0, 1]: 1.0 means identical in meaning,
// 0.0 means completely unrelated. The raw cosine value is clamped so that the caller never sees
// out-of-range values even if the embedding model emits them.
func (s *SimilarityScorer) Score(expected, actual string) (float64, error) {
	expectedEmbedding, err := s.embedder.Embed(expected)
	if err != nil {
		return 0.0, err
	}
	actualEmbedding, err := s.embedder.Embed(actual)
	if err != nil {
		return 0.0, err
	}
	similarity := expectedEmbedding.GetSimilarityTo(actualEmbedding)
	if similarity < 0.0 {
		similarity = 0.0
	}
	if similarity > 1.0 {
		similarity = 1.0
	}
	return similarity, nil
}
