package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps each known sentence to a fixed vector.
type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) Embed(sentence string) (Embedding, error) {
	values, ok := f.vectors[sentence]
	if !ok {
		return Embedding{}, fmt.Errorf("%w: unknown sentence", ErrModel)
	}
	return NewEmbedding(values), nil
}

func TestSimilarityScorer_IdenticalTexts(t *testing.T) {
	scorer := NewSimilarityScorer(&fakeEmbedder{vectors: map[string][]float64{
		"a cat on a mat": {0.3, 0.7, 0.2},
	}})
	score, err := scorer.Score("a cat on a mat", "a cat on a mat")
	require.NoError(t, err)
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestSimilarityScorer_ClampsNegativeCosine(t *testing.T) {
	scorer := NewSimilarityScorer(&fakeEmbedder{vectors: map[string][]float64{
		"up":   {0, 1},
		"down": {0, -1},
	}})
	score, err := scorer.Score("up", "down")
	require.NoError(t, err)
	require.Equal(t, 0.0, score)
}

func TestSimilarityScorer_UnrelatedTexts(t *testing.T) {
	scorer := NewSimilarityScorer(&fakeEmbedder{vectors: map[string][]float64{
		"a cat on a mat":       {1, 0},
		"a spaceship in orbit": {0, 1},
	}})
	score, err := scorer.Score("a cat on a mat", "a spaceship in orbit")
	require.NoError(t, err)
	require.Less(t, score, 0.7)
}

func TestSimilarityScorer_ModelError(t *testing.T) {
	scorer := NewSimilarityScorer(&fakeEmbedder{vectors: map[string][]float64{}})
	_, err := scorer.Score("anything", "anything")
	require.ErrorIs(t, err, ErrModel)
}
