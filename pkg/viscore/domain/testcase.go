package domain

// TestCase a single image test: the image on disk, the description the user expects, and -- after a run --
// the description the vision API actually produced together with the similarity verdict.
// The JSON tags define both the wire format of the REST API and the on-disk snapshot format.
type TestCase struct {
	ID                  int     `json:"id"`
	ImagePath           string  `json:"image_path"`
	ExpectedDescription string  `json:"expected_description"`
	ActualDescription   string  `json:"actual_description"`
	SimilarityScore     float64 `json:"similarity_score"`
	Passed              bool    `json:"passed"`
	Timestamp           string  `json:"timestamp"`
}

func NewTestCase(id int, imagePath, expectedDescription string) *TestCase {
	return &TestCase{
		ID:                  id,
		ImagePath:           imagePath,
		ExpectedDescription: expectedDescription,
	}
}
