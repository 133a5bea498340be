package azure

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

type nullLogger struct{}

func (nullLogger) Log(message string) {}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cat.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake image data"), 0644))
	return path
}

func newTestDescriber(t *testing.T, endpoint string) *Describer {
	t.Helper()
	config := common.NewConfigFromMap(map[string]any{
		ConfigKeyEndpoint: endpoint,
		ConfigKeyAPIKey:   "azure-test-key",
	})
	describer, err := NewDescriber(config, nullLogger{})
	require.NoError(t, err)
	return describer
}

func TestDescriber_MissingCredentials(t *testing.T) {
	t.Setenv("AZURE_VISION_ENDPOINT", "")
	t.Setenv("AZURE_VISION_KEY", "")
	_, err := NewDescriber(common.NewConfigFromMap(nil), nullLogger{})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDescriber_PicksHighestConfidenceCaption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vision/v3.2/analyze", r.URL.Path)
		require.Equal(t, "azure-test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		require.Equal(t, "Description,Tags", r.URL.Query().Get("visualFeatures"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"description": {
				"captions": [
					{"text": "a blurry photo", "confidence": 0.41},
					{"text": "a cat on a sofa", "confidence": 0.87},
					{"text": "an animal indoors", "confidence": 0.55}
				]
			}
		}`))
	}))
	defer server.Close()
	describer := newTestDescriber(t, server.URL)
	description, err := describer.Describe(writeTestImage(t))
	require.NoError(t, err)
	require.Equal(t, "a cat on a sofa", description)
}

func TestDescriber_NoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"description": {"captions": []}}`))
	}))
	defer server.Close()
	describer := newTestDescriber(t, server.URL)
	_, err := describer.Describe(writeTestImage(t))
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestDescriber_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": "401", "message": "bad key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()
	describer := newTestDescriber(t, server.URL)
	_, err := describer.Describe(writeTestImage(t))
	require.ErrorIs(t, err, domain.ErrProvider)
}
