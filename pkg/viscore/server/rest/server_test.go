package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

type nullLogger struct{}

func (nullLogger) Log(message string) {}

// fakeViscore implements api.API in memory, following the same error contract.
type fakeViscore struct {
	testCases []*domain.TestCase
	nextID    int
	results   map[string]*domain.TestRunResult
	runResult *domain.TestRunResult
	runErr    error
}

func newFakeViscore() *fakeViscore {
	return &fakeViscore{
		nextID:  1,
		results: make(map[string]*domain.TestRunResult),
	}
}

func (f *fakeViscore) AddTestCase(fileName string, imageData []byte, expectedDescription string) (*domain.TestCase, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: no image provided", domain.ErrValidation)
	}
	if expectedDescription == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	testCase := domain.NewTestCase(f.nextID, "uploads/"+fileName, expectedDescription)
	f.testCases = append(f.testCases, testCase)
	f.nextID++
	return testCase, nil
}

func (f *fakeViscore) AddTestCaseFromURL(imageURL, expectedDescription string) (*domain.TestCase, error) {
	return f.AddTestCase("from-url.jpg", []byte("downloaded"), expectedDescription)
}

func (f *fakeViscore) TestCases() ([]*domain.TestCase, error) {
	return f.testCases, nil
}

func (f *fakeViscore) DeleteTestCase(id int) error {
	for i, testCase := range f.testCases {
		if testCase.ID == id {
			f.testCases = append(f.testCases[:i], f.testCases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: test case #%d", domain.ErrNotFound, id)
}

func (f *fakeViscore) ClearTestCases() error {
	f.testCases = nil
	f.nextID = 1
	return nil
}

func (f *fakeViscore) RunTests(threshold float64) (*domain.TestRunResult, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.runResult, nil
}

func (f *fakeViscore) DescribeImage(fileName string, imageData []byte) (string, error) {
	return "a cat on a mat", nil
}

func (f *fakeViscore) ImportFromPage(pageURL string) ([]*domain.TestCase, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("%w: no page URL provided", domain.ErrValidation)
	}
	testCase, err := f.AddTestCaseFromURL(pageURL, "imported image")
	if err != nil {
		return nil, err
	}
	return []*domain.TestCase{testCase}, nil
}

func (f *fakeViscore) Provider() string {
	return "openai"
}

func (f *fakeViscore) Threshold() float64 {
	return 0.7
}

func (f *fakeViscore) ResultHistory() ([]string, error) {
	var names []string
	for name := range f.results {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeViscore) ResultByName(name string) (*domain.TestRunResult, error) {
	result, ok := f.results[name]
	if !ok {
		return nil, fmt.Errorf("%w: result \"%s\"", domain.ErrNotFound, name)
	}
	return result, nil
}

func (f *fakeViscore) UploadsFolder() string {
	return os.TempDir()
}

func (f *fakeViscore) Logger() common.Logger {
	return nullLogger{}
}

func (f *fakeViscore) Stop() {}

func newTestServer(fake *fakeViscore) *Server {
	return NewServer(fake, common.NewConfigFromMap(nil), nullLogger{})
}

func doRequest(server *Server, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)
	return recorder
}

func multipartImageRequest(t *testing.T, url, fileName, description string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image data"))
	require.NoError(t, err)
	if description != "" {
		require.NoError(t, writer.WriteField("description", description))
	}
	require.NoError(t, writer.Close())
	request := httptest.NewRequest(http.MethodPost, url, &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestServer_GetConfig(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Equal(t, "openai", response["api_provider"])
	require.InDelta(t, 0.7, response["similarity_threshold"].(float64), 1e-9)
}

func TestServer_AddAndListTestCases(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, multipartImageRequest(t, "/api/test-cases", "cat.jpg", "a cat"))
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created struct {
		TestCase struct {
			ID        int    `json:"id"`
			ImagePath string `json:"image_path"`
		} `json:"test_case"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	require.Equal(t, 1, created.TestCase.ID)
	require.Equal(t, "cat.jpg", created.TestCase.ImagePath) // only the base name is exposed

	recorder = doRequest(server, httptest.NewRequest(http.MethodGet, "/api/test-cases", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)
}

func TestServer_AddTestCaseWithoutDescription(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, multipartImageRequest(t, "/api/test-cases", "cat.jpg", ""))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Contains(t, recorder.Body.String(), "error")
}

func TestServer_AddTestCaseWithoutImage(t *testing.T) {
	server := newTestServer(newFakeViscore())
	request := httptest.NewRequest(http.MethodPost, "/api/test-cases", strings.NewReader(""))
	request.Header.Set("Content-Type", "multipart/form-data")
	recorder := doRequest(server, request)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestServer_AddTestCaseFromURL(t *testing.T) {
	server := newTestServer(newFakeViscore())
	body := strings.NewReader(`{"image_url": "https://example.org/cat.jpg", "description": "a cat"}`)
	request := httptest.NewRequest(http.MethodPost, "/api/test-cases", body)
	request.Header.Set("Content-Type", "application/json")
	recorder := doRequest(server, request)
	require.Equal(t, http.StatusCreated, recorder.Code)
}

func TestServer_DeleteUnknownTestCase(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, httptest.NewRequest(http.MethodDelete, "/api/test-cases/42", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestServer_DeleteTestCaseWithBadID(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, httptest.NewRequest(http.MethodDelete, "/api/test-cases/oops", nil))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestServer_RunTests(t *testing.T) {
	fake := newFakeViscore()
	testCase := domain.NewTestCase(1, "uploads/cat.jpg", "a cat")
	testCase.Passed = true
	testCase.SimilarityScore = 0.93
	fake.runResult = domain.NewTestRunResult([]*domain.TestCase{testCase})
	server := newTestServer(fake)
	recorder := doRequest(server, httptest.NewRequest(http.MethodPost, "/api/run-tests", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var result domain.TestRunResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, 1, result.TotalTests)
	require.Equal(t, 1, result.Passed)
	require.InDelta(t, 100.0, result.SuccessRate, 1e-9)
}

func TestServer_RunTestsWithoutTestCases(t *testing.T) {
	fake := newFakeViscore()
	fake.runErr = fmt.Errorf("%w: no test cases available", domain.ErrValidation)
	server := newTestServer(fake)
	recorder := doRequest(server, httptest.NewRequest(http.MethodPost, "/api/run-tests", nil))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestServer_RunTestsWithMisconfiguredProvider(t *testing.T) {
	fake := newFakeViscore()
	fake.runErr = fmt.Errorf("%w: OpenAI API key is not configured", domain.ErrConfiguration)
	server := newTestServer(fake)
	recorder := doRequest(server, httptest.NewRequest(http.MethodPost, "/api/run-tests", nil))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestServer_TestSingleImage(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, multipartImageRequest(t, "/api/test-single", "cat.jpg", ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "a cat on a mat")
}

func TestServer_ResultHistoryEmpty(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, httptest.NewRequest(http.MethodGet, "/api/results/history", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"results": []}`, recorder.Body.String())
}

func TestServer_ResultByUnknownName(t *testing.T) {
	server := newTestServer(newFakeViscore())
	recorder := doRequest(server, httptest.NewRequest(http.MethodGet, "/api/results/results_20990101_000000.json", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestServer_ImportWithMalformedBody(t *testing.T) {
	server := newTestServer(newFakeViscore())
	request := httptest.NewRequest(http.MethodPost, "/api/test-cases/import", strings.NewReader("{"))
	request.Header.Set("Content-Type", "application/json")
	recorder := doRequest(server, request)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
