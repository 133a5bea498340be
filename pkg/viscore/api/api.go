package api

import (
	"fmt"
	"sync"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
	"kgeyst.com/viscore/pkg/viscore/infrastructure/azure"
	"kgeyst.com/viscore/pkg/viscore/infrastructure/embed4all"
	"kgeyst.com/viscore/pkg/viscore/infrastructure/filesystem"
	"kgeyst.com/viscore/pkg/viscore/infrastructure/inmemory"
	"kgeyst.com/viscore/pkg/viscore/infrastructure/openai"
	"kgeyst.com/viscore/pkg/viscore/infrastructure/web"
)

// See domain/config.go
const (
	ConfigKeyAPIProvider         = domain.ConfigKeyAPIProvider
	ConfigKeySimilarityThreshold = domain.ConfigKeySimilarityThreshold
	ConfigKeyLogPath             = domain.ConfigKeyLogPath
)

// API is the entrypoint to Viscore. It shouldn't contain any logic of its own; it glues all the components
// together and provides a public interface for the test bench. This API can be used in various contexts:
// an HTTP server, console input/output etc.
type API interface {
	// AddTestCase stores the uploaded image and registers a new test case with the expected description.
	AddTestCase(fileName string, imageData []byte, expectedDescription string) (*domain.TestCase, error)
	// AddTestCaseFromURL downloads the image behind the URL and registers a new test case.
	AddTestCaseFromURL(imageURL, expectedDescription string) (*domain.TestCase, error)
	// TestCases returns the current test cases in creation order.
	TestCases() ([]*domain.TestCase, error)
	// DeleteTestCase removes the test case and its uploaded image. Fails with a not-found error for unknown ids.
	DeleteTestCase(id int) error
	// ClearTestCases removes all test cases together with their uploaded images and resets the id counter.
	ClearTestCases() error
	// RunTests runs all current test cases sequentially and returns the aggregated result.
	// `threshold` overrides the configured similarity threshold; pass a non-positive value to use the default.
	// The snapshot is persisted in the background; the result is returned synchronously.
	RunTests(threshold float64) (*domain.TestRunResult, error)
	// DescribeImage asks the vision API to describe a one-off image without registering a test case.
	DescribeImage(fileName string, imageData []byte) (string, error)
	// ImportFromPage scrapes the web page for images with alt text and registers a test case per image,
	// with the alt text as the expected description. Returns the created test cases.
	ImportFromPage(pageURL string) ([]*domain.TestCase, error)
	// Provider returns the name of the configured vision API provider.
	Provider() string
	// Threshold returns the configured similarity threshold.
	Threshold() float64
	// ResultHistory returns the names of stored run snapshots, newest first.
	ResultHistory() ([]string, error)
	// ResultByName returns a stored run snapshot. Fails with a not-found error for unknown names.
	ResultByName(name string) (*domain.TestRunResult, error)
	// UploadsFolder returns the folder uploaded images are stored in, for serving them back.
	UploadsFolder() string
	// Logger returns the logger the API writes to, so that hosts can share it.
	Logger() common.Logger
	// Stop flushes background work. Call it once when shutting down.
	Stop()
}

type api struct {
	config              *common.Config
	logger              common.Logger
	scorer              *domain.SimilarityScorer
	testCaseRepository  domain.TestCaseRepository
	runResultRepository domain.RunResultRepository
	imageStore          *filesystem.ImageStore
	urlFinder           *web.URLFinder
	pageImageExtractor  *web.PageImageExtractor
	jobQueue            *common.JobQueue
	runMutex            sync.Mutex
}

func NewAPI(config *common.Config) API {
	logger := common.NewFileLogger(config.GetStringOrDefault(ConfigKeyLogPath, "log.txt"))
	embedder := embed4all.NewEmbedder(config, logger)
	return &api{
		config:              config,
		logger:              logger,
		scorer:              domain.NewSimilarityScorer(embedder),
		testCaseRepository:  inmemory.NewTestCaseRepository(),
		runResultRepository: filesystem.NewRunResultRepository(config, logger),
		imageStore:          filesystem.NewImageStore(config, logger),
		urlFinder:           web.NewURLFinder(),
		pageImageExtractor:  web.NewPageImageExtractor(),
		jobQueue:            common.NewJobQueue(logger),
	}
}

func (a *api) AddTestCase(fileName string, imageData []byte, expectedDescription string) (*domain.TestCase, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: no image provided", domain.ErrValidation)
	}
	if expectedDescription == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	imagePath, err := a.imageStore.Save(fileName, imageData)
	if err != nil {
		return nil, err
	}
	testCase, err := a.testCaseRepository.Add(imagePath, expectedDescription)
	if err != nil {
		return nil, err
	}
	a.logger.Log(fmt.Sprintf("test case #%d added (%s)", testCase.ID, imagePath))
	return testCase, nil
}

func (a *api) AddTestCaseFromURL(imageURL, expectedDescription string) (*domain.TestCase, error) {
	if expectedDescription == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	urls := a.urlFinder.FindURLs(imageURL)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no image URL provided", domain.ErrValidation)
	}
	imagePath, err := a.imageStore.SaveFromURL(urls[0])
	if err != nil {
		return nil, err
	}
	testCase, err := a.testCaseRepository.Add(imagePath, expectedDescription)
	if err != nil {
		return nil, err
	}
	a.logger.Log(fmt.Sprintf("test case #%d added from %s", testCase.ID, urls[0]))
	return testCase, nil
}

func (a *api) TestCases() ([]*domain.TestCase, error) {
	return a.testCaseRepository.All()
}

func (a *api) DeleteTestCase(id int) error {
	testCase, err := a.testCaseRepository.FindByID(id)
	if err != nil {
		return err
	}
	a.imageStore.Remove(testCase.ImagePath)
	return a.testCaseRepository.Remove(id)
}

func (a *api) ClearTestCases() error {
	testCases, err := a.testCaseRepository.All()
	if err != nil {
		return err
	}
	for _, testCase := range testCases {
		a.imageStore.Remove(testCase.ImagePath)
	}
	return a.testCaseRepository.RemoveAll()
}

func (a *api) RunTests(threshold float64) (*domain.TestRunResult, error) {
	// Only one run can be in flight at a time: the vision API and the embedding helper are shared,
	// and interleaved runs would interleave their mutations of the same test case objects.
	a.runMutex.Lock()
	defer a.runMutex.Unlock()
	if threshold <= 0 {
		threshold = a.Threshold()
	}
	testCases, err := a.testCaseRepository.All()
	if err != nil {
		return nil, err
	}
	if len(testCases) == 0 {
		return nil, fmt.Errorf("%w: no test cases available", domain.ErrValidation)
	}
	describer, err := a.visionDescriber()
	if err != nil {
		return nil, err
	}
	runner := domain.NewTestRunner(describer, a.scorer, a.logger)
	result := runner.RunAll(testCases, threshold)
	result.ID = a.runResultRepository.NextID()
	a.jobQueue.Enqueue(func() error {
		_, err := a.runResultRepository.Store(result)
		return err
	})
	return result, nil
}

func (a *api) DescribeImage(fileName string, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("%w: no image provided", domain.ErrValidation)
	}
	describer, err := a.visionDescriber()
	if err != nil {
		return "", err
	}
	imagePath, err := a.imageStore.Save(fileName, imageData)
	if err != nil {
		return "", err
	}
	defer a.imageStore.Remove(imagePath)
	return describer.Describe(imagePath)
}

func (a *api) ImportFromPage(pageURL string) ([]*domain.TestCase, error) {
	urls := a.urlFinder.FindURLs(pageURL)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no page URL provided", domain.ErrValidation)
	}
	pageImages, err := a.pageImageExtractor.ExtractImagesFromURL(urls[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load the page: %s", domain.ErrValidation, err.Error())
	}
	var added []*domain.TestCase
	for _, pageImage := range pageImages {
		testCase, err := a.AddTestCaseFromURL(pageImage.URL, pageImage.AltText)
		if err != nil {
			// A single broken image link shouldn't fail the whole import.
			a.logger.Log("skipping " + pageImage.URL + ": " + err.Error())
			continue
		}
		added = append(added, testCase)
	}
	return added, nil
}

func (a *api) Provider() string {
	return a.config.GetStringOrDefault(ConfigKeyAPIProvider, "openai")
}

func (a *api) Threshold() float64 {
	return a.config.GetFloatOrDefault(ConfigKeySimilarityThreshold, domain.DefaultSimilarityThreshold)
}

func (a *api) ResultHistory() ([]string, error) {
	return a.runResultRepository.ListNames()
}

func (a *api) ResultByName(name string) (*domain.TestRunResult, error) {
	return a.runResultRepository.FindByName(name)
}

func (a *api) UploadsFolder() string {
	return a.imageStore.FolderPath()
}

func (a *api) Logger() common.Logger {
	return a.logger
}

func (a *api) Stop() {
	a.jobQueue.Stop()
}

// visionDescriber builds the provider client on demand, so that the service can start (and manage test
// cases) before any credentials are configured; a misconfigured provider only fails the run itself.
func (a *api) visionDescriber() (domain.ImageDescriber, error) {
	switch provider := a.Provider(); provider {
	case "azure":
		return azure.NewDescriber(a.config, a.logger)
	case "openai":
		return openai.NewDescriber(a.config, a.logger)
	default:
		return nil, fmt.Errorf("%w: unknown API provider \"%s\"", domain.ErrConfiguration, provider)
	}
}
