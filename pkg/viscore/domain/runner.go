package domain

import (
	"fmt"
	"os"
	"time"

	"kgeyst.com/viscore/pkg/common"
)

// TestRunner executes test cases one by one, in the order supplied: asks the vision API to describe the image,
// scores the actual description against the expected one and marks the case passed/failed against the threshold.
// A describe or score failure doesn't abort the batch: the failing case is recorded as failed (with the error
// text in place of the actual description) and the runner moves on to the next case.
type TestRunner struct {
	describer ImageDescriber
	scorer    *SimilarityScorer
	logger    common.Logger
}

func NewTestRunner(describer ImageDescriber, scorer *SimilarityScorer, logger common.Logger) *TestRunner {
	return &TestRunner{
		describer: describer,
		scorer:    scorer,
		logger:    logger,
	}
}

// RunCase executes a single test case in place and returns it. Never returns an error:
// failures are recorded in the test case itself.
func (t *TestRunner) RunCase(testCase *TestCase, threshold float64) *TestCase {
	t.logger.Log(fmt.Sprintf("running test case #%d: %s", testCase.ID, testCase.ImagePath))
	if _, err := os.Stat(testCase.ImagePath); err != nil {
		return t.recordFailure(testCase, fmt.Errorf("image file not found: %s", testCase.ImagePath))
	}
	actualDescription, err := t.describer.Describe(testCase.ImagePath)
	if err != nil {
		return t.recordFailure(testCase, err)
	}
	testCase.ActualDescription = actualDescription
	score, err := t.scorer.Score(testCase.ExpectedDescription, actualDescription)
	if err != nil {
		return t.recordFailure(testCase, err)
	}
	testCase.SimilarityScore = score
	testCase.Passed = score >= threshold
	testCase.Timestamp = time.Now().Format(time.RFC3339)
	status := "FAILED"
	if testCase.Passed {
		status = "PASSED"
	}
	t.logger.Log(fmt.Sprintf("test case #%d %s (score %.4f, threshold %.2f)", testCase.ID, status, score, threshold))
	return testCase
}

// RunAll executes the test cases sequentially and aggregates them into a run result.
// The returned result always contains exactly as many entries as there were input cases.
func (t *TestRunner) RunAll(testCases []*TestCase, threshold float64) *TestRunResult {
	t.logger.Log(fmt.Sprintf("starting a test run of %d test case(s), threshold %.2f", len(testCases), threshold))
	results := make([]*TestCase, 0, len(testCases))
	for _, testCase := range testCases {
		results = append(results, t.RunCase(testCase, threshold))
	}
	result := NewTestRunResult(results)
	t.logger.Log(fmt.Sprintf("test run completed: %d/%d passed (%.2f%%)", result.Passed, result.TotalTests, result.SuccessRate))
	return result
}

func (t *TestRunner) recordFailure(testCase *TestCase, err error) *TestCase {
	t.logger.Log(fmt.Sprintf("test case #%d failed: %s", testCase.ID, err.Error()))
	testCase.ActualDescription = "Error: " + err.Error()
	testCase.SimilarityScore = 0.0
	testCase.Passed = false
	testCase.Timestamp = time.Now().Format(time.RFC3339)
	return testCase
}
