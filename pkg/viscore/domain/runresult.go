package domain

import "time"

// TestRunResult an immutable snapshot of one full run over the current set of test cases.
type TestRunResult struct {
	ID          string      `json:"id"`
	TestCases   []*TestCase `json:"test_cases"`
	TotalTests  int         `json:"total_tests"`
	Passed      int         `json:"passed"`
	Failed      int         `json:"failed"`
	SuccessRate float64     `json:"success_rate"`
	Timestamp   string      `json:"timestamp"`
}

// NewTestRunResult aggregates the already executed test cases into a snapshot.
// The success rate is passed/total*100, or 0 for an empty run.
func NewTestRunResult(testCases []*TestCase) *TestRunResult {
	passedCount := 0
	for _, testCase := range testCases {
		if testCase.Passed {
			passedCount++
		}
	}
	successRate := 0.0
	if len(testCases) > 0 {
		successRate = float64(passedCount) / float64(len(testCases)) * 100.0
	}
	return &TestRunResult{
		TestCases:   testCases,
		TotalTests:  len(testCases),
		Passed:      passedCount,
		Failed:      len(testCases) - passedCount,
		SuccessRate: successRate,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
