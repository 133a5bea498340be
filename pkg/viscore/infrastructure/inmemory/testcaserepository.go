package inmemory

import (
	"fmt"
	"sync"

	"kgeyst.com/viscore/pkg/viscore/domain"
)

type testCaseRepository struct {
	mutex     sync.Mutex
	testCases []*domain.TestCase
	nextID    int
}

// NewTestCaseRepository stores test cases in memory. Ids start from 1 and the counter is reset
// when everything is cleared, mirroring how users see test case numbers in the UI.
func NewTestCaseRepository() domain.TestCaseRepository {
	return &testCaseRepository{
		nextID: 1,
	}
}

func (r *testCaseRepository) Add(imagePath, expectedDescription string) (*domain.TestCase, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	testCase := domain.NewTestCase(r.nextID, imagePath, expectedDescription)
	r.testCases = append(r.testCases, testCase)
	r.nextID++
	return testCase, nil
}

func (r *testCaseRepository) All() ([]*domain.TestCase, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := make([]*domain.TestCase, len(r.testCases)) // NOTE: underlying test case objects are shared
	copy(result, r.testCases)
	return result, nil
}

func (r *testCaseRepository) FindByID(id int) (*domain.TestCase, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, testCase := range r.testCases {
		if testCase.ID == id {
			return testCase, nil
		}
	}
	return nil, fmt.Errorf("%w: test case #%d", domain.ErrNotFound, id)
}

func (r *testCaseRepository) Remove(id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for i, testCase := range r.testCases {
		if testCase.ID == id {
			r.testCases = append(r.testCases[:i], r.testCases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: test case #%d", domain.ErrNotFound, id)
}

func (r *testCaseRepository) RemoveAll() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.testCases = nil
	r.nextID = 1
	return nil
}

func (r *testCaseRepository) Count() (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.testCases), nil
}
