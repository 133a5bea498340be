package domain

// TestCaseRepository stores the current set of test cases. Ids are small sequential integers
// assigned by the repository, starting from 1; the counter resets on RemoveAll.
type TestCaseRepository interface {
	// Add creates a new test case with the next sequential id.
	Add(imagePath, expectedDescription string) (*TestCase, error)
	// All returns the test cases in creation order.
	All() ([]*TestCase, error)
	// FindByID fails with ErrNotFound if the id is unknown.
	FindByID(id int) (*TestCase, error)
	// Remove fails with ErrNotFound if the id is unknown.
	Remove(id int) error
	RemoveAll() error
	Count() (int, error)
}

// RunResultRepository persists run snapshots. Snapshots are immutable once stored.
type RunResultRepository interface {
	// NextID returns a unique id for a new run result.
	NextID() string
	// Store persists the snapshot and returns the name it can later be fetched by.
	Store(result *TestRunResult) (string, error)
	// ListNames returns stored snapshot names, newest first. Implementations may cap the count.
	ListNames() ([]string, error)
	// FindByName fails with ErrNotFound if no snapshot has the given name.
	FindByName(name string) (*TestRunResult, error)
}
