package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

const resultFilePrefix = "results_"
const resultFileSuffix = ".json"
const maxListedResults = 10

type runResultRepository struct {
	folderPath string
	logger     common.Logger
	mutex      sync.Mutex
}

// NewRunResultRepository persists run snapshots as timestamp-named JSON files under the results folder.
func NewRunResultRepository(config *common.Config, logger common.Logger) domain.RunResultRepository {
	folderPath := config.GetStringOrDefault(domain.ConfigKeyResultsFolder, "results")
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		logger.Log("failed to create the results folder: " + err.Error())
	}
	return &runResultRepository{
		folderPath: folderPath,
		logger:     logger,
	}
}

func (r *runResultRepository) NextID() string {
	return uuid.NewString()
}

func (r *runResultRepository) Store(result *domain.TestRunResult) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	name := r.uniqueName(time.Now())
	err = os.WriteFile(filepath.Join(r.folderPath, name), data, 0644)
	if err != nil {
		return "", err
	}
	r.logger.Log("saved run result snapshot " + name)
	return name, nil
}

func (r *runResultRepository) ListNames() ([]string, error) {
	entries, err := os.ReadDir(r.folderPath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, resultFilePrefix) || !strings.HasSuffix(name, resultFileSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names))) // most recent first, names are timestamp-ordered
	if len(names) > maxListedResults {
		names = names[:maxListedResults]
	}
	return names, nil
}

func (r *runResultRepository) FindByName(name string) (*domain.TestRunResult, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: result \"%s\"", domain.ErrNotFound, name)
	}
	data, err := os.ReadFile(filepath.Join(r.folderPath, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: result \"%s\"", domain.ErrNotFound, name)
		}
		return nil, err
	}
	var result domain.TestRunResult
	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// uniqueName appends a counter when two runs complete within the same second.
func (r *runResultRepository) uniqueName(now time.Time) string {
	base := resultFilePrefix + now.Format("20060102_150405")
	name := base + resultFileSuffix
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(r.folderPath, name)); err != nil {
			return name
		}
		name = fmt.Sprintf("%s_%d%s", base, counter, resultFileSuffix)
	}
}
