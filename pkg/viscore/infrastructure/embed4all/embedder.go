package embed4all

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

const (
	// ConfigKeyScriptPath path to the Python helper which prints the embedding of its argument
	ConfigKeyScriptPath = "embedScriptPath"
)

const defaultScriptPath = "embed.py"

// Embedder bridges to a pretrained sentence-transformers model through a Python helper script.
// The helper's availability is checked once, lazily, on first use; the check result is shared by all
// subsequent calls, so a missing model fails every embedding with the same model error.
// TODO use something more robust and controllable, without a dependency on Python 3
type Embedder struct {
	scriptPath string
	logger     common.Logger
	checkOnce  sync.Once
	checkErr   error
}

func NewEmbedder(config *common.Config, logger common.Logger) *Embedder {
	return &Embedder{
		scriptPath: config.GetStringOrDefault(ConfigKeyScriptPath, defaultScriptPath),
		logger:     logger,
	}
}

func (e *Embedder) Embed(sentence string) (domain.Embedding, error) {
	if sentence == "" {
		return domain.Embedding{}, nil
	}
	e.checkOnce.Do(func() {
		if _, err := os.Stat(e.scriptPath); err != nil {
			e.checkErr = fmt.Errorf("%w: embedding helper \"%s\" is unavailable: %s", domain.ErrModel, e.scriptPath, err.Error())
		} else {
			e.logger.Log("embedding helper found at " + e.scriptPath)
		}
	})
	if e.checkErr != nil {
		return domain.Embedding{}, e.checkErr
	}
	cmd := exec.Command("python3", e.scriptPath, sentence)
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("%w: failed to run the embedding helper: %s", domain.ErrModel, err.Error())
	}
	result := out.String()
	const garbage = "bert_load_from_file: bert tokenizer vocab = 30522\n" // the model loader outputs garbage so we want to strip it TODO
	index := strings.Index(result, garbage)
	if index != -1 {
		result = result[index+len(garbage):]
	}
	embedding, err := domain.NewEmbeddingFromFormattedValues(result)
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("%w: unexpected embedding helper output: %s", domain.ErrModel, err.Error())
	}
	return embedding, nil
}
