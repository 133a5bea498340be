package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

// ImageStore keeps uploaded images under a single uploads folder. Stored names are sanitized and
// prefixed with a timestamp and a random fragment so that repeated uploads of the same file never collide.
type ImageStore struct {
	folderPath string
	logger     common.Logger
}

func NewImageStore(config *common.Config, logger common.Logger) *ImageStore {
	folderPath := config.GetStringOrDefault(domain.ConfigKeyUploadsFolder, "uploads")
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		logger.Log("failed to create the uploads folder: " + err.Error())
	}
	return &ImageStore{
		folderPath: folderPath,
		logger:     logger,
	}
}

func (s *ImageStore) FolderPath() string {
	return s.folderPath
}

// Save writes the image bytes under a unique name derived from `fileName` and returns the stored path.
func (s *ImageStore) Save(fileName string, data []byte) (string, error) {
	if !common.IsImageFormat(fileName) {
		return "", fmt.Errorf("%w: unsupported image type: %s", domain.ErrValidation, fileName)
	}
	filePath := filepath.Join(s.folderPath, s.uniqueName(fileName))
	err := os.WriteFile(filePath, data, 0644)
	if err != nil {
		return "", err
	}
	return filePath, nil
}

// SaveFromURL downloads the image behind the URL into the store and returns the stored path.
func (s *ImageStore) SaveFromURL(imageURL string) (string, error) {
	if !common.IsImageFormat(imageURL) {
		return "", fmt.Errorf("%w: the URL doesn't point to a supported image: %s", domain.ErrValidation, imageURL)
	}
	filePath := filepath.Join(s.folderPath, s.uniqueName(imageURL))
	err := common.DownloadFromURL(imageURL, filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to download %s: %s", domain.ErrValidation, imageURL, err.Error())
	}
	return filePath, nil
}

// Remove deletes the stored image. Best effort: a missing file is only logged because the test case
// referencing it is being removed anyway.
func (s *ImageStore) Remove(filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		s.logger.Log("failed to remove an uploaded image: " + err.Error())
	}
}

func (s *ImageStore) uniqueName(fileName string) string {
	base := sanitizeFileName(filepath.Base(fileName))
	return fmt.Sprintf("%s_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8], base)
}

// sanitizeFileName keeps only characters which are safe in a filename served back over HTTP.
func sanitizeFileName(fileName string) string {
	var builder strings.Builder
	for _, r := range fileName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}
