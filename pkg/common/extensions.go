package common

import (
	"path/filepath"
	"strings"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// IsImageFormat returns true if the path (or URL) ends with a supported image extension.
func IsImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return IsStringInSlice(ext, imageExtensions)
}
