package domain

// ImageDescriber produces a natural-language description of the image stored at the given file path
// by delegating to an external vision API.
type ImageDescriber interface {
	// Name returns the name of the backing provider, e.g. "openai" or "azure".
	Name() string
	// Describe returns an English description of the image at `imagePath`.
	// Fails with ErrProvider when the API responds with a non-success status or the network call fails.
	Describe(imagePath string) (string, error)
}
