package domain

// A list of built-in config keys supported by the core (provider-specific keys live with their providers).

const (
	// ConfigKeyAPIProvider which vision API to use: "openai" or "azure"
	ConfigKeyAPIProvider = "apiProvider"
	// ConfigKeySimilarityThreshold the minimum similarity score for a test case to be marked as passed
	ConfigKeySimilarityThreshold = "similarityThreshold"
	// ConfigKeyLogPath file path where to save the logs
	ConfigKeyLogPath = "logPath"
	// ConfigKeyUploadsFolder directory where uploaded images are stored
	ConfigKeyUploadsFolder = "uploadsFolder"
	// ConfigKeyResultsFolder directory where run result snapshots are stored
	ConfigKeyResultsFolder = "resultsFolder"
)

const DefaultSimilarityThreshold = 0.7
