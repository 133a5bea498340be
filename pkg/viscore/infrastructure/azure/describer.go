package azure

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

const (
	// ConfigKeyEndpoint the Azure Computer Vision resource endpoint; falls back to AZURE_VISION_ENDPOINT
	ConfigKeyEndpoint = "azureVisionEndpoint"
	// ConfigKeyAPIKey the Azure Computer Vision key; falls back to AZURE_VISION_KEY
	ConfigKeyAPIKey = "azureVisionKey"
)

type analyzeResponse struct {
	Description struct {
		Captions []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"captions"`
	} `json:"description"`
}

// Describer asks Azure Computer Vision (the v3.2 analyze endpoint) to caption an image.
type Describer struct {
	client     *resty.Client
	analyzeURL string
	logger     common.Logger
}

func NewDescriber(config *common.Config, logger common.Logger) (*Describer, error) {
	endpoint := config.GetStringOrEnv(ConfigKeyEndpoint, "AZURE_VISION_ENDPOINT")
	apiKey := config.GetStringOrEnv(ConfigKeyAPIKey, "AZURE_VISION_KEY")
	if endpoint == "" || apiKey == "" || strings.HasPrefix(apiKey, "your-") {
		return nil, fmt.Errorf("%w: Azure credentials are not configured", domain.ErrConfiguration)
	}
	client := resty.New().
		SetHeader("Ocp-Apim-Subscription-Key", apiKey).
		SetHeader("Content-Type", "application/octet-stream")
	return &Describer{
		client:     client,
		analyzeURL: strings.TrimSuffix(endpoint, "/") + "/vision/v3.2/analyze",
		logger:     logger,
	}, nil
}

func (d *Describer) Name() string {
	return "azure"
}

func (d *Describer) Describe(imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read image %s: %s", domain.ErrProvider, imagePath, err.Error())
	}
	var response analyzeResponse
	d.logger.Log("azure: describing image " + imagePath)
	res, err := d.client.R().
		SetQueryParams(map[string]string{
			"visualFeatures": "Description,Tags",
			"language":       "en",
		}).
		SetBody(imageData).
		SetResult(&response).
		Post(d.analyzeURL)
	if err != nil {
		return "", fmt.Errorf("%w: azure request failed: %s", domain.ErrProvider, err.Error())
	}
	if res.IsError() {
		return "", fmt.Errorf("%w: azure API error: %d - %s", domain.ErrProvider, res.StatusCode(), res.String())
	}
	return bestCaption(&response)
}

// bestCaption picks the highest-confidence caption from the analyze response.
func bestCaption(response *analyzeResponse) (string, error) {
	captions := response.Description.Captions
	if len(captions) == 0 {
		return "", fmt.Errorf("%w: azure returned no captions", domain.ErrProvider)
	}
	best := captions[0]
	for _, caption := range captions[1:] {
		if caption.Confidence > best.Confidence {
			best = caption
		}
	}
	return best.Text, nil
}
