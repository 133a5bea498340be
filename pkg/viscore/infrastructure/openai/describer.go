package openai

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/domain"
)

const (
	// ConfigKeyAPIKey the OpenAI API key; falls back to the OPENAI_API_KEY environment variable
	ConfigKeyAPIKey = "openAIAPIKey"
	// ConfigKeyAPIURL the chat completions endpoint; overridable mostly for tests
	ConfigKeyAPIURL = "openAIAPIURL"
	// ConfigKeyModel the vision-capable model to use
	ConfigKeyModel = "openAIModel"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"
const defaultModel = "gpt-4o"
const describePrompt = "Describe this image in one concise sentence."

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describer asks OpenAI's GPT-4 Vision (chat completions with an image part) to describe an image.
type Describer struct {
	client *resty.Client
	apiURL string
	model  string
	logger common.Logger
}

func NewDescriber(config *common.Config, logger common.Logger) (*Describer, error) {
	apiKey := config.GetStringOrEnv(ConfigKeyAPIKey, "OPENAI_API_KEY")
	if apiKey == "" || strings.HasPrefix(apiKey, "your-") {
		return nil, fmt.Errorf("%w: OpenAI API key is not configured", domain.ErrConfiguration)
	}
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)
	return &Describer{
		client: client,
		apiURL: config.GetStringOrDefault(ConfigKeyAPIURL, defaultAPIURL),
		model:  config.GetStringOrDefault(ConfigKeyModel, defaultModel),
		logger: logger,
	}, nil
}

func (d *Describer) Name() string {
	return "openai"
}

func (d *Describer) Describe(imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read image %s: %s", domain.ErrProvider, imagePath, err.Error())
	}
	encoded := base64.StdEncoding.EncodeToString(imageData)
	request := chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{
						Type: "text",
						Text: describePrompt,
					},
					{
						Type: "image_url",
						ImageURL: &imageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", mimeTypeForPath(imagePath), encoded),
						},
					},
				},
			},
		},
		MaxTokens: 300,
	}
	var response chatResponse
	d.logger.Log("openai: describing image " + imagePath)
	res, err := d.client.R().
		SetBody(request).
		SetResult(&response).
		Post(d.apiURL)
	if err != nil {
		return "", fmt.Errorf("%w: openai request failed: %s", domain.ErrProvider, err.Error())
	}
	if res.IsError() {
		return "", fmt.Errorf("%w: openai API error: %d - %s", domain.ErrProvider, res.StatusCode(), res.String())
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrProvider)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func mimeTypeForPath(imagePath string) string {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
