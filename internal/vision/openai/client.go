package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision"
)

const (
	defaultModel = "gpt-4o"
	maxTokens    = 2048
)

// Client implements vision.Client using OpenAI chat completions with image
// content parts.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient constructs a new OpenAI vision client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{client: openai.NewClient(apiKey), model: model}, nil
}

// AnalyzeImage sends a single image with the prompt.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return c.chat(ctx, [][]byte{image}, prompt)
}

// AnalyzeImages sends all images in one request so the model sees them
// together.
func (c *Client) AnalyzeImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	return c.chat(ctx, images, prompt)
}

func (c *Client) chat(ctx context.Context, images [][]byte, prompt string) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt,
	})
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	return content, nil
}

func dataURL(img []byte) string {
	mimeType := http.DetectContentType(img)
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img)
}

var _ vision.Client = (*Client)(nil)
