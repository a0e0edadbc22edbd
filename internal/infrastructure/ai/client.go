package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/competitive-edge/backend/internal/domain"
)

// Client wraps the Gemini SDK and implements both the Extractor and Embedder
// contracts.
type Client struct {
	client          *genai.Client
	extractionModel *genai.GenerativeModel
	embeddingModel  *genai.EmbeddingModel
}

// NewClient creates a Gemini-backed AI client. Model names default to
// gemini-1.5-flash for extraction and text-embedding-004 for embeddings.
func NewClient(ctx context.Context, apiKey, extractionModel, embeddingModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("AI API key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if extractionModel == "" {
		extractionModel = "gemini-1.5-flash"
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}

	model := client.GenerativeModel(extractionModel)
	model.ResponseMIMEType = "application/json"

	return &Client{
		client:          client,
		extractionModel: model,
		embeddingModel:  client.EmbeddingModel(embeddingModel),
	}, nil
}

// Close closes the underlying client connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Embed produces a semantic embedding vector for the text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := c.embeddingModel.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingFailed)
	}
	return res.Embedding.Values, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.extractionModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}
	return fullText, nil
}
