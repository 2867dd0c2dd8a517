package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiTextService = "gemini-text"

// GeminiTextClient runs text generation on Gemini through the genai SDK.
type GeminiTextClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiTextClient creates a Gemini API backed text generator.
func NewGeminiTextClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiTextClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiTextModel
	}
	if timeout <= 0 {
		timeout = DefaultTextTimeout
	}
	return &GeminiTextClient{client: client, model: model, timeout: timeout}, nil
}

// buildGeminiContents maps the prompt onto genai contents and config.
// Gemini calls the assistant role "model".
func buildGeminiContents(p Prompt) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if p.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: p.System}},
		}
	}
	if p.JSON {
		config.ResponseMIMEType = "application/json"
	}

	var contents []*genai.Content
	imageTurn := p.historyImageTurn()
	for i, m := range p.History {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		var parts []*genai.Part
		if i == imageTurn {
			parts = append(parts, imagePart(p.Image))
		}
		parts = append(parts, &genai.Part{Text: m.Content})
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	if p.User != "" {
		var parts []*genai.Part
		if p.Image != nil && len(p.Image.Data) > 0 {
			parts = append(parts, imagePart(p.Image))
		}
		parts = append(parts, &genai.Part{Text: p.User})
		contents = append(contents, &genai.Content{Role: "user", Parts: parts})
	}
	return contents, config
}

func imagePart(img *Image) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}}
}

// Generate sends the prompt to Gemini and returns the concatenated text parts.
func (c *GeminiTextClient) Generate(ctx context.Context, p Prompt) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents, config := buildGeminiContents(p)
	callStart := time.Now()

	log.Debug().
		Str("model", c.model).
		Int("contents", len(contents)).
		Bool("json", p.JSON).
		Msg("Starting Gemini text generation")

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", &TransportError{Service: geminiTextService, Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &MalformedResponseError{Service: geminiTextService, Reason: "no candidates"}
	}

	text := resp.Text()
	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", time.Since(callStart)).
		Msg("Gemini text generation complete")

	return text, nil
}
