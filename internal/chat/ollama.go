package chat

// ollama.go is a REST client for the Ollama chat endpoint (POST /api/chat)
// serving the Gemma model used for classification, planning and summaries.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTextTimeout bounds a single text-generation call. Large-model
// inference on a cold instance can take tens of seconds.
const DefaultTextTimeout = 60 * time.Second

const ollamaService = "ollama"

// OllamaClient calls an Ollama server's chat endpoint.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates a client for the Ollama server at baseURL.
// A zero timeout uses DefaultTextTimeout.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = DefaultTextTimeout
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- REST API request/response types ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64, no data: prefix
}

type ollamaChatResponse struct {
	Message *ollamaMessage `json:"message"`
	Error   string         `json:"error,omitempty"`
}

// buildOllamaRequest converts a Prompt into the Ollama wire format.
func (c *OllamaClient) buildOllamaRequest(p Prompt) ollamaChatRequest {
	req := ollamaChatRequest{
		Model:  c.model,
		Stream: false,
	}
	if p.JSON {
		req.Format = "json"
	}
	if p.System != "" {
		req.Messages = append(req.Messages, ollamaMessage{Role: "system", Content: p.System})
	}
	imageTurn := p.historyImageTurn()
	for i, m := range p.History {
		msg := ollamaMessage{Role: m.Role, Content: m.Content}
		if i == imageTurn {
			msg.Images = []string{base64.StdEncoding.EncodeToString(p.Image.Data)}
		}
		req.Messages = append(req.Messages, msg)
	}
	if p.User != "" {
		msg := ollamaMessage{Role: RoleUser, Content: p.User}
		if p.Image != nil && len(p.Image.Data) > 0 {
			msg.Images = []string{base64.StdEncoding.EncodeToString(p.Image.Data)}
		}
		req.Messages = append(req.Messages, msg)
	}
	return req
}

// Generate sends the prompt to /api/chat and returns the assistant content.
// A single attempt is made; there is no retry.
func (c *OllamaClient) Generate(ctx context.Context, p Prompt) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	startTime := time.Now()
	req := c.buildOllamaRequest(p)

	log.Debug().
		Str("model", c.model).
		Int("messages", len(req.Messages)).
		Bool("json", p.JSON).
		Bool("image", p.Image != nil).
		Msg("Sending chat request to Ollama")

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Service: ollamaService, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Service: ollamaService, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Ollama chat API returned error")
		return "", &TransportError{
			Service:    ollamaService,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncateString(string(respBody), 200)),
		}
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &MalformedResponseError{Service: ollamaService, Reason: "invalid JSON", Err: err}
	}
	if chatResp.Error != "" {
		return "", &MalformedResponseError{Service: ollamaService, Reason: chatResp.Error}
	}
	if chatResp.Message == nil {
		return "", &MalformedResponseError{Service: ollamaService, Reason: "missing message"}
	}

	log.Debug().
		Int("response_length", len(chatResp.Message.Content)).
		Dur("duration", time.Since(startTime)).
		Msg("Ollama chat response received")

	return chatResp.Message.Content, nil
}
