package chat

// gemini_image.go is a REST client for Gemini image editing. It calls
// generateContent directly because the request carries inline image data and
// asks for an IMAGE response modality.

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

	"github.com/fpang/vibe-fashion/internal/imageutil"
	"github.com/rs/zerolog/log"
)

// DefaultImageTimeout bounds a single edit call. Image generation can take 10-30s.
const DefaultImageTimeout = 120 * time.Second

const geminiImageService = "gemini-image"

// GeminiImageClient edits the clothing in a photo with a Gemini image model.
type GeminiImageClient struct {
	apiKey     string
	model      string
	baseURL    string
	guardrail  string
	httpClient *http.Client
}

// GeminiImageOption configures a GeminiImageClient.
type GeminiImageOption func(*GeminiImageClient)

// WithImageModel overrides the image model.
func WithImageModel(model string) GeminiImageOption {
	return func(c *GeminiImageClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithImageBaseURL overrides the REST base URL.
func WithImageBaseURL(baseURL string) GeminiImageOption {
	return func(c *GeminiImageClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithImageTimeout overrides the per-call timeout.
func WithImageTimeout(d time.Duration) GeminiImageOption {
	return func(c *GeminiImageClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewGeminiImageClient creates a client for Gemini image editing. guardrail is
// sent as the system instruction on every call.
func NewGeminiImageClient(apiKey, guardrail string, opts ...GeminiImageOption) *GeminiImageClient {
	c := &GeminiImageClient{
		apiKey:    apiKey,
		model:     DefaultGeminiImageModel,
		baseURL:   DefaultGeminiBaseURL,
		guardrail: guardrail,
		httpClient: &http.Client{
			Timeout: DefaultImageTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has credentials.
func (c *GeminiImageClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// --- REST API request/response types ---

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inline_data,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64 encoded
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// The API answers in camelCase; snake_case is accepted too.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiResponsePart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

type geminiResponsePart struct {
	Text            string              `json:"text,omitempty"`
	InlineData      *geminiResponseBlob `json:"inlineData,omitempty"`
	InlineDataSnake *geminiResponseBlob `json:"inline_data,omitempty"`
}

type geminiResponseBlob struct {
	MIMEType      string `json:"mimeType"`
	MIMETypeSnake string `json:"mime_type"`
	Data          string `json:"data"`
}

func (p geminiResponsePart) blob() *geminiResponseBlob {
	if p.InlineData != nil {
		return p.InlineData
	}
	return p.InlineDataSnake
}

// Edit sends the source photo with an edit instruction and returns the edited
// image. The returned bytes are verified to decode as an image before they are
// accepted. Each call is independent and is never retried.
func (c *GeminiImageClient) Edit(ctx context.Context, src Image, instruction string) (*Image, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_bytes", len(src.Data)).
		Str("instruction", truncateString(instruction, 100)).
		Msg("Sending image to Gemini for outfit edit")

	req := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: instruction},
				{InlineData: &geminiBlobData{
					MIMEType: src.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(src.Data),
				}},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	if c.guardrail != "" {
		req.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: c.guardrail}},
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Service: geminiImageService, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: geminiImageService, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini image editing API returned error")
		return nil, &TransportError{
			Service:    geminiImageService,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncateString(string(respBody), 200)),
		}
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, &MalformedResponseError{Service: geminiImageService, Reason: "invalid JSON", Err: err}
	}
	if geminiResp.Error != nil {
		return nil, &MalformedResponseError{
			Service: geminiImageService,
			Reason:  fmt.Sprintf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code),
		}
	}
	if len(geminiResp.Candidates) == 0 {
		return nil, &MalformedResponseError{Service: geminiImageService, Reason: "no candidates"}
	}

	var text string
	var blobErr *MalformedResponseError
	for i, part := range geminiResp.Candidates[0].Content.Parts {
		blob := part.blob()
		if blob == nil {
			text += part.Text
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(blob.Data)
		if err != nil {
			log.Debug().Err(err).Int("part", i).Msg("Skipping inline part that is not base64")
			blobErr = &MalformedResponseError{Service: geminiImageService, Reason: "image data is not base64", Err: err}
			continue
		}
		format, err := imageutil.Validate(decoded)
		if err != nil {
			log.Debug().Err(err).Int("part", i).Str("mime_type", blob.MIMEType).Msg("Skipping inline part that is not an image")
			blobErr = &MalformedResponseError{Service: geminiImageService, Reason: "image data does not decode", Err: err}
			continue
		}

		log.Info().
			Int("output_bytes", len(decoded)).
			Str("format", format).
			Dur("duration", time.Since(startTime)).
			Msg("Gemini outfit edit complete")

		return &Image{Data: decoded, MIMEType: imageutil.MIMEType(format)}, nil
	}

	if blobErr != nil {
		return nil, blobErr
	}
	return nil, &MalformedResponseError{
		Service: geminiImageService,
		Reason:  fmt.Sprintf("no image in response (text: %s)", truncateString(text, 200)),
	}
}
