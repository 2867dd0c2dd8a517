// Package cli holds the startup wiring shared by the vibe binaries: API key
// resolution, client construction from config and the startup log line.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/vibe-fashion/internal/assets"
	"github.com/fpang/vibe-fashion/internal/auth"
	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/config"
	"github.com/fpang/vibe-fashion/internal/logging"
	"github.com/fpang/vibe-fashion/internal/metrics"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

// Clients are the model-service clients built from config.
type Clients struct {
	// Text is nil when TEXT_BACKEND=none.
	Text        stylist.TextGenerator
	TextBackend string
	Image       *chat.GeminiImageClient
	Metrics     *metrics.Emitter
}

// ResolveAPIKey returns the configured Gemini key, falling back to the
// encrypted local credentials. A missing key is not an error: image editing
// degrades to placeholders.
func ResolveAPIKey(cfg config.Config) string {
	if cfg.GeminiAPIKey != "" {
		return cfg.GeminiAPIKey
	}
	key, err := auth.GetAPIKey()
	if err != nil {
		log.Warn().Err(err).Msg("No Gemini API key; image editing disabled")
		return ""
	}
	return key
}

// NewTextGenerator builds the text-generation client selected by
// TEXT_BACKEND. It returns a nil generator for the "none" backend.
func NewTextGenerator(ctx context.Context, cfg config.Config, apiKey string) (stylist.TextGenerator, error) {
	switch cfg.TextBackend {
	case config.BackendNone:
		return nil, nil
	case config.BackendGemini:
		client, err := chat.NewGeminiTextClient(ctx, apiKey, cfg.GeminiTextModel, cfg.TextTimeout)
		if err != nil {
			return nil, fmt.Errorf("gemini text backend: %w", err)
		}
		return client, nil
	case config.BackendOllama:
		return chat.NewOllamaClient(cfg.OllamaBaseURL, cfg.GemmaModel, cfg.TextTimeout), nil
	default:
		return nil, fmt.Errorf("unknown text backend %q", cfg.TextBackend)
	}
}

// NewMetrics returns an EMF emitter on stdout when EMIT_METRICS is set.
func NewMetrics(cfg config.Config) *metrics.Emitter {
	if !cfg.EmitMetrics {
		return nil
	}
	return metrics.NewEmitter(metrics.Namespace, os.Stdout)
}

// BuildClients constructs every client the workflow needs.
func BuildClients(ctx context.Context, cfg config.Config, apiKey string) (Clients, error) {
	text, err := NewTextGenerator(ctx, cfg, apiKey)
	if err != nil {
		return Clients{}, err
	}
	image := chat.NewGeminiImageClient(apiKey, assets.EditGuardrailPrompt,
		chat.WithImageModel(cfg.GeminiImageModel),
		chat.WithImageBaseURL(cfg.GeminiBaseURL),
		chat.WithImageTimeout(cfg.ImageTimeout),
	)
	return Clients{
		Text:        text,
		TextBackend: cfg.TextBackend,
		Image:       image,
		Metrics:     NewMetrics(cfg),
	}, nil
}

// WorkflowOptions maps config onto stylist options.
func WorkflowOptions(cfg config.Config, emitter *metrics.Emitter) stylist.Options {
	return stylist.Options{
		VariantCount:        cfg.VariantCount,
		MaxConcurrency:      cfg.MaxConcurrency,
		FailOpen:            cfg.ClassifierFailOpen,
		PhraseRedirect:      cfg.PhraseRedirect,
		PlaceholderFallback: cfg.PlaceholderFallback,
		Metrics:             emitter,
	}
}

// BuildWorkflow resolves credentials, builds the clients and wires the
// styling workflow.
func BuildWorkflow(ctx context.Context, cfg config.Config) (*stylist.Workflow, Clients, error) {
	clients, err := BuildClients(ctx, cfg, ResolveAPIKey(cfg))
	if err != nil {
		return nil, Clients{}, err
	}
	return stylist.NewWorkflow(clients.Text, clients.Image, WorkflowOptions(cfg, clients.Metrics)), clients, nil
}

// ValidateAPIKey checks the Gemini key against the API before serving.
func ValidateAPIKey(ctx context.Context, cfg config.Config, apiKey string, emitter *metrics.Emitter) error {
	if apiKey == "" {
		return auth.ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	return auth.ValidateAPIKey(ctx, client.Models, cfg.GeminiImageModel, emitter)
}

// DescribeStartup adds backends, features and non-secret config to a
// startup logger. The caller adds anything binary-specific and calls Log.
func DescribeStartup(s *logging.StartupLogger, cfg config.Config, clients Clients) *logging.StartupLogger {
	return s.
		Backend("text", textDescription(cfg)).
		Backend("image", cfg.GeminiImageModel).
		Feature("imageEditing", clients.Image.Configured()).
		Feature("failOpen", cfg.ClassifierFailOpen).
		Feature("phraseRedirect", cfg.PhraseRedirect && clients.Text != nil).
		Feature("placeholders", cfg.PlaceholderFallback).
		Feature("metrics", clients.Metrics != nil).
		Config("variantCount", strconv.Itoa(cfg.VariantCount)).
		Config("maxConcurrency", strconv.Itoa(cfg.MaxConcurrency)).
		Config("maxImageDimension", strconv.Itoa(cfg.MaxImageDimension)).
		Config("textTimeout", cfg.TextTimeout.String()).
		Config("imageTimeout", cfg.ImageTimeout.String())
}

func textDescription(cfg config.Config) string {
	switch cfg.TextBackend {
	case config.BackendOllama:
		return "ollama " + cfg.GemmaModel + " at " + cfg.OllamaBaseURL
	case config.BackendGemini:
		return "gemini " + cfg.GeminiTextModel
	default:
		return "none (degraded)"
	}
}
