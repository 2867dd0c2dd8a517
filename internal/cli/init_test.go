package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vibe-fashion/internal/auth"
	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/config"
	"github.com/fpang/vibe-fashion/internal/logging"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

func testConfig(backend string) config.Config {
	return config.Config{
		TextBackend:         backend,
		OllamaBaseURL:       "http://127.0.0.1:1",
		GemmaModel:          "gemma3:12b",
		GeminiTextModel:     "gemini-2.5-flash",
		GeminiImageModel:    "gemini-2.5-flash-image",
		GeminiBaseURL:       "http://127.0.0.1:1",
		TextTimeout:         time.Second,
		ImageTimeout:        time.Second,
		VariantCount:        3,
		MaxConcurrency:      2,
		ClassifierFailOpen:  true,
		PlaceholderFallback: true,
		MaxImageDimension:   1024,
	}
}

func TestNewTextGenerator(t *testing.T) {
	ctx := context.Background()

	gen, err := NewTextGenerator(ctx, testConfig(config.BackendNone), "")
	if err != nil || gen != nil {
		t.Errorf("none backend = %v, %v; want nil generator", gen, err)
	}

	gen, err = NewTextGenerator(ctx, testConfig(config.BackendOllama), "")
	if err != nil {
		t.Fatalf("ollama backend: %v", err)
	}
	if _, ok := gen.(*chat.OllamaClient); !ok {
		t.Errorf("ollama backend built %T", gen)
	}

	if _, err := NewTextGenerator(ctx, testConfig(config.BackendGemini), ""); !errors.Is(err, chat.ErrNotConfigured) {
		t.Errorf("gemini backend without a key should fail with ErrNotConfigured, got %v", err)
	}

	gen, err = NewTextGenerator(ctx, testConfig(config.BackendGemini), "test-key")
	if err != nil {
		t.Fatalf("gemini backend: %v", err)
	}
	if _, ok := gen.(*chat.GeminiTextClient); !ok {
		t.Errorf("gemini backend built %T", gen)
	}

	if _, err := NewTextGenerator(ctx, testConfig("openai"), ""); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestBuildWorkflowDegraded(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	cfg := testConfig(config.BackendNone)
	wf, clients, err := BuildWorkflow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clients.Image.Configured() {
		t.Error("image client should be unconfigured without a key")
	}
	if clients.Metrics != nil {
		t.Error("metrics should be disabled by default")
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	result := wf.Process(context.Background(), stylist.Request{
		Image:    chat.Image{Data: buf.Bytes(), MIMEType: "image/png"},
		UserText: "show me outfits for a summer wedding",
	})
	if !result.Success {
		t.Fatalf("degraded workflow failed: %s", result.ErrorDetail)
	}
	if len(result.Variants) != cfg.VariantCount {
		t.Errorf("got %d placeholder variants, want %d", len(result.Variants), cfg.VariantCount)
	}
}

func TestWorkflowOptions(t *testing.T) {
	cfg := testConfig(config.BackendOllama)
	cfg.ClassifierFailOpen = false
	cfg.PhraseRedirect = true

	opts := WorkflowOptions(cfg, nil)
	if opts.VariantCount != 3 || opts.MaxConcurrency != 2 || opts.FailOpen || !opts.PhraseRedirect || !opts.PlaceholderFallback {
		t.Errorf("options not mapped: %+v", opts)
	}
}

func TestValidateAPIKeyWithoutKey(t *testing.T) {
	err := ValidateAPIKey(context.Background(), testConfig(config.BackendNone), "", nil)
	if !errors.Is(err, auth.ErrNoAPIKey) {
		t.Errorf("err = %v", err)
	}
}

func TestValidationMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{auth.ErrNoAPIKey, "No API key configured"},
		{&auth.ValidationError{Type: auth.ErrTypeInvalidKey}, "Invalid API key"},
		{&auth.ValidationError{Type: auth.ErrTypeNetworkError}, "Network error"},
		{&auth.ValidationError{Type: auth.ErrTypeQuotaExceeded}, "quota exceeded"},
		{&auth.ValidationError{Type: auth.ErrTypeUnknown}, "validation failed"},
		{errors.New("boom"), "Unexpected error"},
	}
	for _, tt := range tests {
		if got := ValidationMessage(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("ValidationMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}

func TestPromptForRequest(t *testing.T) {
	var out bytes.Buffer
	got := PromptForRequest(strings.NewReader("  a linen suit for a beach wedding \n"), &out)
	if got != "a linen suit for a beach wedding" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(out.String(), "Request:") {
		t.Errorf("prompt not written: %q", out.String())
	}

	if got := PromptForRequest(strings.NewReader("no newline"), &out); got != "no newline" {
		t.Errorf("EOF without newline should still return input, got %q", got)
	}
}

func TestDescribeStartup(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = original }()

	cfg := testConfig(config.BackendOllama)
	cfg.GeminiAPIKey = "super-secret"
	clients, err := BuildClients(context.Background(), cfg, cfg.GeminiAPIKey)
	if err != nil {
		t.Fatal(err)
	}
	DescribeStartup(logging.NewStartupLogger("vibe-test"), cfg, clients).Log()

	out := buf.String()
	if strings.Contains(out, "super-secret") {
		t.Fatal("startup log must never contain the API key")
	}
	for _, want := range []string{`"imageEditing":true`, `"variantCount":"3"`, "ollama gemma3:12b"} {
		if !strings.Contains(out, want) {
			t.Errorf("startup log missing %s: %s", want, out)
		}
	}
}
