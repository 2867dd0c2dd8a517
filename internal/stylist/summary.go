package stylist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/vibe-fashion/internal/assets"
	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/rs/zerolog/log"
)

// Summarizer writes the closing paragraph describing the generated looks.
type Summarizer struct {
	text TextGenerator
}

// NewSummarizer returns a summarizer. With a nil text generator every
// summary is templated.
func NewSummarizer(text TextGenerator) *Summarizer {
	return &Summarizer{text: text}
}

// Summarize describes the looks in one paragraph. It never fails: a service
// error or an empty answer yields the templated summary. With no variants the
// model is not called and the reply explains that nothing was generated.
func (s *Summarizer) Summarize(ctx context.Context, userText string, instructions []string, variantCount int) string {
	if variantCount == 0 {
		return NoVariantsSummary(userText)
	}
	if s.text == nil {
		return TemplateSummary(userText, variantCount)
	}

	start := time.Now()
	text, err := s.text.Generate(ctx, chat.Prompt{
		System: assets.SummarySystemPrompt,
		User:   assets.RenderSummaryPrompt(userText, instructions),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Summary call failed, using template summary")
		return TemplateSummary(userText, variantCount)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Warn().Msg("Summary call returned no text, using template summary")
		return TemplateSummary(userText, variantCount)
	}

	log.Debug().
		Int("length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Summary ready")
	return text
}

// TemplateSummary is the deterministic summary used when the model is unavailable.
func TemplateSummary(userText string, variantCount int) string {
	noun := "outfit options"
	if variantCount == 1 {
		noun = "outfit option"
	}
	return fmt.Sprintf("Based on your request %q, I've created %d %s for you. "+
		"Each look keeps you exactly as you are and only changes the clothing, "+
		"so you can compare them side by side and pick the one that fits the occasion.",
		strings.TrimSpace(userText), variantCount, noun)
}

// NoVariantsSummary explains a request that produced no images.
func NoVariantsSummary(userText string) string {
	return fmt.Sprintf("I planned outfits for your request %q, but I couldn't generate any images this time. "+
		"The image service may be busy or unavailable. Please try again in a moment.",
		strings.TrimSpace(userText))
}
