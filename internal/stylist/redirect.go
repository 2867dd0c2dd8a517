package stylist

import (
	"context"
	"strings"

	"github.com/fpang/vibe-fashion/internal/assets"
	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/rs/zerolog/log"
)

// Redirector writes the reply for out-of-scope requests.
type Redirector struct {
	// text phrases the reply; nil means the static message is always used.
	text TextGenerator
}

// NewRedirector returns a redirector. Pass a nil text generator to always use
// the static message.
func NewRedirector(text TextGenerator) *Redirector {
	return &Redirector{text: text}
}

// Redirect returns a reply steering the user toward outfit requests.
func (r *Redirector) Redirect(ctx context.Context, userText string) string {
	static := assets.RenderRedirectMessage(userText)
	if r.text == nil {
		return static
	}

	text, err := r.text.Generate(ctx, chat.Prompt{
		System: assets.RedirectSystemPrompt,
		User:   userText,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Redirect phrasing failed, using static message")
		return static
	}
	if text = strings.TrimSpace(text); text == "" {
		return static
	}
	return text
}
