package stylist

import (
	"context"
	"strings"
	"time"

	"github.com/fpang/vibe-fashion/internal/assets"
	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/rs/zerolog/log"
)

// Intent is the classifier's label for a request. Labels outside the known
// set are kept verbatim so they can be reported as-is.
type Intent string

const (
	// IntentFashion marks an in-scope outfit request.
	IntentFashion Intent = "FASHION_REQUEST"
	// IntentOutOfTopic marks anything the workflow will not generate for.
	IntentOutOfTopic Intent = "OUT_OF_TOPIC"
	// IntentError is reported when the request failed.
	IntentError Intent = "ERROR"
)

// InScope reports whether the request should proceed to planning. Unknown
// labels are treated as out of scope.
func (i Intent) InScope() bool {
	return i == IntentFashion
}

// IntentClassifier decides whether a request is in scope.
type IntentClassifier interface {
	Classify(ctx context.Context, req Request) (Intent, error)
}

// Classifier labels requests with the text-generation service. The photo is
// attached so the model can tell clothing edits from other edits.
type Classifier struct {
	text TextGenerator
}

// NewClassifier returns a model-backed classifier.
func NewClassifier(text TextGenerator) *Classifier {
	return &Classifier{text: text}
}

// Classify returns the normalized label. A service failure is returned as an
// error; the fail-open decision belongs to the caller.
func (c *Classifier) Classify(ctx context.Context, req Request) (Intent, error) {
	start := time.Now()

	prompt := chat.Prompt{
		System: assets.ClassifierSystemPrompt,
		User:   assets.RenderClassifierPrompt(req.UserText),
	}
	if len(req.Image.Data) > 0 {
		img := req.Image
		prompt.Image = &img
	}

	raw, err := c.text.Generate(ctx, prompt)
	if err != nil {
		return IntentError, err
	}

	intent := normalizeLabel(raw)
	log.Debug().
		Str("request_id", req.ID).
		Str("raw", truncate(raw, 100)).
		Str("intent", string(intent)).
		Dur("duration", time.Since(start)).
		Msg("Intent classified")
	return intent, nil
}

// normalizeLabel trims decoration the model tends to add around a label:
// whitespace, quotes, code ticks, a trailing period or a "Label:" prefix.
func normalizeLabel(raw string) Intent {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(strings.ToUpper(s), "LABEL:"); i != -1 {
		s = s[i+len("LABEL:"):]
	}
	s = strings.Trim(s, " \t\r\n\"'`*.")
	s = strings.ToUpper(s)

	switch {
	case s == string(IntentFashion), s == string(IntentOutOfTopic):
		return Intent(s)
	case strings.Contains(s, string(IntentOutOfTopic)):
		return IntentOutOfTopic
	case strings.Contains(s, string(IntentFashion)):
		return IntentFashion
	}
	return Intent(s)
}

// fashionKeywords drive the offline classifier.
var fashionKeywords = []string{
	"outfit", "clothing", "dress", "shirt", "pants", "style", "fashion",
	"casual", "formal", "professional", "party", "work", "date", "vacation",
	"summer", "winter", "spring", "fall", "color", "accessories",
	"wear", "jacket", "shoes", "suit",
}

// KeywordClassifier labels requests by keyword match. It is used when no
// text-generation service is configured and never fails.
type KeywordClassifier struct{}

// Classify returns IntentFashion when the request mentions any fashion keyword.
func (KeywordClassifier) Classify(_ context.Context, req Request) (Intent, error) {
	text := strings.ToLower(req.UserText)
	for _, kw := range fashionKeywords {
		if strings.Contains(text, kw) {
			return IntentFashion, nil
		}
	}
	return IntentOutOfTopic, nil
}

// truncate shortens s to maxLen bytes for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
