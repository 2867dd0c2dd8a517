// Package stylist turns a photo and a free-text styling request into outfit
// variants of that photo.
//
// A request flows through four stages, each owned by its own type:
//
//	Classifier  decides whether the request is about outfits at all
//	Planner     writes N outfit edit instructions
//	GenerateAll applies every instruction to the photo concurrently
//	Summarizer  describes the resulting looks in one paragraph
//
// Workflow sequences the stages and owns every fallback decision. No stage
// returns a model-service error to its caller; each converts failures into
// its documented fallback so the request still completes.
package stylist

import (
	"context"

	"github.com/fpang/vibe-fashion/internal/chat"
)

// DefaultVariantCount is the number of outfit variants planned per request.
const DefaultVariantCount = 4

// MaxVariantCount caps the planner's target count.
const MaxVariantCount = 8

// TextGenerator is the text-generation dependency. chat.OllamaClient and
// chat.GeminiTextClient implement it.
type TextGenerator interface {
	Generate(ctx context.Context, p chat.Prompt) (string, error)
}

// ImageEditor applies one outfit instruction to a source photo.
// chat.GeminiImageClient implements it.
type ImageEditor interface {
	Edit(ctx context.Context, src chat.Image, instruction string) (*chat.Image, error)
}

// configurable is implemented by editors that can report missing credentials.
type configurable interface {
	Configured() bool
}

// editorAvailable reports whether e can be called at all.
func editorAvailable(e ImageEditor) bool {
	if e == nil {
		return false
	}
	if c, ok := e.(configurable); ok {
		return c.Configured()
	}
	return true
}

// Request is one styling request. It is not modified by the workflow.
type Request struct {
	// ID correlates log lines; a UUID is assigned when empty.
	ID       string
	Image    chat.Image
	UserText string
}

// Variant is one generated look paired with the instruction that produced it.
type Variant struct {
	Instruction string
	Image       chat.Image
	// Description is a display title such as "Outfit 2", numbered by the
	// instruction's position in the plan.
	Description string
}

// Result is the outcome of one request.
//
// Success implies ErrorDetail is empty. A request that produced no images is
// still a success with an explanatory Summary. Variants are in completion
// order, not plan order; pair images with instructions through the Variant.
type Result struct {
	Summary     string
	Variants    []Variant
	Success     bool
	IntentLabel string
	ErrorDetail string
}
