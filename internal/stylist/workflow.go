package stylist

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fpang/vibe-fashion/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ApologyMessage is the only text a failed request shows the user.
const ApologyMessage = "I'm sorry, I encountered an error analyzing your request. Please try again."

// Workflow states, as logged.
const (
	stateReceived    = "RECEIVED"
	stateClassifying = "CLASSIFYING"
	stateOutOfScope  = "OUT_OF_SCOPE_RESPONSE"
	statePlanning    = "PLANNING"
	stateGenerating  = "GENERATING"
	stateSummarizing = "SUMMARIZING"
	stateDone        = "DONE"
	stateFailed      = "FAILED"
)

// Metric dimension values for Outcome.
const (
	outcomeDone       = "done"
	outcomeOutOfScope = "out_of_scope"
	outcomeFailed     = "failed"
)

// Options configures a Workflow.
type Options struct {
	// VariantCount is the number of instructions planned (1..MaxVariantCount).
	VariantCount int
	// MaxConcurrency caps simultaneous image edits.
	MaxConcurrency int
	// FailOpen treats a classifier failure as an in-scope request. When
	// false the request fails instead.
	FailOpen bool
	// PhraseRedirect lets the text model phrase the out-of-scope reply.
	PhraseRedirect bool
	// PlaceholderFallback renders placeholder cards when no image editor is
	// configured.
	PlaceholderFallback bool
	// Metrics receives one EMF document per request. Nil disables metrics.
	Metrics *metrics.Emitter
}

// DefaultOptions mirrors the documented configuration defaults.
func DefaultOptions() Options {
	return Options{
		VariantCount:        DefaultVariantCount,
		MaxConcurrency:      DefaultVariantCount,
		FailOpen:            true,
		PlaceholderFallback: true,
	}
}

// Workflow runs styling requests end to end. It is safe for concurrent use;
// all per-request data lives on the stack of Process.
type Workflow struct {
	classifier   IntentClassifier
	planner      *Planner
	editor       ImageEditor
	summarizer   *Summarizer
	redirector   *Redirector
	placeholders *PlaceholderGenerator
	opts         Options
}

// NewWorkflow wires the stages around the given clients. A nil text
// generator selects degraded mode: keyword classification, template
// instructions and a templated summary. A nil or unconfigured editor selects
// placeholder cards when Options.PlaceholderFallback is set.
func NewWorkflow(text TextGenerator, editor ImageEditor, opts Options) *Workflow {
	if opts.VariantCount <= 0 {
		opts.VariantCount = DefaultVariantCount
	}
	if opts.VariantCount > MaxVariantCount {
		opts.VariantCount = MaxVariantCount
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = opts.VariantCount
	}

	w := &Workflow{
		planner:      NewPlanner(text, opts.VariantCount),
		editor:       editor,
		summarizer:   NewSummarizer(text),
		redirector:   NewRedirector(nil),
		placeholders: NewPlaceholderGenerator(),
		opts:         opts,
	}
	if text == nil {
		w.classifier = KeywordClassifier{}
	} else {
		w.classifier = NewClassifier(text)
	}
	if text != nil && opts.PhraseRedirect {
		w.redirector = NewRedirector(text)
	}
	return w
}

// WithClassifier replaces the intent classifier.
func (w *Workflow) WithClassifier(c IntentClassifier) *Workflow {
	w.classifier = c
	return w
}

// Process runs one request. It never returns nil and never panics: any
// failure that escapes the stages' own fallbacks becomes a FAILED result
// carrying the apology and the detail in ErrorDetail.
func (w *Workflow) Process(ctx context.Context, req Request) (result *Result) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()
	logger := log.With().Str("request_id", req.ID).Logger()
	rec := w.opts.Metrics.New().Count("Requests")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("panic", fmt.Sprint(r)).
				Str("stack", string(debug.Stack())).
				Msg("Styling workflow panicked")
			result = failedResult(fmt.Errorf("internal error: %v", r))
		}
		if !result.Success {
			logger.Error().Str("state", stateFailed).Str("error", result.ErrorDetail).Msg("Styling request failed")
		}
		rec.Dimension("Outcome", outcomeOf(result)).
			Property("intent", result.IntentLabel).
			Property("requestId", req.ID).
			Duration("TotalMs", time.Since(start)).
			Flush()
	}()

	result, err := w.run(ctx, req, logger, rec)
	if err != nil {
		return failedResult(err)
	}
	return result
}

func (w *Workflow) run(ctx context.Context, req Request, logger zerolog.Logger, rec *metrics.Recorder) (*Result, error) {
	logger.Info().
		Str("state", stateReceived).
		Int("image_bytes", len(req.Image.Data)).
		Str("request", truncate(req.UserText, 100)).
		Msg("Styling request received")

	if strings.TrimSpace(req.UserText) == "" {
		return nil, errors.New("request text is empty")
	}
	if len(req.Image.Data) == 0 {
		return nil, errors.New("request image is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// CLASSIFYING
	logger.Info().Str("state", stateClassifying).Msg("Classifying intent")
	stageStart := time.Now()
	intent, err := w.classifier.Classify(ctx, req)
	rec.Duration("ClassifyMs", time.Since(stageStart))
	if err != nil {
		if !w.opts.FailOpen {
			return nil, fmt.Errorf("intent classification failed: %w", err)
		}
		logger.Warn().Err(err).Msg("Intent classification failed, proceeding as a fashion request")
		intent = IntentFashion
	}

	if !intent.InScope() {
		logger.Info().
			Str("state", stateOutOfScope).
			Str("intent", string(intent)).
			Msg("Request out of scope, redirecting")
		return &Result{
			Summary:     w.redirector.Redirect(ctx, req.UserText),
			Variants:    []Variant{},
			Success:     true,
			IntentLabel: string(intent),
		}, nil
	}

	// PLANNING
	logger.Info().Str("state", statePlanning).Int("count", w.planner.Count()).Msg("Planning outfits")
	stageStart = time.Now()
	plan := w.planner.Plan(ctx, req.UserText)
	rec.Duration("PlanMs", time.Since(stageStart)).Property("planOutcome", plan.Outcome.String())

	// GENERATING
	logger.Info().Str("state", stateGenerating).Str("plan", plan.Outcome.String()).Msg("Generating outfit images")
	stageStart = time.Now()
	variants := w.generate(ctx, req, plan.Instructions, logger)
	rec.Duration("GenerateMs", time.Since(stageStart)).
		Metric("VariantsGenerated", float64(len(variants)), metrics.UnitCount).
		Metric("VariantsFailed", float64(len(plan.Instructions)-len(variants)), metrics.UnitCount)

	// SUMMARIZING
	logger.Info().Str("state", stateSummarizing).Int("variants", len(variants)).Msg("Summarizing looks")
	stageStart = time.Now()
	summary := w.summarizer.Summarize(ctx, req.UserText, generatedInstructions(plan.Instructions, variants), len(variants))
	rec.Duration("SummarizeMs", time.Since(stageStart))

	logger.Info().
		Str("state", stateDone).
		Int("variants", len(variants)).
		Msg("Styling request complete")

	return &Result{
		Summary:     summary,
		Variants:    variants,
		Success:     true,
		IntentLabel: string(intent),
	}, nil
}

// generate picks between the image editor and placeholder cards.
func (w *Workflow) generate(ctx context.Context, req Request, instructions []string, logger zerolog.Logger) []Variant {
	if editorAvailable(w.editor) {
		variants := GenerateAll(ctx, w.editor, req.Image, instructions, w.opts.MaxConcurrency)
		if variants == nil {
			variants = []Variant{}
		}
		return variants
	}
	if w.opts.PlaceholderFallback {
		logger.Warn().Msg("No image editor configured, rendering placeholder cards")
		return w.placeholders.Render(instructions)
	}
	logger.Warn().Msg("No image editor configured, no variants generated")
	return []Variant{}
}

// generatedInstructions keeps the planned instructions that produced a
// variant, in plan order.
func generatedInstructions(planned []string, variants []Variant) []string {
	done := make(map[string]bool, len(variants))
	for _, v := range variants {
		done[v.Instruction] = true
	}
	out := make([]string, 0, len(variants))
	for _, ins := range planned {
		if done[ins] {
			out = append(out, ins)
		}
	}
	return out
}

func failedResult(err error) *Result {
	return &Result{
		Summary:     ApologyMessage,
		Variants:    []Variant{},
		Success:     false,
		IntentLabel: string(IntentError),
		ErrorDetail: err.Error(),
	}
}

func outcomeOf(r *Result) string {
	switch {
	case !r.Success:
		return outcomeFailed
	case r.IntentLabel != string(IntentFashion):
		return outcomeOutOfScope
	default:
		return outcomeDone
	}
}
