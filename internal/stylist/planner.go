package stylist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/fpang/vibe-fashion/internal/assets"
	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/jsonutil"
	"github.com/rs/zerolog/log"
)

// PlanOutcome records which tier of the planner produced the instructions.
type PlanOutcome int

const (
	// PlanParsed means the model answered with the expected JSON schema.
	PlanParsed PlanOutcome = iota
	// PlanDegraded means the answer was not usable JSON and its lines were used.
	PlanDegraded
	// PlanTemplated means every instruction came from the deterministic templates.
	PlanTemplated
)

func (o PlanOutcome) String() string {
	switch o {
	case PlanParsed:
		return "parsed"
	case PlanDegraded:
		return "degraded"
	case PlanTemplated:
		return "templated"
	default:
		return fmt.Sprintf("PlanOutcome(%d)", int(o))
	}
}

// Plan is the planner's output. len(Instructions) always equals the planner's
// configured count.
type Plan struct {
	Instructions []string
	Outcome      PlanOutcome
}

// maxInstructionWords rejects runaway instructions. It is looser than the
// budget the prompt asks for.
const maxInstructionWords = 2 * assets.InstructionMaxWords

// templateStyles are cycled by the template tier.
var templateStyles = []string{"casual", "professional", "stylish", "trendy"}

// Planner writes outfit edit instructions for a request.
type Planner struct {
	text  TextGenerator
	count int
}

// NewPlanner returns a planner producing count instructions. With a nil text
// generator every plan comes from the templates.
func NewPlanner(text TextGenerator, count int) *Planner {
	if count <= 0 {
		count = DefaultVariantCount
	}
	return &Planner{text: text, count: count}
}

// Count returns the number of instructions every plan holds.
func (p *Planner) Count() int {
	return p.count
}

// Plan asks the model for instructions in JSON mode and falls back through
// the strategy tiers. It never fails.
func (p *Planner) Plan(ctx context.Context, userText string) Plan {
	if p.text == nil {
		return Plan{Instructions: TemplateInstructions(userText, p.count), Outcome: PlanTemplated}
	}

	start := time.Now()
	raw, err := p.text.Generate(ctx, chat.Prompt{
		System: assets.RenderPlannerSystemPrompt(p.count),
		User:   assets.RenderPlannerPrompt(userText),
		JSON:   true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Outfit planning call failed, using template instructions")
		return Plan{Instructions: TemplateInstructions(userText, p.count), Outcome: PlanTemplated}
	}

	plan := p.planFromResponse(raw, userText)
	log.Debug().
		Str("outcome", plan.Outcome.String()).
		Int("count", len(plan.Instructions)).
		Dur("duration", time.Since(start)).
		Msg("Outfit plan ready")
	return plan
}

// planStrategy is one parse tier. parse returns candidate instructions, or
// nil when the tier does not apply.
type planStrategy struct {
	outcome PlanOutcome
	parse   func(raw string) []string
}

// planStrategies are tried in order; the template tier follows them.
var planStrategies = []planStrategy{
	{PlanParsed, parseOutfitsJSON},
	{PlanDegraded, parseLines},
}

// planFromResponse applies the parse tiers to a model answer. A tier that
// yields fewer than count instructions is padded from the templates; one that
// yields more is cut to the first count.
func (p *Planner) planFromResponse(raw, userText string) Plan {
	for _, s := range planStrategies {
		items := validInstructions(s.parse(raw))
		if len(items) == 0 {
			continue
		}
		if len(items) < p.count {
			log.Warn().
				Str("outcome", s.outcome.String()).
				Int("got", len(items)).
				Int("want", p.count).
				Msg("Outfit plan short, padding with template instructions")
			templates := TemplateInstructions(userText, p.count)
			items = append(items, templates[len(items):]...)
		}
		return Plan{Instructions: items[:p.count], Outcome: s.outcome}
	}

	log.Warn().
		Str("raw", truncate(raw, 200)).
		Msg("Outfit plan unusable, using template instructions")
	return Plan{Instructions: TemplateInstructions(userText, p.count), Outcome: PlanTemplated}
}

type outfitPlan struct {
	Outfits []string `json:"outfits"`
}

func parseOutfitsJSON(raw string) []string {
	plan, err := jsonutil.ParseJSON[outfitPlan](raw)
	if err != nil {
		log.Debug().Err(err).Msg("Outfit plan is not schema JSON")
		return nil
	}
	return plan.Outfits
}

// parseLines splits a free-text answer into lines. Text that is itself valid
// JSON is skipped: its lines are syntax, not instructions.
func parseLines(raw string) []string {
	text := jsonutil.StripMarkdownFences(raw)
	if json.Valid([]byte(text)) {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !hasWordChar(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// validInstructions drops empty, oversized and duplicate entries.
func validInstructions(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || len(strings.Fields(item)) > maxInstructionWords {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func hasWordChar(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// TemplateInstructions returns count deterministic instructions embedding the
// user's request. Styles repeat with a variation number past the fourth.
func TemplateInstructions(userText string, count int) []string {
	userText = strings.TrimSpace(userText)
	out := make([]string, count)
	for i := range out {
		style := templateStyles[i%len(templateStyles)]
		if round := i / len(templateStyles); round > 0 {
			style = fmt.Sprintf("%s (variation %d)", style, round+1)
		}
		out[i] = fmt.Sprintf("%s a %s outfit based on: %s. %s",
			assets.InstructionPrefix, style, userText, assets.IdentityClause)
	}
	return out
}
