package assets

import (
	_ "embed"
	"strings"
)

// Instruction schema shared by the planner prompt and the template fallback.
const (
	// InstructionPrefix starts every outfit edit instruction.
	InstructionPrefix = "Replace current clothing with"

	// IdentityClause ends every outfit edit instruction.
	IdentityClause = "Keep body, face, hair, skin tone, pose, lighting, and background unchanged."

	// InstructionMaxWords is the word budget for one instruction.
	InstructionMaxWords = 80
)

// --- Static prompts ---

// ClassifierSystemPrompt asks for a single FASHION_REQUEST / OUT_OF_TOPIC
// label with few-shot examples. Uncertain requests lean OUT_OF_TOPIC.
//
//go:embed prompts/classifier-system.txt
var ClassifierSystemPrompt string

// SummarySystemPrompt is the stylist persona for the closing paragraph.
//
//go:embed prompts/summary-system.txt
var SummarySystemPrompt string

// RedirectSystemPrompt phrases the out-of-scope reply.
//
//go:embed prompts/redirect-system.txt
var RedirectSystemPrompt string

// EditGuardrailPrompt is sent as the system instruction on every image edit.
//
//go:embed prompts/edit-guardrail.txt
var EditGuardrailPrompt string

// --- Dynamic prompt templates ---

//go:embed prompts/classifier-user.txt
var classifierUserTemplate string

//go:embed prompts/planner-system.txt
var plannerSystemTemplate string

//go:embed prompts/planner-user.txt
var plannerUserTemplate string

//go:embed prompts/summary-user.txt
var summaryUserTemplate string

//go:embed prompts/redirect-static.txt
var redirectStaticTemplate string

var (
	classifierUserTmpl = mustParse("classifier-user", classifierUserTemplate)
	plannerSystemTmpl  = mustParse("planner-system", plannerSystemTemplate)
	plannerUserTmpl    = mustParse("planner-user", plannerUserTemplate)
	summaryUserTmpl    = mustParse("summary-user", summaryUserTemplate)
	redirectStaticTmpl = mustParse("redirect-static", redirectStaticTemplate)
)

// RenderClassifierPrompt renders the user turn for intent classification.
func RenderClassifierPrompt(userText string) string {
	return render(classifierUserTmpl, struct{ UserText string }{userText})
}

// RenderPlannerSystemPrompt renders the planner instructions for count outfits.
func RenderPlannerSystemPrompt(count int) string {
	return render(plannerSystemTmpl, struct {
		Count          int
		Prefix         string
		MaxWords       int
		IdentityClause string
	}{count, InstructionPrefix, InstructionMaxWords, IdentityClause})
}

// RenderPlannerPrompt renders the planner user turn.
func RenderPlannerPrompt(userText string) string {
	return render(plannerUserTmpl, struct{ UserText string }{userText})
}

// RenderSummaryPrompt renders the summary user turn listing every instruction.
func RenderSummaryPrompt(userText string, instructions []string) string {
	return render(summaryUserTmpl, struct {
		UserText     string
		Instructions []string
	}{userText, instructions})
}

// RenderRedirectMessage renders the static out-of-scope reply.
func RenderRedirectMessage(userText string) string {
	return strings.TrimSpace(render(redirectStaticTmpl, struct{ UserText string }{userText}))
}
